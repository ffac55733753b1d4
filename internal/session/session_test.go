package session

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/netxfw/testsel/internal/config"
	"github.com/netxfw/testsel/internal/metrics"
	"github.com/netxfw/testsel/internal/utils/logger"
	apperrors "github.com/netxfw/testsel/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimRight(b.buf.String(), "\n"), "\n")
}

func newPolicy(t *testing.T, filters ...string) (*logger.Policy, *lockedBuffer) {
	t.Helper()
	rules, err := logger.ParseFilters(filters)
	require.NoError(t, err)

	out := &lockedBuffer{}
	p, err := logger.Resolve(logger.SinkConfig{
		Enabled: true,
		Level:   logger.LevelInfo,
		Format:  "%(levelname)s %(message)s",
		Writer:  out,
	}, logger.SinkConfig{}, rules)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, out
}

func testConfig(policy string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Markers = []string{"smoke: quick checks", "slow: long running", "nfs: needs an NFS export"}
	cfg.UnknownMarkerPolicy = policy
	return cfg
}

var sampleCases = []TestCase{
	{ID: "tests/test_fs.py::test_mount", Tags: []string{"smoke"}},
	{ID: "tests/test_fs.py::test_fill", Tags: []string{"slow"}},
	{ID: "tests/test_fs.py::test_export[v4]", Tags: []string{"smoke", "nfs"}},
	{ID: "tests/test_fs.py::test_untagged"},
}

func ids(cases []TestCase) []string {
	out := make([]string, 0, len(cases))
	for _, tc := range cases {
		out = append(out, tc.ID)
	}
	return out
}

// TestCollect tests selection over a list of cases
// TestCollect 测试用例的选择与划分
func TestCollect(t *testing.T) {
	tests := []struct {
		markExpr       string
		wantSelected   []string
		wantDeselected []string
	}{
		{"", ids(sampleCases), nil},
		{"smoke", []string{"tests/test_fs.py::test_mount", "tests/test_fs.py::test_export[v4]"},
			[]string{"tests/test_fs.py::test_fill", "tests/test_fs.py::test_untagged"}},
		{"smoke and not nfs", []string{"tests/test_fs.py::test_mount"},
			[]string{"tests/test_fs.py::test_fill", "tests/test_fs.py::test_export[v4]", "tests/test_fs.py::test_untagged"}},
		{"not (smoke or slow)", []string{"tests/test_fs.py::test_untagged"},
			[]string{"tests/test_fs.py::test_mount", "tests/test_fs.py::test_fill", "tests/test_fs.py::test_export[v4]"}},
	}

	for _, tt := range tests {
		t.Run(tt.markExpr, func(t *testing.T) {
			policy, out := newPolicy(t)
			s, err := New(testConfig(config.PolicyReject), tt.markExpr, policy)
			require.NoError(t, err)

			collected := testutil.ToFloat64(metrics.TestsCollected)
			selected := testutil.ToFloat64(metrics.TestsSelected)

			result, err := s.Collect(sampleCases)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSelected, ids(result.Selected))
			assert.Equal(t, tt.wantDeselected, ids(result.Deselected))
			assert.Equal(t, len(sampleCases), result.Total())

			assert.Equal(t, collected+float64(len(sampleCases)), testutil.ToFloat64(metrics.TestsCollected))
			assert.Equal(t, selected+float64(len(tt.wantSelected)), testutil.ToFloat64(metrics.TestsSelected))

			lines := out.Lines()
			assert.Contains(t, lines[len(lines)-1], "collected 4 items /")
		})
	}
}

func TestNew_MarkExprFromConfig(t *testing.T) {
	policy, _ := newPolicy(t)
	cfg := testConfig(config.PolicyReject)
	cfg.MarkExpr = "slow"

	s, err := New(cfg, "", policy)
	require.NoError(t, err)
	assert.Equal(t, "slow", s.Selector().Raw())

	s, err = New(cfg, "smoke", policy)
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Selector().Raw(), "flag overrides config")
	assert.True(t, s.Registry().Sealed())
	assert.Same(t, policy, s.Policy())
}

func TestNew_Errors(t *testing.T) {
	policy, _ := newPolicy(t)

	_, err := New(testConfig(config.PolicyReject), "smoke and", policy)
	assert.ErrorIs(t, err, apperrors.ErrSelectionSyntax)

	_, err = New(testConfig(config.PolicyReject), "fast", policy)
	assert.ErrorIs(t, err, apperrors.ErrUnknownMarker)

	cfg := testConfig(config.PolicyReject)
	cfg.Markers = append(cfg.Markers, "smoke: again")
	_, err = New(cfg, "", policy)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateMarker)
}

// TestCollect_UnknownMarker tests the reject and warn policies
// TestCollect_UnknownMarker 测试未知标记的 reject 与 warn 策略
func TestCollect_UnknownMarker(t *testing.T) {
	cases := []TestCase{
		{ID: "tests/test_fs.py::test_mount", Tags: []string{"smoke"}},
		{ID: "tests/test_fs.py::test_typo", Tags: []string{"smok"}},
	}

	t.Run("reject", func(t *testing.T) {
		policy, _ := newPolicy(t)
		s, err := New(testConfig(config.PolicyReject), "", policy)
		require.NoError(t, err)

		before := testutil.ToFloat64(metrics.UnknownMarkers.WithLabelValues(config.PolicyReject))
		_, err = s.Collect(cases)
		require.Error(t, err)

		var unknown *apperrors.UnknownMarkerError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "smok", unknown.Name)
		assert.Equal(t, "smoke", unknown.Suggestion)
		assert.Contains(t, err.Error(), "tests/test_fs.py::test_typo")
		assert.Equal(t, before+1, testutil.ToFloat64(metrics.UnknownMarkers.WithLabelValues(config.PolicyReject)))
	})

	t.Run("warn", func(t *testing.T) {
		policy, out := newPolicy(t)
		s, err := New(testConfig(config.PolicyWarn), "smoke", policy)
		require.NoError(t, err)

		result, err := s.Collect(cases)
		require.NoError(t, err)
		assert.Equal(t, []string{"tests/test_fs.py::test_mount"}, ids(result.Selected))

		lines := out.Lines()
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "WARNING UnknownMarkerWarning: Unknown marker \"smok\""), lines[0])
	})

	t.Run("warn silenced by filter", func(t *testing.T) {
		policy, out := newPolicy(t, "ignore::UnknownMarkerWarning")
		s, err := New(testConfig(config.PolicyWarn), "", policy)
		require.NoError(t, err)

		result, err := s.Collect(cases)
		require.NoError(t, err)
		assert.Len(t, result.Selected, 2)
		assert.Len(t, out.Lines(), 1, "only the summary line")
	})

	t.Run("warn escalated by filter", func(t *testing.T) {
		policy, _ := newPolicy(t, "error:unknown marker:UnknownMarkerWarning")
		s, err := New(testConfig(config.PolicyWarn), "", policy)
		require.NoError(t, err)

		_, err = s.Collect(cases)
		assert.ErrorIs(t, err, apperrors.ErrWarningEscalated)
	})
}

// TestReporter tests the start/finish banners
// TestReporter 测试测试开始与结束横幅
func TestReporter(t *testing.T) {
	policy, out := newPolicy(t)
	s, err := New(testConfig(config.PolicyReject), "", policy)
	require.NoError(t, err)

	assert.Empty(t, s.CurrentTest())
	s.SessionStart("fsapi", "/src/tests")

	run := s.Start("tests/test_fs.py::TestMount::test_ro[nfs] (call)")
	assert.Equal(t, "test_ro", s.CurrentTest())
	run.Finish(OutcomePassed)

	failedBefore := testutil.ToFloat64(metrics.TestOutcomes.WithLabelValues("failed"))
	s.Finish("tests/test_fs.py::test_fill", OutcomeFailed, 12600*time.Millisecond)
	s.Finish("tests/test_fs.py::test_setup", OutcomeSetupFailed, 250*time.Millisecond)
	s.Finish("tests/test_fs.py::test_skip", OutcomeSkipped, 0)
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(metrics.TestOutcomes.WithLabelValues("failed")))

	lines := out.Lines()
	require.Len(t, lines, 6)
	assert.Equal(t, "INFO session start: name: fsapi, path: /src/tests", lines[0])
	assert.Equal(t, "INFO ========== STARTING TEST test_ro[nfs] ==========", lines[1])
	assert.Regexp(t, `^INFO ========== TEST test_ro\[nfs\] PASSED in \d+\.\d+ seconds ==========$`, lines[2])
	assert.Equal(t, "INFO ========== TEST test_fill FAILED in 13 seconds ==========", lines[3])
	assert.Equal(t, "INFO ========== TEST SETUP test_setup FAILED in 0.25 seconds ==========", lines[4])
	assert.Equal(t, "INFO ========== TEST test_skip SKIPPED in 0.0 seconds ==========", lines[5])
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0.0"},
		{1234 * time.Millisecond, "1.23"},
		{1500 * time.Millisecond, "1.5"},
		{2 * time.Second, "2.0"},
		{9994 * time.Millisecond, "9.99"},
		{10 * time.Second, "10"},
		{95400 * time.Millisecond, "95"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), tt.in.String())
	}
}

func TestTestName(t *testing.T) {
	assert.Equal(t, "test_ro[nfs]", TestName("tests/test_fs.py::TestMount::test_ro[nfs] (call)"))
	assert.Equal(t, "test_mount", TestName("test_mount"))
	assert.Equal(t, "test_ro", StripParams("test_ro[nfs]"))
	assert.Equal(t, "test_ro[a-b]", StripParams("test_ro[a-b]"), "only word-only parameters are stripped")
}

func TestOutcome(t *testing.T) {
	for _, o := range []Outcome{OutcomePassed, OutcomeFailed, OutcomeSetupFailed, OutcomeSkipped} {
		parsed, ok := ParseOutcome(strings.ToUpper(o.String()))
		require.True(t, ok)
		assert.Equal(t, o, parsed)
	}
	_, ok := ParseOutcome("xfail")
	assert.False(t, ok)
}

// TestLoadCases tests reading a YAML manifest
// TestLoadCases 测试读取 YAML 用例清单
func TestLoadCases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.yaml")
	data := `cases:
  - id: tests/test_fs.py::test_mount
    tags: [smoke, " nfs "]
  - id: tests/test_fs.py::test_fill
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cases, err := LoadCases(path)
	require.NoError(t, err)
	assert.Equal(t, []TestCase{
		{ID: "tests/test_fs.py::test_mount", Tags: []string{"smoke", "nfs"}},
		{ID: "tests/test_fs.py::test_fill"},
	}, cases)

	_, err = LoadCases(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseCases_Errors(t *testing.T) {
	for _, data := range []string{
		"cases: [",
		"cases:\n  - tags: [smoke]\n",
		"cases:\n  - id: a\n  - id: a\n",
	} {
		_, err := ParseCases([]byte(data))
		assert.ErrorIs(t, err, apperrors.ErrConfigInvalid, data)
	}
}
