package session

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/netxfw/testsel/internal/metrics"
)

// Outcome is the final state of one test case.
type Outcome int

const (
	OutcomePassed Outcome = iota
	OutcomeFailed
	OutcomeSetupFailed
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomePassed:
		return "passed"
	case OutcomeFailed:
		return "failed"
	case OutcomeSetupFailed:
		return "setup_failed"
	case OutcomeSkipped:
		return "skipped"
	}
	return "unknown"
}

// ParseOutcome parses the String form of an outcome.
func ParseOutcome(s string) (Outcome, bool) {
	for _, o := range []Outcome{OutcomePassed, OutcomeFailed, OutcomeSetupFailed, OutcomeSkipped} {
		if strings.EqualFold(s, o.String()) {
			return o, true
		}
	}
	return 0, false
}

var paramSuffix = regexp.MustCompile(`\[\w+]`)

// TestName reduces a node id such as "tests/test_fs.py::TestMount::test_ro[nfs] (call)"
// to the test's own name, "test_ro[nfs]".
// TestName 从节点 ID 中提取测试名称。
func TestName(nodeID string) string {
	name := nodeID
	if idx := strings.LastIndex(name, "::"); idx >= 0 {
		name = name[idx+2:]
	}
	name, _, _ = strings.Cut(name, " ")
	return name
}

// StripParams removes word-only parameter suffixes: "test_ro[nfs]" becomes "test_ro".
func StripParams(name string) string {
	return paramSuffix.ReplaceAllString(name, "")
}

// FormatDuration renders seconds the way the run reporter prints them: two
// decimals below ten seconds, whole seconds above.
// FormatDuration 格式化耗时：小于 10 秒保留两位小数，否则取整。
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs >= 10 {
		return strconv.FormatInt(int64(math.Round(secs)), 10)
	}
	s := strconv.FormatFloat(math.Round(secs*100)/100, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Run is an in-flight test case started with Session.Start.
type Run struct {
	session *Session
	nodeID  string
	started time.Time
}

// Start logs the start banner for nodeID and records it as the current test.
// Start 记录测试开始横幅，并将其设为当前测试。
func (s *Session) Start(nodeID string) *Run {
	name := TestName(nodeID)

	s.mu.Lock()
	s.current = StripParams(name)
	s.mu.Unlock()

	s.policy.Info("========== STARTING TEST %s ==========", name)
	return &Run{session: s, nodeID: nodeID, started: time.Now()}
}

// Finish reports the outcome of the run, timed from Start.
func (r *Run) Finish(outcome Outcome) {
	r.session.Finish(r.nodeID, outcome, time.Since(r.started))
}

// Finish logs the completion banner for nodeID.
// Finish 记录测试结束横幅。
func (s *Session) Finish(nodeID string, outcome Outcome, elapsed time.Duration) {
	name := TestName(nodeID)
	took := FormatDuration(elapsed)
	metrics.TestOutcomes.WithLabelValues(outcome.String()).Inc()

	switch outcome {
	case OutcomeSetupFailed:
		s.policy.Info("========== TEST SETUP %s FAILED in %s seconds ==========", name, took)
	case OutcomeFailed:
		s.policy.Info("========== TEST %s FAILED in %s seconds ==========", name, took)
	case OutcomeSkipped:
		s.policy.Info("========== TEST %s SKIPPED in %s seconds ==========", name, took)
	default:
		s.policy.Info("========== TEST %s PASSED in %s seconds ==========", name, took)
	}
}

// CurrentTest returns the name of the most recently started test without
// parameter suffixes, or "" before the first Start.
// CurrentTest 返回当前测试名称（去除参数后缀）。
func (s *Session) CurrentTest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
