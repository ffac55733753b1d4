package config

import (
	"testing"

	"github.com/netxfw/testsel/internal/utils/logger"
	apperrors "github.com/netxfw/testsel/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldsOf(issues []Issue) []string {
	fields := make([]string, 0, len(issues))
	for _, issue := range issues {
		fields = append(fields, issue.Field)
	}
	return fields
}

// TestConfigValidator_ValidateSyntax tests YAML syntax checks
// TestConfigValidator_ValidateSyntax 测试 YAML 语法检查
func TestConfigValidator_ValidateSyntax(t *testing.T) {
	v := NewConfigValidator()

	result := v.ValidateSyntax([]byte("markers: [\"smoke: a\"]\n"))
	assert.True(t, result.Valid())
	assert.Empty(t, result.Warnings)

	result = v.ValidateSyntax([]byte("markers: [\n"))
	assert.False(t, result.Valid())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "YAML syntax error")

	result = v.ValidateSyntax([]byte("log_level: debug\n"))
	assert.True(t, result.Valid())
	assert.Equal(t, []string{"log_level"}, fieldsOf(result.Warnings))
}

// TestConfigValidator_Sinks tests sink validation
// TestConfigValidator_Sinks 测试日志接收端验证
func TestConfigValidator_Sinks(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*Config)
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name: "disabled sinks are not checked",
			mutate: func(c *Config) {
				c.LogFile.Enabled = false
				c.LogFile.Path = ""
				c.LogFile.MaxSize = -1
			},
		},
		{
			name: "file sink without path",
			mutate: func(c *Config) {
				c.LogFile.Enabled = true
				c.LogFile.Path = ""
			},
			wantErrors: []string{"log_file.path"},
		},
		{
			name: "unknown destination",
			mutate: func(c *Config) {
				c.LogCLI.Destination = "syslog"
			},
			wantErrors: []string{"log_cli.destination"},
		},
		{
			name: "negative rotation",
			mutate: func(c *Config) {
				c.LogFile.Enabled = true
				c.LogFile.MaxSize = -1
				c.LogFile.MaxBackups = -1
				c.LogFile.MaxAge = -1
			},
			wantErrors: []string{"log_file.max_size", "log_file.max_backups", "log_file.max_age"},
		},
		{
			name: "large rotation warns",
			mutate: func(c *Config) {
				c.LogFile.Enabled = true
				c.LogFile.MaxSize = 5000
				c.LogFile.MaxBackups = 500
			},
			wantWarnings: []string{"log_file.max_size", "log_file.max_backups"},
		},
		{
			name: "level not set warns",
			mutate: func(c *Config) {
				c.LogCLI.Level = logger.LevelNotSet
			},
			wantWarnings: []string{"log_cli.level"},
		},
		{
			name: "file sink to stream warns",
			mutate: func(c *Config) {
				c.LogFile.Enabled = true
				c.LogFile.Destination = logger.DestinationStderr
			},
			wantWarnings: []string{"log_file.destination"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			result := NewConfigValidator().Validate(cfg)
			assert.Equal(t, len(tt.wantErrors) == 0, result.Valid())
			if len(tt.wantErrors) == 0 {
				assert.Empty(t, result.Errors)
			} else {
				assert.Equal(t, tt.wantErrors, fieldsOf(result.Errors))
			}
			if len(tt.wantWarnings) == 0 {
				assert.Empty(t, result.Warnings)
			} else {
				assert.Equal(t, tt.wantWarnings, fieldsOf(result.Warnings))
			}
		})
	}
}

// TestConfigValidator_Markers tests marker declaration checks
// TestConfigValidator_Markers 测试标记声明检查
func TestConfigValidator_Markers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = []string{"smoke: quick", "slow", "smoke: again", "not: keyword", "two words: x"}
	cfg.MarkExpr = "smoke"

	result := NewConfigValidator().Validate(cfg)
	assert.False(t, result.Valid())
	assert.Equal(t, []string{"markers[2]", "markers[3]", "markers[4]"}, fieldsOf(result.Errors))
	assert.Equal(t, []string{"markers[1]"}, fieldsOf(result.Warnings))

	err := result.Err()
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
	assert.Contains(t, err.Error(), `duplicate marker: "smoke"`)
}

// TestConfigValidator_MarkExpr tests the default selection expression
// TestConfigValidator_MarkExpr 测试默认选择表达式
func TestConfigValidator_MarkExpr(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = []string{"smoke: quick", "slow: long"}

	for _, expr := range []string{"", "smoke", "smoke and not slow", "(smoke or slow)"} {
		cfg.MarkExpr = expr
		assert.True(t, NewConfigValidator().Validate(cfg).Valid(), expr)
	}

	for _, expr := range []string{"smoke and", "fast", "smoke)"} {
		cfg.MarkExpr = expr
		result := NewConfigValidator().Validate(cfg)
		assert.Equal(t, []string{"markexpr"}, fieldsOf(result.Errors), expr)
	}
}

func TestValidationResult_Err(t *testing.T) {
	result := &ValidationResult{}
	assert.NoError(t, result.Err())

	result.addWarning("a", "just a warning", nil)
	assert.NoError(t, result.Err())

	result.addError("log_file.path", "Log path is required", nil)
	result.addError("unknown_marker_policy", "bad", "maybe")
	err := result.Err()
	assert.ErrorIs(t, err, apperrors.ErrConfigInvalid)
	assert.Equal(t, "invalid configuration: log_file.path: Log path is required; unknown_marker_policy: bad", err.Error())

	assert.Equal(t, "unknown_marker_policy: bad (value: maybe)", result.Errors[1].String())
	assert.Equal(t, "a: just a warning", result.Warnings[0].String())
}
