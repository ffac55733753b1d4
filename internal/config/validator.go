package config

import (
	"fmt"
	"strings"

	"github.com/netxfw/testsel/internal/marker"
	"github.com/netxfw/testsel/internal/selection"
	"github.com/netxfw/testsel/internal/utils/logger"
	apperrors "github.com/netxfw/testsel/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Issue is one validator finding, addressed by its YAML path
// ("log_file.path", "markers[2]"). Value is the offending value, if any.
// Issue 表示一条校验结果。
type Issue struct {
	Field   string
	Message string
	Value   any
}

func (i Issue) String() string {
	if i.Value == nil {
		return i.Field + ": " + i.Message
	}
	return fmt.Sprintf("%s: %s (value: %v)", i.Field, i.Message, i.Value)
}

// ValidationResult holds errors, which make a config unusable, and warnings,
// which do not.
// ValidationResult 包含错误（配置不可用）与警告（仍可用）。
type ValidationResult struct {
	Errors   []Issue
	Warnings []Issue
}

// Valid reports whether no errors were found.
func (r *ValidationResult) Valid() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) addError(field, message string, value any) {
	r.Errors = append(r.Errors, Issue{Field: field, Message: message, Value: value})
}

func (r *ValidationResult) addWarning(field, message string, value any) {
	r.Warnings = append(r.Warnings, Issue{Field: field, Message: message, Value: value})
}

// Err folds the errors into one error wrapping ErrConfigInvalid, or nil when valid.
// Err 将所有错误合并为一个包装 ErrConfigInvalid 的错误。
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Field+": "+e.Message)
	}
	return fmt.Errorf("%w: %s", apperrors.ErrConfigInvalid, strings.Join(msgs, "; "))
}

// ConfigValidator provides configuration validation functionality.
// ConfigValidator 提供配置验证功能。
type ConfigValidator struct {
	// Rotation limits above these only warn / 超过这些值仅发出警告
	MaxLogSizeMB  int
	MaxLogBackups int
}

// NewConfigValidator creates a new ConfigValidator with default limits.
// NewConfigValidator 创建具有默认限制的新 ConfigValidator。
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		MaxLogSizeMB:  1000,
		MaxLogBackups: 100,
	}
}

// ValidateSyntax validates the YAML syntax of the configuration.
// ValidateSyntax 验证配置的 YAML 语法。
func (v *ConfigValidator) ValidateSyntax(configData []byte) *ValidationResult {
	result := &ValidationResult{}
	var raw map[string]any
	if err := yaml.Unmarshal(configData, &raw); err != nil {
		result.addError("config", fmt.Sprintf("YAML syntax error: %v", err), nil)
		return result
	}

	known := map[string]bool{
		"markers": true, "unknown_marker_policy": true, "markexpr": true,
		"log_cli": true, "log_file": true, "filterwarnings": true, "metrics_file": true,
	}
	for key := range raw {
		if !known[key] {
			result.addWarning(key, "Unknown configuration key is ignored", nil)
		}
	}
	return result
}

// Validate validates the entire configuration.
// Validate 验证整个配置。
func (v *ConfigValidator) Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	registry := v.validateMarkers(cfg.Markers, result)
	v.validatePolicy(cfg.UnknownMarkerPolicy, result)
	v.validateSink("log_cli", &cfg.LogCLI, false, result)
	v.validateSink("log_file", &cfg.LogFile, true, result)
	v.validateFilters(cfg.FilterWarnings, result)
	if registry != nil {
		v.validateMarkExpr(cfg.MarkExpr, registry, result)
	}
	return result
}

// validateMarkers checks every declaration and returns the sealed registry, or
// nil if any declaration is bad.
func (v *ConfigValidator) validateMarkers(decls []string, result *ValidationResult) *marker.Registry {
	ok := true
	registry := marker.NewRegistry()
	for i, decl := range decls {
		field := fmt.Sprintf("markers[%d]", i)
		m, err := marker.ParseDeclaration(decl)
		if err != nil {
			result.addError(field, err.Error(), decl)
			ok = false
			continue
		}
		if err := registry.Register(m.Name, m.Description); err != nil {
			result.addError(field, err.Error(), decl)
			ok = false
			continue
		}
		if m.Description == "" {
			result.addWarning(field, "Marker has no description", m.Name)
		}
	}
	if !ok {
		return nil
	}
	registry.Seal()
	return registry
}

func (v *ConfigValidator) validatePolicy(policy string, result *ValidationResult) {
	switch policy {
	case PolicyReject, PolicyWarn:
	case "":
		result.addError("unknown_marker_policy", "Policy is required (reject or warn)", policy)
	default:
		result.addError("unknown_marker_policy",
			fmt.Sprintf("Policy must be one of: %v", []string{PolicyReject, PolicyWarn}), policy)
	}
}

// validateSink validates one logging sink.
// validateSink 验证单个日志接收端。
func (v *ConfigValidator) validateSink(name string, cfg *logger.SinkConfig, fileSink bool, result *ValidationResult) {
	if !cfg.Enabled {
		return
	}

	if cfg.Level == logger.LevelNotSet {
		result.addWarning(name+".level", "No level set, every record passes", nil)
	}

	switch cfg.Destination {
	case logger.DestinationConsole, logger.DestinationStderr:
		if fileSink {
			result.addWarning(name+".destination", "File sink writes to a stream", cfg.Destination)
		}
	case logger.DestinationFile:
		if cfg.Path == "" {
			result.addError(name+".path", "Log path is required when destination is file", nil)
		}
	case "":
		if fileSink && cfg.Path == "" {
			result.addError(name+".path", "Log path is required when destination is file", nil)
		}
	default:
		result.addError(name+".destination",
			"Destination must be one of: console, stderr, file", cfg.Destination)
	}

	if cfg.MaxSize < 0 {
		result.addError(name+".max_size", "Max size cannot be negative", cfg.MaxSize)
	} else if cfg.MaxSize > v.MaxLogSizeMB {
		result.addWarning(name+".max_size",
			"Very large log file size may cause disk space issues", cfg.MaxSize)
	}
	if cfg.MaxBackups < 0 {
		result.addError(name+".max_backups", "Max backups cannot be negative", cfg.MaxBackups)
	} else if cfg.MaxBackups > v.MaxLogBackups {
		result.addWarning(name+".max_backups", "Many backups kept", cfg.MaxBackups)
	}
	if cfg.MaxAge < 0 {
		result.addError(name+".max_age", "Max age cannot be negative", cfg.MaxAge)
	}
}

func (v *ConfigValidator) validateFilters(entries []string, result *ValidationResult) {
	for i, entry := range entries {
		if _, err := logger.ParseFilter(entry); err != nil {
			result.addError(fmt.Sprintf("filterwarnings[%d]", i), err.Error(), entry)
		}
	}
}

func (v *ConfigValidator) validateMarkExpr(raw string, registry *marker.Registry, result *ValidationResult) {
	if _, err := selection.Parse(raw, registry); err != nil {
		result.addError("markexpr", err.Error(), raw)
	}
}

// ValidateConfig validates a configuration from raw YAML data.
// ValidateConfig 从原始 YAML 数据验证配置。
func ValidateConfig(configData []byte) (*ValidationResult, error) {
	validator := NewConfigValidator()

	syntaxResult := validator.ValidateSyntax(configData)
	if !syntaxResult.Valid() {
		return syntaxResult, nil
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(configData, cfg); err != nil {
		syntaxResult.addError("config", err.Error(), nil)
		return syntaxResult, nil
	}

	result := validator.Validate(cfg)
	result.Warnings = append(syntaxResult.Warnings, result.Warnings...)
	return result, nil
}
