package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/netxfw/testsel/internal/runtime"
	"github.com/netxfw/testsel/internal/utils/fileutil"
	"github.com/netxfw/testsel/internal/utils/logger"
	apperrors "github.com/netxfw/testsel/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is where testsel looks for its configuration when no
// --config flag is given. It is relative to the working directory, next to
// the test tree it configures.
// DefaultConfigPath 是未指定 --config 时的默认配置文件位置。
const DefaultConfigPath = "testsel.yaml"

// Unknown-marker policies.
const (
	PolicyReject = "reject"
	PolicyWarn   = "warn"
)

// DefaultConfigTemplate defines the default configuration file structure with bilingual comments.
// InitConfig writes it verbatim, and Render fills it with a config's values.
// DefaultConfigTemplate 定义带双语注释的默认配置文件结构。
const DefaultConfigTemplate = `# testsel Configuration File / testsel 配置文件
#

# Markers: declared test markers, one "name: description" per entry.
# 标记：声明的测试标记，每项格式为 "name: description"。
markers:
  - "smoke: quick checks run on every commit"
  - "slow: tests that take more than a few seconds"
  - "integration: tests that need external services"

# Unknown marker policy: what to do when a test case uses an undeclared marker.
# reject: fail collection; warn: emit an UnknownMarkerWarning and continue.
# 未知标记策略：reject 直接失败；warn 发出 UnknownMarkerWarning 警告并继续。
unknown_marker_policy: reject

# Default selection expression, overridden by -m/--markexpr. Empty selects everything.
# 默认选择表达式，可被 -m/--markexpr 覆盖。为空时选择全部。
markexpr: ""

# Console log sink / 控制台日志接收端
log_cli:
  enabled: true
  # Level: DEBUG, INFO, WARNING, ERROR, CRITICAL
  # 级别：DEBUG, INFO, WARNING, ERROR, CRITICAL
  level: INFO
  format: "%(asctime)s [%(levelname)8s] %(message)s (%(filename)s:%(lineno)s)"
  date_format: "%Y-%m-%d %H:%M:%S"
  # Destination: console (stdout) or stderr
  # 输出位置：console (stdout) 或 stderr
  destination: console

# File log sink / 文件日志接收端
log_file:
  enabled: false
  level: DEBUG
  format: "%(asctime)s [%(levelname)8s] %(message)s (%(filename)s:%(lineno)s)"
  date_format: "%Y-%m-%d %H:%M:%S"
  destination: file
  path: "logs/testsel.log"
  # Rotation limits / 轮转限制
  max_size: 10 # MB
  max_backups: 3
  max_age: 30 # days
  compress: false

# Warning filters, "action:message:category", first match wins.
# action: ignore, error or default. message is a case-insensitive regex matched
# at the start of the warning text; category is a glob.
# 警告过滤规则，格式 "action:message:category"，首条匹配生效。
filterwarnings: []

# Prometheus textfile written after each select run. Empty disables it.
# 每次 select 运行后写入的 Prometheus 文本文件。为空时禁用。
metrics_file: ""
`

// Config is the full testsel configuration.
// Config 是完整的 testsel 配置。
type Config struct {
	Markers             []string          `yaml:"markers"`
	UnknownMarkerPolicy string            `yaml:"unknown_marker_policy"`
	MarkExpr            string            `yaml:"markexpr"`
	LogCLI              logger.SinkConfig `yaml:"log_cli"`
	LogFile             logger.SinkConfig `yaml:"log_file"`
	FilterWarnings      []string          `yaml:"filterwarnings"`
	MetricsFile         string            `yaml:"metrics_file"`
}

// DefaultConfig returns the configuration used when no file exists.
// DefaultConfig 返回不存在配置文件时使用的默认配置。
func DefaultConfig() *Config {
	return &Config{
		Markers:             []string{},
		FilterWarnings:      []string{},
		UnknownMarkerPolicy: PolicyReject,
		LogCLI:              logger.DefaultConsoleSink(),
		LogFile:             logger.DefaultFileSink(),
	}
}

// GetConfigPath returns the configuration file path
// If runtime.ConfigPath is set (e.g., via CLI flag or test), it takes precedence.
// GetConfigPath 返回配置文件路径
// 如果 runtime.ConfigPath 已设置（例如通过 CLI 标志或测试），则优先使用它。
func GetConfigPath() string {
	if runtime.ConfigPath != "" {
		return runtime.ConfigPath
	}
	return DefaultConfigPath
}

// Parse decodes YAML over the defaults and validates the result.
// Parse 在默认值之上解析 YAML 并验证结果。
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrConfigInvalid, err)
	}

	if result := NewConfigValidator().Validate(cfg); !result.Valid() {
		return nil, result.Err()
	}
	return cfg, nil
}

// Load loads the configuration from a YAML file.
// Load 从 YAML 文件加载配置。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrConfigNotFound, path)
		}
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig when the file is
// missing and the path was not asked for explicitly.
// LoadOrDefault 加载配置；默认路径下文件不存在时返回默认配置。
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, apperrors.ErrConfigNotFound) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// InitConfig writes DefaultConfigTemplate to path unless a file already exists there.
// It reports whether a new file was written.
// InitConfig 在文件不存在时写入默认配置模板。
func InitConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return false, err
		}
	}
	if err := fileutil.AtomicWriteFile(path, []byte(DefaultConfigTemplate), 0644); err != nil {
		return false, err
	}
	return true, nil
}

// Render encodes cfg into DefaultConfigTemplate, so the output carries the
// current comments and key order with cfg's values.
// Render 将配置的值写入带注释的默认模板。
func Render(cfg *Config) ([]byte, error) {
	var values, doc yaml.Node
	if err := values.Encode(cfg); err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal([]byte(DefaultConfigTemplate), &doc); err != nil {
		return nil, err
	}
	overlay(doc.Content[0], &values)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Upgrade rewrites the file at path as the current template holding the
// file's values. Keys testsel does not know are dropped. The file must load
// and validate first.
// Upgrade 将配置文件升级为当前模板，保留原有的值。
func Upgrade(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	data, err := Render(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, fileutil.AtomicWriteFile(path, data, 0644)
}

// overlay copies the values of src onto dst. Mapping keys are matched by
// name: dst keeps its comments and order, keys only in src are appended.
// Any other node is replaced, keeping dst's comments where src has none.
func overlay(dst, src *yaml.Node) {
	if dst.Kind != yaml.MappingNode || src.Kind != yaml.MappingNode {
		head, line, foot := dst.HeadComment, dst.LineComment, dst.FootComment
		*dst = *src
		if dst.HeadComment == "" {
			dst.HeadComment = head
		}
		if dst.LineComment == "" {
			dst.LineComment = line
		}
		if dst.FootComment == "" {
			dst.FootComment = foot
		}
		return
	}

	for i := 0; i+1 < len(src.Content); i += 2 {
		key, val := src.Content[i], src.Content[i+1]
		if existing := mappingValue(dst, key.Value); existing != nil {
			overlay(existing, val)
			continue
		}
		dst.Content = append(dst.Content, key, val)
	}
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
