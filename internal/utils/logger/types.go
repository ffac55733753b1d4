package logger

import (
	"fmt"
	"io"
	"strings"

	apperrors "github.com/netxfw/testsel/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// Level is a sink severity threshold. Values follow the usual numeric
// logging levels so %(levelno)d renders 10..50.
// Level 是日志接收端的严重级别阈值。
type Level int

const (
	LevelNotSet   Level = 0
	LevelDebug    Level = 10
	LevelInfo     Level = 20
	LevelWarning  Level = 30
	LevelError    Level = 40
	LevelCritical Level = 50
)

// ParseLevel parses a level name case-insensitively. "WARN" is accepted as an alias.
// ParseLevel 解析日志级别名称（不区分大小写）。
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NOTSET", "":
		return LevelNotSet, nil
	case "DEBUG":
		return LevelDebug, nil
	case "INFO":
		return LevelInfo, nil
	case "WARNING", "WARN":
		return LevelWarning, nil
	case "ERROR":
		return LevelError, nil
	case "CRITICAL":
		return LevelCritical, nil
	}
	return LevelNotSet, apperrors.NewLevelError(s)
}

func (l Level) String() string {
	switch l {
	case LevelNotSet:
		return "NOTSET"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// MarshalText implements encoding.TextMarshaler so levels round-trip through YAML.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// zapLevel maps the level onto zap. CRITICAL uses DPanic, which only logs
// because the policy logger is never built in development mode.
func (l Level) zapLevel() zapcore.Level {
	switch {
	case l <= LevelDebug:
		return zapcore.DebugLevel
	case l <= LevelInfo:
		return zapcore.InfoLevel
	case l <= LevelWarning:
		return zapcore.WarnLevel
	case l <= LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.DPanicLevel
	}
}

func levelFromZap(z zapcore.Level) Level {
	switch z {
	case zapcore.DebugLevel:
		return LevelDebug
	case zapcore.InfoLevel:
		return LevelInfo
	case zapcore.WarnLevel:
		return LevelWarning
	case zapcore.ErrorLevel:
		return LevelError
	}
	return LevelCritical
}

// Destination selects where a sink writes.
// Destination 决定接收端的输出位置。
type Destination string

const (
	DestinationConsole Destination = "console" // stdout
	DestinationStderr  Destination = "stderr"
	DestinationFile    Destination = "file"
)

const (
	// DefaultFormat mirrors the classic pytest live-log layout.
	DefaultFormat = "%(asctime)s [%(levelname)8s] %(message)s (%(filename)s:%(lineno)s)"
	// DefaultDateFormat is a strftime pattern.
	DefaultDateFormat = "%Y-%m-%d %H:%M:%S"
)

// SinkConfig defines one logging sink.
// SinkConfig 定义一个日志接收端。
type SinkConfig struct {
	Enabled bool `yaml:"enabled"`
	// Enabled: 是否启用该接收端
	Level Level `yaml:"level"`
	// Level: 最低日志级别（DEBUG, INFO, WARNING, ERROR, CRITICAL）
	Format string `yaml:"format"`
	// Format: 行模板，例如 %(asctime)s [%(levelname)s] %(message)s
	DateFormat string `yaml:"date_format"`
	// DateFormat: 时间格式（strftime，或不含 % 的 Go layout）
	Destination Destination `yaml:"destination"`
	// Destination: console, stderr 或 file
	Path string `yaml:"path"`
	// Path: 日志文件路径（仅 file）
	MaxSize int `yaml:"max_size"`
	// MaxSize: 轮转前的最大大小（MB）
	MaxBackups int `yaml:"max_backups"`
	// MaxBackups: 保留的旧文件最大数量
	MaxAge int `yaml:"max_age"`
	// MaxAge: 保留旧文件的最大天数
	Compress bool `yaml:"compress"`
	// Compress: 是否压缩旧文件

	// Writer overrides the console/stderr stream. Not loaded from config.
	Writer io.Writer `yaml:"-"`
}

// DefaultConsoleSink returns the console sink used when nothing is configured.
func DefaultConsoleSink() SinkConfig {
	return SinkConfig{
		Enabled:     true,
		Level:       LevelInfo,
		Format:      DefaultFormat,
		DateFormat:  DefaultDateFormat,
		Destination: DestinationConsole,
	}
}

// DefaultFileSink returns the (disabled) file sink defaults.
func DefaultFileSink() SinkConfig {
	return SinkConfig{
		Enabled:     false,
		Level:       LevelDebug,
		Format:      DefaultFormat,
		DateFormat:  DefaultDateFormat,
		Destination: DestinationFile,
		Path:        "logs/testsel.log",
		MaxSize:     10,
		MaxBackups:  3,
		MaxAge:      30,
		Compress:    false,
	}
}
