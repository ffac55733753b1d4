package errors

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateMarker   = errors.New("duplicate marker")
	ErrUnknownMarker     = errors.New("unknown marker")
	ErrRegistrySealed    = errors.New("marker registry is sealed")
	ErrInvalidMarkerName = errors.New("invalid marker name")
	ErrSelectionSyntax   = errors.New("selection syntax error")
	ErrLogFormat         = errors.New("log format error")
	ErrInvalidLevel      = errors.New("invalid log level")
	ErrInvalidFilter     = errors.New("invalid warning filter")
	ErrWarningEscalated  = errors.New("warning escalated to error")
	ErrConfigNotFound    = errors.New("config not found")
	ErrConfigInvalid     = errors.New("invalid configuration")
)

// DuplicateMarkerError is returned when a marker name is registered twice.
// DuplicateMarkerError 在同一标记名称被重复注册时返回。
type DuplicateMarkerError struct {
	Name string
}

func (e *DuplicateMarkerError) Error() string {
	return fmt.Sprintf("%s: %q", ErrDuplicateMarker, e.Name)
}

func (e *DuplicateMarkerError) Unwrap() error { return ErrDuplicateMarker }

// UnknownMarkerError reports a marker name that is not in the registry.
// Suggestion, when set, names the closest registered marker.
// UnknownMarkerError 报告注册表中不存在的标记名称。
type UnknownMarkerError struct {
	Name       string
	Suggestion string
}

func (e *UnknownMarkerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %q (did you mean %q?)", ErrUnknownMarker, e.Name, e.Suggestion)
	}
	return fmt.Sprintf("%s: %q", ErrUnknownMarker, e.Name)
}

func (e *UnknownMarkerError) Unwrap() error { return ErrUnknownMarker }

// RegistrySealedError is returned for any mutation after the registry was sealed.
// RegistrySealedError 在注册表封存后尝试修改时返回。
type RegistrySealedError struct {
	Name string
}

func (e *RegistrySealedError) Error() string {
	return fmt.Sprintf("%s: cannot register %q", ErrRegistrySealed, e.Name)
}

func (e *RegistrySealedError) Unwrap() error { return ErrRegistrySealed }

// SelectionSyntaxError describes malformed selection input.
// Position is a 0-based byte offset into the raw expression.
// SelectionSyntaxError 描述格式错误的选择表达式。
type SelectionSyntaxError struct {
	Position int
	Message  string
	Input    string
}

func (e *SelectionSyntaxError) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("%s at position %d: %s", ErrSelectionSyntax, e.Position, e.Message)
	}
	return fmt.Sprintf("%s at position %d: %s (in %q)", ErrSelectionSyntax, e.Position, e.Message, e.Input)
}

func (e *SelectionSyntaxError) Unwrap() error { return ErrSelectionSyntax }

// LogFormatError is raised the first time a sink renders with a malformed template.
// LogFormatError 在日志模板首次渲染失败时产生。
type LogFormatError struct {
	Sink   string
	Format string
	Reason string
}

func (e *LogFormatError) Error() string {
	return fmt.Sprintf("%s: sink=%s format=%q: %s", ErrLogFormat, e.Sink, e.Format, e.Reason)
}

func (e *LogFormatError) Unwrap() error { return ErrLogFormat }

func NewMarkerNameError(name, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrInvalidMarkerName, name, reason)
}

func NewLevelError(level string) error {
	return fmt.Errorf("%w: %s", ErrInvalidLevel, level)
}

func NewFilterError(entry, reason string) error {
	return fmt.Errorf("%w: %q: %s", ErrInvalidFilter, entry, reason)
}

func NewConfigError(field string, value interface{}) error {
	return fmt.Errorf("%w: field=%s value=%v", ErrConfigInvalid, field, value)
}
