package logger

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/netxfw/testsel/internal/metrics"
	apperrors "github.com/netxfw/testsel/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	SinkConsole = "console"
	SinkFile    = "file"
)

// DefaultName is the logger name rendered by %(name)s.
const DefaultName = "testsel"

// Policy is the resolved, process-wide logging handle: two independent sinks
// behind one warning-filter list. Safe for concurrent use; every sink's
// writer is serialized so lines from parallel workers never interleave.
// Policy 是解析后的全局日志句柄。
type Policy struct {
	logger  *zap.Logger
	sugar   *zap.SugaredLogger // skips Policy's own frame when reporting callers
	direct  *zap.SugaredLogger
	sinks   []*sinkState
	filters []FilterRule
	closers []io.Closer
}

type sinkState struct {
	name string
	cfg  SinkConfig
	tmpl *lineTemplate
}

// Resolve composes the console and file sink configurations and the ordered
// warning filters into one Policy. Filter patterns are compiled here and a bad
// one fails with ErrInvalidFilter. Templates are not validated here; a
// malformed format fails at first render with *errors.LogFormatError.
// Resolve 将控制台与文件两个接收端配置以及警告过滤规则合并为一个日志策略。
func Resolve(console, file SinkConfig, filters []FilterRule) (*Policy, error) {
	p := &Policy{filters: make([]FilterRule, 0, len(filters))}
	for _, f := range filters {
		rule, err := f.Compile()
		if err != nil {
			return nil, err
		}
		p.filters = append(p.filters, rule)
	}

	var cores []zapcore.Core
	for _, s := range []struct {
		name string
		cfg  SinkConfig
	}{
		{SinkConsole, console},
		{SinkFile, file},
	} {
		if !s.cfg.Enabled {
			continue
		}
		core, err := p.buildSink(s.name, s.cfg)
		if err != nil {
			p.Close()
			return nil, err
		}
		cores = append(cores, core)
	}

	var core zapcore.Core
	switch len(cores) {
	case 0:
		core = zapcore.NewNopCore()
	case 1:
		core = cores[0]
	default:
		core = zapcore.NewTee(cores...)
	}

	p.logger = zap.New(core,
		zap.AddCaller(),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	).Named(DefaultName)
	p.direct = p.logger.Sugar()
	p.sugar = p.logger.WithOptions(zap.AddCallerSkip(1)).Sugar()
	return p, nil
}

func (p *Policy) buildSink(name string, cfg SinkConfig) (zapcore.Core, error) {
	writer, err := p.openWriter(name, cfg)
	if err != nil {
		return nil, err
	}

	tmpl := newLineTemplate(name, cfg.Format, cfg.DateFormat)
	p.sinks = append(p.sinks, &sinkState{name: name, cfg: cfg, tmpl: tmpl})

	core := zapcore.NewCore(newTemplateEncoder(tmpl), zapcore.Lock(writer), cfg.Level.zapLevel())
	return zapcore.RegisterHooks(core, func(ent zapcore.Entry) error {
		metrics.LogRecords.WithLabelValues(name, levelFromZap(ent.Level).String()).Inc()
		return nil
	}), nil
}

func (p *Policy) openWriter(name string, cfg SinkConfig) (zapcore.WriteSyncer, error) {
	dest := cfg.Destination
	if dest == "" {
		dest = DestinationConsole
		if name == SinkFile {
			dest = DestinationFile
		}
	}

	switch dest {
	case DestinationConsole, DestinationStderr:
		if cfg.Writer != nil {
			return zapcore.AddSync(cfg.Writer), nil
		}
		if dest == DestinationStderr {
			return zapcore.AddSync(os.Stderr), nil
		}
		return zapcore.AddSync(os.Stdout), nil
	case DestinationFile:
		if cfg.Path == "" {
			return nil, apperrors.NewConfigError("log_"+name+".path", cfg.Path)
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		p.closers = append(p.closers, rotator)
		return zapcore.AddSync(rotator), nil
	}
	return nil, apperrors.NewConfigError("log_"+name+".destination", dest)
}

// Debug logs at DEBUG.
func (p *Policy) Debug(format string, args ...interface{}) { p.sugar.Debugf(format, args...) }

// Info logs at INFO.
func (p *Policy) Info(format string, args ...interface{}) { p.sugar.Infof(format, args...) }

// Warning logs at WARNING. Runtime warnings that should pass through the
// filter list go through Warn instead.
func (p *Policy) Warning(format string, args ...interface{}) { p.sugar.Warnf(format, args...) }

// Error logs at ERROR.
func (p *Policy) Error(format string, args ...interface{}) { p.sugar.Errorf(format, args...) }

// Critical logs at CRITICAL.
func (p *Policy) Critical(format string, args ...interface{}) { p.sugar.DPanicf(format, args...) }

// Warn routes a runtime warning through the filter list before any sink
// sees it: ignored warnings vanish, escalated ones come back as *WarningError,
// everything else is logged at WARNING.
// Warn 先经过警告过滤规则，再交给各接收端。
func (p *Policy) Warn(w Warning) error {
	action, rule := Decide(p.filters, w)
	metrics.Warnings.WithLabelValues(action.String()).Inc()

	switch action {
	case ActionIgnore:
		return nil
	case ActionError:
		err := &WarningError{Warning: w, Filter: rule.String()}
		p.sugar.Errorf("%s", err)
		return err
	}
	p.sugar.Warnf("%s", w)
	return nil
}

// Filters returns a copy of the ordered filter list.
func (p *Policy) Filters() []FilterRule {
	return append([]FilterRule(nil), p.filters...)
}

// Sinks returns the names of the enabled sinks, console first.
func (p *Policy) Sinks() []string {
	names := make([]string, 0, len(p.sinks))
	for _, s := range p.sinks {
		names = append(names, s.name)
	}
	return names
}

// SinkConfig returns the configuration of an enabled sink.
func (p *Policy) SinkConfig(name string) (SinkConfig, bool) {
	for _, s := range p.sinks {
		if s.name == name {
			return s.cfg, true
		}
	}
	return SinkConfig{}, false
}

// Enabled reports whether any sink accepts records at level.
func (p *Policy) Enabled(level Level) bool {
	return p.logger.Core().Enabled(level.zapLevel())
}

// Logger returns the underlying sugared logger for callers that want zap directly.
func (p *Policy) Logger() *zap.SugaredLogger { return p.direct }

// Err returns the first template error a sink hit while rendering, if any.
// Err 返回接收端渲染时遇到的第一个模板错误。
func (p *Policy) Err() error {
	for _, s := range p.sinks {
		if err := s.tmpl.Err(); err != nil {
			return err
		}
	}
	return nil
}

// CheckFormats renders a probe record through every sink's template, so a
// malformed format is reported at startup instead of on the first real line.
func (p *Policy) CheckFormats() error {
	var errs []error
	for _, s := range p.sinks {
		if _, err := s.tmpl.Render(Record{Level: LevelInfo, Name: DefaultName}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sync flushes any buffered log entries.
// Sync 刷新所有缓存的日志条目。
func (p *Policy) Sync() error {
	return p.logger.Sync()
}

// Close syncs the sinks and closes the file rotator.
func (p *Policy) Close() error {
	var errs []error
	if p.logger != nil {
		// stdout/stderr commonly reject fsync; that is not worth reporting.
		_ = p.logger.Sync()
	}
	for _, c := range p.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}
