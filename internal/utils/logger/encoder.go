package logger

import (
	"fmt"
	"sort"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

var bufferPool = buffer.NewPool()

// templateEncoder renders entries through a sink's line template. Structured
// fields, if any, are appended as sorted key=value pairs.
type templateEncoder struct {
	*zapcore.MapObjectEncoder
	tmpl *lineTemplate
}

func newTemplateEncoder(tmpl *lineTemplate) *templateEncoder {
	return &templateEncoder{
		MapObjectEncoder: zapcore.NewMapObjectEncoder(),
		tmpl:             tmpl,
	}
}

func (e *templateEncoder) Clone() zapcore.Encoder {
	clone := newTemplateEncoder(e.tmpl)
	for k, v := range e.Fields {
		clone.Fields[k] = v
	}
	return clone
}

func (e *templateEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	rec := Record{
		Time:    ent.Time,
		Level:   levelFromZap(ent.Level),
		Name:    ent.LoggerName,
		Message: ent.Message,
	}
	if ent.Caller.Defined {
		rec.File = ent.Caller.File
		rec.Line = ent.Caller.Line
		rec.Function = ent.Caller.Function
	}

	line, err := e.tmpl.Render(rec)
	if err != nil {
		return nil, err
	}

	buf := bufferPool.Get()
	buf.AppendString(line)

	if len(e.Fields) > 0 || len(fields) > 0 {
		all := zapcore.NewMapObjectEncoder()
		for k, v := range e.Fields {
			all.Fields[k] = v
		}
		for _, f := range fields {
			f.AddTo(all)
		}
		keys := make([]string, 0, len(all.Fields))
		for k := range all.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			buf.AppendByte(' ')
			buf.AppendString(k)
			buf.AppendByte('=')
			buf.AppendString(fmt.Sprint(all.Fields[k]))
		}
	}

	buf.AppendString(zapcore.DefaultLineEnding)
	return buf, nil
}
