package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/strftime"
	apperrors "github.com/netxfw/testsel/pkg/errors"
)

// Record is what a line template renders: one log entry plus its source location.
// Record 是日志模板渲染的输入。
type Record struct {
	Time     time.Time
	Level    Level
	Name     string
	Message  string
	File     string
	Line     int
	Function string
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
)

// placeholders lists the %(key) names a template may use.
var placeholders = map[string]fieldKind{
	"asctime":   kindString,
	"created":   kindNumber,
	"levelname": kindString,
	"levelno":   kindNumber,
	"name":      kindString,
	"message":   kindString,
	"filename":  kindString,
	"pathname":  kindString,
	"module":    kindString,
	"lineno":    kindNumber,
	"funcName":  kindString,
	"msecs":     kindNumber,
	"process":   kindNumber,
}

type segment struct {
	literal string
	key     string // empty for literal segments
	width   int
	left    bool
	conv    byte // 's' or 'd'
}

// lineTemplate is compiled on first use; a malformed format or date format
// surfaces as *errors.LogFormatError from that first render onwards.
type lineTemplate struct {
	sink       string
	format     string
	dateFormat string

	once     sync.Once
	compiled atomic.Bool
	segs     []segment
	date     *strftime.Strftime
	layout   string
	err      error
}

func newLineTemplate(sink, format, dateFormat string) *lineTemplate {
	if format == "" {
		format = DefaultFormat
	}
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	return &lineTemplate{sink: sink, format: format, dateFormat: dateFormat}
}

func (t *lineTemplate) fail(reason string) error {
	return &apperrors.LogFormatError{Sink: t.sink, Format: t.format, Reason: reason}
}

func (t *lineTemplate) compile() error {
	t.once.Do(func() {
		t.segs, t.err = t.parse()
		if t.err == nil {
			if strings.Contains(t.dateFormat, "%") {
				date, err := strftime.New(t.dateFormat)
				if err != nil {
					t.err = t.fail(fmt.Sprintf("invalid date format %q: %v", t.dateFormat, err))
				}
				t.date = date
			} else {
				t.layout = t.dateFormat
			}
		}
		t.compiled.Store(true)
	})
	return t.err
}

// Err returns the compile error, or nil when the template was never rendered.
func (t *lineTemplate) Err() error {
	if !t.compiled.Load() {
		return nil
	}
	return t.err
}

func (t *lineTemplate) parse() ([]segment, error) {
	var segs []segment
	var lit strings.Builder
	s := t.format

	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			lit.WriteByte(s[i])
			continue
		}
		if i+1 >= len(s) {
			return nil, t.fail("incomplete format: trailing '%'")
		}
		if s[i+1] == '%' {
			lit.WriteByte('%')
			i++
			continue
		}
		if s[i+1] != '(' {
			return nil, t.fail(fmt.Sprintf("unsupported format character %q at index %d", s[i+1], i+1))
		}
		end := strings.IndexByte(s[i+2:], ')')
		if end < 0 {
			return nil, t.fail(fmt.Sprintf("unterminated placeholder at index %d", i))
		}
		key := s[i+2 : i+2+end]
		kind, ok := placeholders[key]
		if !ok {
			return nil, t.fail(fmt.Sprintf("unknown placeholder %q", key))
		}

		seg := segment{key: key}
		j := i + 2 + end + 1
		if j < len(s) && s[j] == '-' {
			seg.left = true
			j++
		}
		start := j
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j > start {
			seg.width, _ = strconv.Atoi(s[start:j])
		}
		if j >= len(s) {
			return nil, t.fail(fmt.Sprintf("missing conversion for placeholder %q", key))
		}
		switch s[j] {
		case 's':
		case 'd':
			if kind != kindNumber {
				return nil, t.fail(fmt.Sprintf("placeholder %q requires %%s, not %%d", key))
			}
		default:
			return nil, t.fail(fmt.Sprintf("unsupported conversion %q for placeholder %q", s[j], key))
		}
		seg.conv = s[j]

		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
		segs = append(segs, seg)
		i = j
	}
	if lit.Len() > 0 {
		segs = append(segs, segment{literal: lit.String()})
	}
	return segs, nil
}

// Render formats r, compiling the template on first use.
// Render 渲染一条日志记录。
func (t *lineTemplate) Render(r Record) (string, error) {
	if err := t.compile(); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, seg := range t.segs {
		if seg.key == "" {
			b.WriteString(seg.literal)
			continue
		}
		v := t.value(seg.key, r)
		if pad := seg.width - len([]rune(v)); pad > 0 {
			if seg.left {
				b.WriteString(v)
				b.WriteString(strings.Repeat(" ", pad))
			} else {
				b.WriteString(strings.Repeat(" ", pad))
				b.WriteString(v)
			}
			continue
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

func (t *lineTemplate) value(key string, r Record) string {
	switch key {
	case "asctime":
		if t.date != nil {
			return t.date.FormatString(r.Time)
		}
		return r.Time.Format(t.layout)
	case "created":
		return strconv.FormatFloat(float64(r.Time.UnixNano())/1e9, 'f', 6, 64)
	case "levelname":
		return r.Level.String()
	case "levelno":
		return strconv.Itoa(int(r.Level))
	case "name":
		return r.Name
	case "message":
		return r.Message
	case "filename":
		if r.File == "" {
			return ""
		}
		return filepath.Base(r.File)
	case "pathname":
		return r.File
	case "module":
		if r.File == "" {
			return ""
		}
		base := filepath.Base(r.File)
		return strings.TrimSuffix(base, filepath.Ext(base))
	case "lineno":
		return strconv.Itoa(r.Line)
	case "funcName":
		fn := r.Function
		if idx := strings.LastIndexByte(fn, '.'); idx >= 0 {
			fn = fn[idx+1:]
		}
		return fn
	case "msecs":
		return strconv.Itoa(r.Time.Nanosecond() / int(time.Millisecond))
	case "process":
		return strconv.Itoa(os.Getpid())
	}
	return ""
}
