package logger

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	apperrors "github.com/netxfw/testsel/pkg/errors"
)

// Action is what a warning filter does with a matching warning.
// Action 是警告过滤规则对匹配警告执行的动作。
type Action int

const (
	// ActionDefault passes the warning through as a WARNING log record.
	ActionDefault Action = iota
	// ActionIgnore suppresses the warning on every sink.
	ActionIgnore
	// ActionError escalates the warning to a *WarningError.
	ActionError
)

func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionError:
		return "error"
	}
	return "default"
}

// ParseAction parses ignore, error or default.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore":
		return ActionIgnore, nil
	case "error":
		return ActionError, nil
	case "default":
		return ActionDefault, nil
	}
	return ActionDefault, fmt.Errorf("unknown action %q (want ignore, error or default)", s)
}

// Warning is a runtime warning raised during a run.
// Warning 是运行期间产生的警告。
type Warning struct {
	Category string
	Message  string
}

func (w Warning) String() string {
	if w.Category == "" {
		return w.Message
	}
	return w.Category + ": " + w.Message
}

// WarningError is returned for warnings matched by an "error" filter.
// WarningError 表示被 error 规则升级为错误的警告。
type WarningError struct {
	Warning Warning
	Filter  string
}

func (e *WarningError) Error() string {
	return fmt.Sprintf("%s: %s (filter %q)", apperrors.ErrWarningEscalated, e.Warning, e.Filter)
}

func (e *WarningError) Unwrap() error { return apperrors.ErrWarningEscalated }

// FilterRule is one parsed "action:message:category" entry.
//
// Message is a case-insensitive regular expression that must match at the
// start of the warning message. Category is a glob; a pattern without a dot
// is also tried against the last dotted component of the category, so
// "PytestExperimentalApiWarning" matches "_pytest.warning_types.PytestExperimentalApiWarning".
// Empty fields match everything.
//
// FilterRule 是一条解析后的 "action:message:category" 规则。
type FilterRule struct {
	Action   Action
	Message  string
	Category string

	raw     string
	message *regexp.Regexp
	glob    glob.Glob
	// patterns message and glob were compiled from
	msgSrc, catSrc string
}

// ParseFilter parses an "action:message:category" entry. Trailing module and
// line fields are accepted only when empty.
// ParseFilter 解析一条警告过滤规则。
func ParseFilter(entry string) (FilterRule, error) {
	parts := strings.Split(entry, ":")
	if len(parts) > 5 {
		return FilterRule{}, apperrors.NewFilterError(entry, "too many fields")
	}
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	for _, extra := range parts[3:] {
		if strings.TrimSpace(extra) != "" {
			return FilterRule{}, apperrors.NewFilterError(entry, "module and line fields are not supported")
		}
	}

	action, err := ParseAction(parts[0])
	if err != nil {
		return FilterRule{}, apperrors.NewFilterError(entry, err.Error())
	}

	rule := FilterRule{
		Action:   action,
		Message:  strings.TrimSpace(parts[1]),
		Category: strings.TrimSpace(parts[2]),
		raw:      entry,
	}
	return rule.Compile()
}

// Compile returns r with its message pattern and category glob compiled.
// Rules built as struct literals go through it in Resolve.
// Compile 编译规则中的消息正则与类别通配符。
func (r FilterRule) Compile() (FilterRule, error) {
	r.message, r.glob = nil, nil
	r.msgSrc, r.catSrc = r.Message, r.Category
	if r.Message != "" {
		re, err := regexp.Compile("(?i)^(?:" + r.Message + ")")
		if err != nil {
			return FilterRule{}, apperrors.NewFilterError(r.String(), fmt.Sprintf("bad message pattern: %v", err))
		}
		r.message = re
	}
	if r.Category != "" {
		g, err := glob.Compile(r.Category, '.')
		if err != nil {
			return FilterRule{}, apperrors.NewFilterError(r.String(), fmt.Sprintf("bad category pattern: %v", err))
		}
		r.glob = g
	}
	return r, nil
}

func (r FilterRule) compiled() bool {
	if r.Message != r.msgSrc || r.Category != r.catSrc {
		return false
	}
	return (r.Message == "" || r.message != nil) && (r.Category == "" || r.glob != nil)
}

// ParseFilters parses an ordered list of entries, keeping their order.
func ParseFilters(entries []string) ([]FilterRule, error) {
	rules := make([]FilterRule, 0, len(entries))
	for _, entry := range entries {
		rule, err := ParseFilter(entry)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// String returns the entry the rule was parsed from.
func (r FilterRule) String() string {
	if r.raw != "" {
		return r.raw
	}
	return r.Action.String() + ":" + r.Message + ":" + r.Category
}

// Matches reports whether w is selected by the rule.
func (r FilterRule) Matches(w Warning) bool {
	if !r.compiled() {
		c, err := r.Compile()
		if err != nil {
			return false
		}
		r = c
	}
	if r.message != nil && !r.message.MatchString(w.Message) {
		return false
	}
	if r.glob == nil {
		return true
	}
	if r.glob.Match(w.Category) {
		return true
	}
	if !strings.Contains(r.Category, ".") {
		if idx := strings.LastIndexByte(w.Category, '.'); idx >= 0 {
			return r.glob.Match(w.Category[idx+1:])
		}
	}
	return false
}

// Decide applies rules in order; the first match wins and no match means ActionDefault.
// Decide 按顺序应用规则，首条匹配生效，无匹配则为默认动作。
func Decide(rules []FilterRule, w Warning) (Action, *FilterRule) {
	for i := range rules {
		if rules[i].Matches(w) {
			return rules[i].Action, &rules[i]
		}
	}
	return ActionDefault, nil
}
