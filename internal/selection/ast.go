package selection

import "strings"

// Expression is a parsed selection formula. Implementations are immutable.
// Expression 是解析后的选择表达式，不可变。
type Expression interface {
	// Eval reports whether tags satisfy the expression.
	Eval(tags TagSet) bool
	// String renders the expression in canonical, fully parenthesised form.
	String() string
}

// All is the empty selection: it matches every tag set.
type All struct{}

// Literal matches when its marker is present in the tag set.
type Literal struct {
	Name string
}

// Not negates its child.
type Not struct {
	X Expression
}

// And matches when both sides match.
type And struct {
	L, R Expression
}

// Or matches when either side matches.
type Or struct {
	L, R Expression
}

func (All) Eval(TagSet) bool           { return true }
func (e Literal) Eval(tags TagSet) bool { return tags.Has(e.Name) }
func (e Not) Eval(tags TagSet) bool     { return !e.X.Eval(tags) }
func (e And) Eval(tags TagSet) bool     { return e.L.Eval(tags) && e.R.Eval(tags) }
func (e Or) Eval(tags TagSet) bool      { return e.L.Eval(tags) || e.R.Eval(tags) }

func (All) String() string       { return "" }
func (e Literal) String() string { return e.Name }
func (e Not) String() string     { return "not " + e.X.String() }
func (e And) String() string     { return "(" + e.L.String() + " and " + e.R.String() + ")" }
func (e Or) String() string      { return "(" + e.L.String() + " or " + e.R.String() + ")" }

// Markers returns the distinct marker names referenced by expr, in first-seen order.
// Markers 返回表达式中引用的标记名称（去重，按出现顺序）。
func Markers(expr Expression) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(Expression)
	walk = func(e Expression) {
		switch n := e.(type) {
		case Literal:
			if !seen[n.Name] {
				seen[n.Name] = true
				out = append(out, n.Name)
			}
		case Not:
			walk(n.X)
		case And:
			walk(n.L)
			walk(n.R)
		case Or:
			walk(n.L)
			walk(n.R)
		}
	}
	walk(expr)
	return out
}

// TagSet is the set of markers attached to one test case.
// TagSet 是附加在单个测试用例上的标记集合。
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from tag names. Surrounding whitespace is trimmed.
func NewTagSet(tags ...string) TagSet {
	s := make(TagSet, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			s[t] = struct{}{}
		}
	}
	return s
}

// Has reports whether name is in the set.
func (s TagSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}
