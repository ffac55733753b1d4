package selection

// Evaluate reports whether tags satisfy expr. A nil expression selects everything.
// It is pure and safe for concurrent use.
// Evaluate 判断标签集合是否满足表达式。
func Evaluate(expr Expression, tags TagSet) bool {
	if expr == nil {
		return true
	}
	return expr.Eval(tags)
}

// Selector is the predicate handed to the test runner: one parsed expression,
// matched once per test case.
// Selector 是交给测试运行器的谓词。
type Selector struct {
	raw  string
	expr Expression
}

// NewSelector parses raw against known and returns a ready selector.
// NewSelector 解析表达式并返回选择器。
func NewSelector(raw string, known MarkerChecker) (*Selector, error) {
	expr, err := Parse(raw, known)
	if err != nil {
		return nil, err
	}
	return &Selector{raw: raw, expr: expr}, nil
}

// Match reports whether a test carrying tags is selected.
func (s *Selector) Match(tags []string) bool {
	return Evaluate(s.expr, NewTagSet(tags...))
}

// MatchSet is Match for a prebuilt TagSet.
func (s *Selector) MatchSet(tags TagSet) bool {
	return Evaluate(s.expr, tags)
}

// Expression returns the parsed expression.
func (s *Selector) Expression() Expression { return s.expr }

// Raw returns the expression as supplied by the user.
func (s *Selector) Raw() string { return s.raw }

// SelectsAll reports whether the selector was built from an empty expression.
func (s *Selector) SelectsAll() bool {
	_, ok := s.expr.(All)
	return ok
}
