package selection

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/netxfw/testsel/pkg/errors"
)

// MarkerChecker validates identifiers against the set of known markers.
// *marker.Registry implements it.
// MarkerChecker 用于校验标识符是否为已知标记。
type MarkerChecker interface {
	CheckKnown(name string) error
}

// Parse builds an Expression from raw using the grammar
//
//	expr     := or_expr
//	or_expr  := and_expr ( "or" and_expr )*
//	and_expr := not_expr ( "and" not_expr )*
//	not_expr := "not" not_expr | atom
//	atom     := "(" expr ")" | IDENT
//
// Empty or whitespace-only input yields All. Malformed input fails with
// *errors.SelectionSyntaxError. When known is non-nil every identifier must be
// a registered marker, otherwise Parse fails with *errors.UnknownMarkerError.
//
// Parse 按上述语法解析选择表达式。
func Parse(raw string, known MarkerChecker) (Expression, error) {
	if strings.TrimSpace(raw) == "" {
		return All{}, nil
	}

	p := &parser{raw: raw, toks: tokenize(raw)}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		if tok.kind == tokRParen {
			return nil, p.errorf(tok.pos, "unmatched closing parenthesis")
		}
		return nil, p.errorf(tok.pos, "unexpected %s %q, expected \"and\" or \"or\"", tok.kind, tok.text)
	}

	if known != nil {
		for _, name := range Markers(expr) {
			if err := known.CheckKnown(name); err != nil {
				return nil, err
			}
		}
	}
	return expr, nil
}

// MustParse is like Parse without a registry check and panics on error.
// Intended for tests and static expressions.
func MustParse(raw string) Expression {
	expr, err := Parse(raw, nil)
	if err != nil {
		panic(err)
	}
	return expr
}

type parser struct {
	raw  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(pos int, format string, args ...interface{}) error {
	return &apperrors.SelectionSyntaxError{
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
		Input:    p.raw,
	}
}

func (p *parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = And{L: left, R: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Expression, error) {
	if p.peek().kind == tokNot {
		p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{X: x}, nil
	}
	return p.parseAtom()
}

func (p *parser) parseAtom() (Expression, error) {
	tok := p.next()
	switch tok.kind {
	case tokIdent:
		if !utf8.ValidString(tok.text) {
			return nil, p.errorf(tok.pos, "marker name %q is not valid UTF-8", tok.text)
		}
		return Literal{Name: tok.text}, nil
	case tokLParen:
		if p.peek().kind == tokRParen {
			return nil, p.errorf(tok.pos, "empty parentheses")
		}
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		closing := p.next()
		if closing.kind != tokRParen {
			if closing.kind == tokEOF {
				return nil, p.errorf(closing.pos, "missing closing parenthesis for \"(\" at position %d", tok.pos)
			}
			return nil, p.errorf(closing.pos, "unexpected %s %q, expected \")\"", closing.kind, closing.text)
		}
		return x, nil
	case tokEOF:
		prev := p.prevOperator()
		if prev != "" {
			return nil, p.errorf(tok.pos, "expected marker name after %q", prev)
		}
		return nil, p.errorf(tok.pos, "unexpected end of input")
	default:
		return nil, p.errorf(tok.pos, "unexpected %s, expected marker name or \"(\"", tok.kind)
	}
}

// prevOperator returns the keyword or "(" immediately before the cursor, if any.
func (p *parser) prevOperator() string {
	for i := p.pos - 1; i >= 0; i-- {
		switch p.toks[i].kind {
		case tokAnd, tokOr, tokNot, tokLParen:
			return p.toks[i].text
		case tokEOF:
			continue
		default:
			return ""
		}
	}
	return ""
}
