package selection

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Env is the environment a compiled selection runs against.
// Env 是编译后选择表达式的运行环境。
type Env struct {
	Tags TagSet
}

// Has reports whether the current test carries name.
func (e Env) Has(name string) bool {
	return e.Tags.Has(name)
}

// Program is a selection compiled to expr-lang bytecode. Runs never share
// state, so a Program may be used from several goroutines.
// Program 是编译为 expr-lang 字节码的选择表达式。
type Program struct {
	Source  string
	program *vm.Program
}

// Compile translates expr into an expr-lang program.
// Compile 将表达式翻译为 expr-lang 程序。
func Compile(e Expression) (*Program, error) {
	var b strings.Builder
	if err := translate(&b, e); err != nil {
		return nil, err
	}
	src := b.String()

	program, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile selection %q: %w (expr: %s)", e, err, src)
	}
	return &Program{Source: src, program: program}, nil
}

// Run evaluates the program for one tag set.
func (p *Program) Run(tags TagSet) (bool, error) {
	out, err := expr.Run(p.program, Env{Tags: tags})
	if err != nil {
		return false, err
	}
	matched, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("selection program returned %T, want bool", out)
	}
	return matched, nil
}

func translate(b *strings.Builder, e Expression) error {
	switch n := e.(type) {
	case nil, All:
		b.WriteString("true")
	case Literal:
		// strconv.Quote would turn invalid bytes into U+FFFD and match a different tag.
		if !utf8.ValidString(n.Name) {
			return fmt.Errorf("marker name %q is not valid UTF-8", n.Name)
		}
		b.WriteString("Has(")
		b.WriteString(strconv.Quote(n.Name))
		b.WriteString(")")
	case Not:
		b.WriteString("!(")
		if err := translate(b, n.X); err != nil {
			return err
		}
		b.WriteString(")")
	case And:
		return translateBinary(b, n.L, n.R, " && ")
	case Or:
		return translateBinary(b, n.L, n.R, " || ")
	default:
		return fmt.Errorf("unsupported selection node %T", e)
	}
	return nil
}

func translateBinary(b *strings.Builder, l, r Expression, op string) error {
	b.WriteString("(")
	if err := translate(b, l); err != nil {
		return err
	}
	b.WriteString(op)
	if err := translate(b, r); err != nil {
		return err
	}
	b.WriteString(")")
	return nil
}
