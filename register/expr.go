package register

import (
	"errors"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `\d+\.\d*|\.\d+|\d+`},
	{Name: "Operator", Pattern: `[-+*/()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[expression](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
)

// expression is the grammar of register arithmetic. It only knows numbers,
// the four basic operators and parentheses, so evaluation always terminates.
type expression struct {
	Left  *term     `parser:"@@"`
	Right []*opTerm `parser:"@@*"`
}

type opTerm struct {
	Op   string `parser:"@(\"+\" | \"-\")"`
	Term *term  `parser:"@@"`
}

type term struct {
	Left  *unary      `parser:"@@"`
	Right []*opFactor `parser:"@@*"`
}

type opFactor struct {
	Op    string `parser:"@(\"*\" | \"/\")"`
	Unary *unary `parser:"@@"`
}

type unary struct {
	Op      string   `parser:"  @(\"-\" | \"+\")"`
	Unary   *unary   `parser:"  @@"`
	Primary *primary `parser:"| @@"`
}

type primary struct {
	Number *float64    `parser:"  @Number"`
	Sub    *expression `parser:"| \"(\" @@ \")\""`
}

var (
	errDivisionByZero = errors.New("division by zero")
	errOutOfRange     = errors.New("result out of range")
)

func evaluate(s string) (float64, error) {
	ast, err := exprParser.ParseString("", s)
	if err != nil {
		return 0, err
	}
	return ast.eval()
}

func (e *expression) eval() (float64, error) {
	v, err := e.Left.eval()
	if err != nil {
		return 0, err
	}
	for _, r := range e.Right {
		rv, err := r.Term.eval()
		if err != nil {
			return 0, err
		}
		if r.Op == "+" {
			v += rv
		} else {
			v -= rv
		}
	}
	return v, nil
}

func (t *term) eval() (float64, error) {
	v, err := t.Left.eval()
	if err != nil {
		return 0, err
	}
	for _, r := range t.Right {
		rv, err := r.Unary.eval()
		if err != nil {
			return 0, err
		}
		if r.Op == "*" {
			v *= rv
			continue
		}
		if rv == 0 {
			return 0, errDivisionByZero
		}
		v /= rv
	}
	return v, nil
}

func (u *unary) eval() (float64, error) {
	if u.Primary != nil {
		return u.Primary.eval()
	}
	v, err := u.Unary.eval()
	if err != nil {
		return 0, err
	}
	if u.Op == "-" {
		return -v, nil
	}
	return v, nil
}

func (p *primary) eval() (float64, error) {
	if p.Number != nil {
		return *p.Number, nil
	}
	return p.Sub.eval()
}
