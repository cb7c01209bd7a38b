package gcode

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsupportedWord is reported for a multi-letter setting such as
// LIMS=3000. The setting is skipped; the rest of the block still applies.
var ErrUnsupportedWord = errors.New("unsupported word")

// Keyword is a NAME=<expr> setting that is parsed but not interpreted.
type Keyword struct {
	Name string
	Arg  string
}

func (k Keyword) String() string { return k.Name + "=" + k.Arg }

var (
	rxAssign = regexp.MustCompile(`R([0-9]+)\s*=`)
	rxCall   = regexp.MustCompile(`(?:^|[^A-Z])L([0-9]+)\b`)
)

// StripComment removes a trailing ';' comment and surrounding whitespace.
func StripComment(s string) string {
	return strings.TrimSpace(strings.SplitN(s, ";", 2)[0])
}

// ParseLine tokenizes a single program line into a Block.
//
// Both ISO style operands (X50, Z-20.5) and Siemens style expressions
// (X=R54+2, X(R1*2), R54=R54*R69) are accepted. Comments are discarded.
// Multi-letter settings written as NAME=<expr> are returned separately as
// keywords; any other multi-letter word is an error.
func ParseLine(s string) (Block, []Keyword, error) {
	s = strings.ToUpper(StripComment(s))

	var res Block
	var kws []Keyword
	i := 0
	for {
		i = skipSpace(s, i)
		if i >= len(s) {
			return res, kws, nil
		}

		c := s[i]
		if !isLetter(c) {
			return nil, nil, fmt.Errorf("unexpected character '%c' at column %d", c, i+1)
		}
		i++
		if i < len(s) && isLetter(s[i]) {
			name := word(s, i-1)
			j := skipSpace(s, i-1+len(name))
			if j >= len(s) || s[j] != '=' {
				return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedWord, name)
			}
			arg, next, err := scanExpr(s, j+1)
			if err != nil {
				return nil, nil, fmt.Errorf("%s: %w", name, err)
			}
			kws = append(kws, Keyword{Name: name, Arg: arg})
			i = next
			continue
		}

		w := Word{W: c}
		var err error
		if c == 'R' {
			start := i
			i = skipDigits(s, i)
			if i == start {
				return nil, nil, errors.New("register without number")
			}
			w.Reg = s[start:i]
			i = skipSpace(s, i)
			if i >= len(s) || s[i] != '=' {
				return nil, nil, errors.New("register R" + w.Reg + " used outside an assignment")
			}
			w.Arg, i, err = scanExpr(s, i+1)
			if err != nil {
				return nil, nil, fmt.Errorf("R%s: %w", w.Reg, err)
			}
			res = append(res, w)
			continue
		}

		j := skipSpace(s, i)
		switch {
		case j < len(s) && s[j] == '=':
			w.Arg, i, err = scanExpr(s, j+1)
		case i < len(s) && s[i] == '(':
			w.Arg, i, err = scanExpr(s, i)
		default:
			start := i
			for i < len(s) && (s[i] == '-' || s[i] == '+') {
				i++
			}
			if i < len(s) && s[i] == '(' {
				// signed group, e.g. Z-(R2)
				w.Arg, i, err = scanExpr(s, start)
				break
			}
			for i < len(s) && strings.IndexByte("0123456789.+-", s[i]) >= 0 {
				i++
			}
			w.Arg = s[start:i]
			if w.Arg == "" {
				err = errors.New("missing value")
			}
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%c: %w", c, err)
		}
		res = append(res, w)
	}
}

// Assignments extracts every R-register assignment from a line, ignoring
// whatever else the line contains. Used for parameter subprograms whose
// bodies may hold statements the line parser does not support.
func Assignments(s string) Block {
	s = strings.ToUpper(StripComment(s))

	var res Block
	for _, loc := range rxAssign.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] > 0 && isLetter(s[loc[0]-1]) {
			continue
		}
		expr, _, err := scanExpr(s, loc[1])
		if err != nil {
			continue
		}
		res = append(res, Word{W: 'R', Reg: s[loc[2]:loc[3]], Arg: expr})
	}
	return res
}

// SubprogramCall returns the name ("L105") of the subprogram called by a line.
func SubprogramCall(s string) (string, bool) {
	m := rxCall.FindStringSubmatch(strings.ToUpper(StripComment(s)))
	if m == nil {
		return "", false
	}
	return "L" + m[1], true
}

// scanExpr reads an expression starting at i. Whitespace ends the
// expression unless it sits between an operator and its operand, and any
// letter other than a register reference ends it at nesting depth zero.
func scanExpr(s string, i int) (string, int, error) {
	i = skipSpace(s, i)
	start := i
	depth := 0
loop:
	for i < len(s) {
		c := s[i]
		switch {
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return "", i, errors.New("unbalanced parentheses")
			}
		case c == ' ' || c == '\t':
			if depth == 0 && !continues(s, start, i) {
				break loop
			}
		case isLetter(c):
			if c == 'R' && i+1 < len(s) && isDigit(s[i+1]) {
				i = skipDigits(s, i+1)
				continue
			}
			if depth == 0 {
				break loop
			}
		}
		i++
	}

	expr := strings.Join(strings.Fields(s[start:i]), "")
	if expr == "" {
		return "", i, errors.New("missing expression")
	}
	return expr, i, nil
}

func continues(s string, start, i int) bool {
	prev := strings.TrimRight(s[start:i], " \t")
	if prev == "" || strings.IndexByte("+-*/(", prev[len(prev)-1]) >= 0 {
		return true
	}
	next := strings.TrimLeft(s[i:], " \t")
	return next != "" && strings.IndexByte("+-*/)", next[0]) >= 0
}

func word(s string, i int) string {
	j := i
	for j < len(s) && (isLetter(s[j]) || isDigit(s[j])) {
		j++
	}
	return s[i:j]
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func skipDigits(s string, i int) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func isLetter(c byte) bool { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
