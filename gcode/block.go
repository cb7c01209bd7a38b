package gcode

import (
	"errors"
	"strings"
)

// Block is the tokenized content of one program line.
type Block []Word

// Arg returns the operand of the first word with address w.
func (b Block) Arg(w byte) (bool, string) {
	for _, g := range b {
		if g.W == w && !g.IsAssign() {
			return true, g.Arg
		}
	}
	return false, ""
}

// Has reports whether any word in the block uses address w.
func (b Block) Has(w byte) bool {
	ok, _ := b.Arg(w)
	return ok
}

// Words returns every word with address w, in block order.
func (b Block) Words(w byte) Block {
	var res Block
	for _, g := range b {
		if g.W == w && !g.IsAssign() {
			res = append(res, g)
		}
	}
	return res
}

// Assignments returns the R-register assignments in left to right order.
func (b Block) Assignments() Block {
	var res Block
	for _, g := range b {
		if g.IsAssign() {
			res = append(res, g)
		}
	}
	return res
}

// HasMotion reports whether the block mentions an axis.
func (b Block) HasMotion() bool {
	for _, g := range b {
		if g.IsAxis() {
			return true
		}
	}
	return false
}

func (b Block) Validate() error {
	var checkWord [256]bool
	var checkModal [256]bool

	var m ModalGroup
	for _, g := range b {
		if !g.IsValid() {
			return errors.New("invalid word in block")
		}
		switch g.W {
		case 'G', 'M', 'R':
		default:
			if checkWord[g.W] {
				return errors.New("word was repeated in a block: " + string(g.W))
			}
		}
		checkWord[g.W] = true
		if (g.W == 'G' || g.W == 'M') && !g.IsLiteral() {
			return errors.New("non-numeric code: " + g.String())
		}
		m = g.ModalGroup()
		if m == ModalGroupNone || m == ModalGroupNonModal {
			continue
		}
		if checkModal[m] {
			return errors.New("multiple words from same modal group: " + g.String())
		}
		checkModal[m] = true
	}

	return nil
}

func (b Block) String() string {
	parts := make([]string, len(b))
	for i, w := range b {
		parts[i] = w.String()
	}
	return strings.Join(parts, " ")
}
