// Package register holds the R-parameters of a program and evaluates the
// arithmetic expressions that reference them.
package register

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mastercactapus/cncview/coord"
)

var (
	// ErrMissingRegister is reported when an unset register is read. The
	// read yields 0.
	ErrMissingRegister = errors.New("missing register")

	// ErrExpression is reported for an expression that cannot be
	// evaluated. The expression yields 0.
	ErrExpression = errors.New("expression error")
)

var rxRef = regexp.MustCompile(`R([0-9]+)`)

// Register is a single R-parameter.
type Register struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`

	// LastModified is the store's logical clock at the last assignment.
	LastModified uint64 `json:"lastModified"`
}

func (r Register) String() string {
	return "R" + r.ID + " = " + coord.Format(r.Value)
}

// Store maps register ids to values. Ids are kept exactly as written, so
// R4 and R04 are different registers.
type Store struct {
	regs  map[string]Register
	clock uint64
}

func NewStore() *Store {
	return &Store{regs: make(map[string]Register)}
}

// Reset clears all registers and the logical clock.
func (s *Store) Reset() {
	s.regs = make(map[string]Register)
	s.clock = 0
}

// Set assigns a value to a register and returns the updated entry.
func (s *Store) Set(id string, value float64) Register {
	s.clock++
	r := Register{ID: id, Value: value, LastModified: s.clock}
	s.regs[id] = r
	return r
}

// Get returns the value of a register, or 0 and ErrMissingRegister when it
// was never set.
func (s *Store) Get(id string) (float64, error) {
	r, ok := s.regs[id]
	if !ok {
		return 0, fmt.Errorf("R%s: %w", id, ErrMissingRegister)
	}
	return r.Value, nil
}

// All returns every register ordered by numeric id.
func (s *Store) All() []Register {
	res := make([]Register, 0, len(s.regs))
	for _, r := range s.regs {
		res = append(res, r)
	}
	sort.Slice(res, func(i, j int) bool {
		a, _ := strconv.Atoi(res[i].ID)
		b, _ := strconv.Atoi(res[j].ID)
		if a != b {
			return a < b
		}
		return res[i].ID < res[j].ID
	})
	return res
}

// Evaluate substitutes every R<digits> reference with the register's current
// value and evaluates the resulting arithmetic. The result is rounded to
// three decimals.
//
// Substitution is a single textual pass. A missing register reads as 0 and
// is reported with ErrMissingRegister while the value is still returned. An
// expression that cannot be evaluated returns 0 with ErrExpression. Both may
// be joined in one error.
func (s *Store) Evaluate(expr string) (float64, error) {
	var errs []error
	seen := make(map[string]bool)
	text := rxRef.ReplaceAllStringFunc(strings.ToUpper(expr), func(ref string) string {
		id := ref[1:]
		v, err := s.Get(id)
		if err != nil && !seen[id] {
			seen[id] = true
			errs = append(errs, err)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	})

	v, err := evaluate(text)
	if err == nil {
		// rounding scales v, so range is checked on the rounded value
		v = coord.Round(v)
		if math.IsInf(v, 0) || math.IsNaN(v) {
			err = errOutOfRange
		}
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %q: %v", ErrExpression, expr, err))
		return 0, errors.Join(errs...)
	}
	return v, errors.Join(errs...)
}

// Assign evaluates expr and stores the result in register id, even when
// evaluation reported an error (the value is then 0 or partial).
func (s *Store) Assign(id, expr string) (Register, error) {
	v, err := s.Evaluate(expr)
	return s.Set(id, v), err
}
