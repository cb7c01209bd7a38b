package subprog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mastercactapus/cncview/gcode"
	"github.com/mastercactapus/cncview/register"
)

// ParamMarker starts the parameter section of a subprogram. When present,
// only the lines after it are scanned for assignments.
const ParamMarker = "PARAM:"

// Assignment is one register value set by a subprogram.
type Assignment struct {
	ID    string
	Value float64
}

func (a Assignment) String() string {
	return register.Register{ID: a.ID, Value: a.Value}.String()
}

// Resolver applies the register assignments of a subprogram to a store.
type Resolver struct {
	Loader Loader
	Store  *register.Store
}

func NewResolver(l Loader, s *register.Store) *Resolver {
	return &Resolver{Loader: l, Store: s}
}

// Resolve loads the named subprogram and evaluates every R<digits>=<expr>
// statement in textual order, writing each result to the store before the
// next one is evaluated. It returns the assignments made.
//
// A missing subprogram yields no assignments and an error wrapping
// ErrSubprogramNotFound. Evaluation problems do not stop resolution; they
// are returned as diagnostics next to the assignments.
func (r *Resolver) Resolve(ctx context.Context, name string) ([]Assignment, []error, error) {
	if r.Loader == nil {
		return nil, nil, fmt.Errorf("%s: no program library: %w", name, ErrSubprogramNotFound)
	}
	lines, err := r.Loader.LoadSubprogram(ctx, name)
	if errors.Is(err, ErrSubprogramNotFound) {
		return nil, nil, err
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w: %v", name, ErrSubprogramNotFound, err)
	}

	var res []Assignment
	var diags []error
	for _, line := range paramSection(lines) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			continue
		}
		for _, w := range gcode.Assignments(trimmed) {
			reg, err := r.Store.Assign(w.Reg, w.Arg)
			if err != nil {
				diags = append(diags, fmt.Errorf("%s: R%s: %w", name, w.Reg, err))
			}
			res = append(res, Assignment{ID: reg.ID, Value: reg.Value})
		}
	}
	return res, diags, nil
}

func paramSection(lines []string) []string {
	for i, l := range lines {
		if strings.Contains(strings.ToUpper(l), ParamMarker) {
			return lines[i+1:]
		}
	}
	return lines
}
