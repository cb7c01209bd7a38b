// Package subprog loads named subprograms and resolves the register
// assignments of parameter subprograms.
package subprog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrSubprogramNotFound is reported when a requested subprogram cannot be
// loaded.
var ErrSubprogramNotFound = errors.New("subprogram not found")

// Extensions are the file extensions recognized as program files.
var Extensions = []string{".mpf", ".spf", ".nc", ".cnc"}

// A Loader supplies subprogram text by name.
type Loader interface {
	LoadSubprogram(ctx context.Context, name string) ([]string, error)
}

// Program is one entry of a program library document.
type Program struct {
	Name string   `json:"name" yaml:"name"`
	Code []string `json:"code" yaml:"code"`
}

// Library is an in-memory program collection. It is safe for concurrent use.
type Library struct {
	mx       sync.RWMutex
	programs map[string]Program
}

var _ Loader = &Library{}

func NewLibrary(programs ...Program) *Library {
	l := &Library{programs: make(map[string]Program, len(programs))}
	for _, p := range programs {
		l.Put(p)
	}
	return l
}

// Key normalizes a program name: upper case, no directory or known extension.
func Key(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	ext := filepath.Ext(name)
	for _, e := range Extensions {
		if strings.EqualFold(ext, e) {
			name = strings.TrimSuffix(name, ext)
			break
		}
	}
	return strings.ToUpper(name)
}

func (l *Library) Put(p Program) {
	l.mx.Lock()
	l.programs[Key(p.Name)] = p
	l.mx.Unlock()
}

// Delete removes a program and reports whether it existed.
func (l *Library) Delete(name string) bool {
	l.mx.Lock()
	defer l.mx.Unlock()
	k := Key(name)
	_, ok := l.programs[k]
	delete(l.programs, k)
	return ok
}

func (l *Library) Get(name string) (Program, bool) {
	l.mx.RLock()
	defer l.mx.RUnlock()
	p, ok := l.programs[Key(name)]
	return p, ok
}

// Programs returns every program sorted by name.
func (l *Library) Programs() []Program {
	l.mx.RLock()
	res := make([]Program, 0, len(l.programs))
	for _, p := range l.programs {
		res = append(res, p)
	}
	l.mx.RUnlock()

	sort.Slice(res, func(i, j int) bool { return Key(res[i].Name) < Key(res[j].Name) })
	return res
}

func (l *Library) LoadSubprogram(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := l.Get(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrSubprogramNotFound)
	}
	return append([]string(nil), p.Code...), nil
}

type libraryDoc struct {
	Programs []Program `json:"programs" yaml:"programs"`
}

// ParseLibrary decodes a library document. Both a bare list of programs and
// an object with a "programs" list are accepted, as JSON or YAML.
func ParseLibrary(data []byte) (*Library, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return NewLibrary(), nil
	}

	var programs []Program
	var err error
	switch data[0] {
	case '[':
		err = json.Unmarshal(data, &programs)
	case '{':
		var doc libraryDoc
		err = json.Unmarshal(data, &doc)
		programs = doc.Programs
	default:
		programs, err = parseYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("library: parse: %w", err)
	}

	for i, p := range programs {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("library: program %d has no name", i)
		}
	}
	return NewLibrary(programs...), nil
}

func parseYAML(data []byte) ([]Program, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		var programs []Program
		err := node.Decode(&programs)
		return programs, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc libraryDoc
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return nil, err
	}
	return doc.Programs, nil
}

// LoadLibrary reads a library document (.json, .yaml) or a directory of
// program files.
func LoadLibrary(path string) (*Library, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loadDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLibrary(data)
}

// IsProgramFile reports whether name has one of the program Extensions.
func IsProgramFile(name string) bool {
	ext := filepath.Ext(name)
	for _, e := range Extensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

func loadDir(dir string) (*Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	lib := NewLibrary()
	for _, e := range entries {
		if e.IsDir() || !IsProgramFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("library: read %s: %w", e.Name(), err)
		}
		lib.Put(Program{Name: e.Name(), Code: SplitLines(string(data))})
	}
	return lib, nil
}

// SplitLines splits program text into lines without line terminators.
func SplitLines(text string) []string {
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// WriteJSON encodes the library as a JSON list of programs.
func (l *Library) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l.Programs())
}
