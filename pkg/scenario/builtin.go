package scenario

import (
	"bytes"
	"embed"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/matzehuels/overflow/pkg/errors"
)

//go:embed builtin/*.toml
var builtinFS embed.FS

var (
	builtinOnce sync.Once
	builtins    []*Scenario
)

// Builtin returns copies of the built-in scenarios sorted by name.
func Builtin() []*Scenario {
	builtinOnce.Do(loadBuiltins)
	out := make([]*Scenario, len(builtins))
	for i, s := range builtins {
		out[i] = s.Clone()
	}
	return out
}

// Lookup returns a copy of the built-in scenario with the given name.
func Lookup(name string) (*Scenario, error) {
	builtinOnce.Do(loadBuiltins)
	for _, s := range builtins {
		if s.Name == name {
			return s.Clone(), nil
		}
	}
	return nil, errors.New(errors.ErrCodeScenarioNotFound, "no built-in scenario %q", name)
}

// loadBuiltins panics on a malformed embedded file; they are covered by tests.
func loadBuiltins() {
	names, err := fs.Glob(builtinFS, "builtin/*.toml")
	if err != nil {
		panic(err)
	}
	for _, name := range names {
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			panic(err)
		}
		s, err := Decode(bytes.NewReader(data), FormatTOML)
		if err != nil {
			panic(path.Base(name) + ": " + err.Error())
		}
		if err := s.Validate(); err != nil {
			panic(path.Base(name) + ": " + err.Error())
		}
		builtins = append(builtins, s)
	}
	sort.Slice(builtins, func(i, j int) bool { return builtins[i].Name < builtins[j].Name })
}
