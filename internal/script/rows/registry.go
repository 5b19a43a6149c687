package rows

import (
	"fmt"
	"sort"
	"strings"

	"github.com/michaeldyrynda/scriptrun/internal/config"
	"github.com/michaeldyrynda/scriptrun/internal/script/types"
)

// ArgKind describes how a row argument is interpreted.
type ArgKind int

const (
	ArgText ArgKind = iota
	ArgInt
)

// Handler executes a row against the run context with rendered arguments.
type Handler func(ctx *types.RunContext, args []string) (string, error)

// Definition describes one row command.
type Definition struct {
	Name    string
	Args    []string
	Kinds   []ArgKind
	Result  bool
	Summary string
	Handler Handler
}

// Arity is the exact number of arguments the row takes.
func (d Definition) Arity() int {
	return len(d.Args)
}

// IsIntArg reports whether argument i must be an integer.
func (d Definition) IsIntArg(i int) bool {
	return i < len(d.Kinds) && d.Kinds[i] == ArgInt
}

// Usage renders the row the way it is written in a script.
func (d Definition) Usage() string {
	if len(d.Args) == 0 {
		return d.Name
	}
	return d.Name + " | " + strings.Join(d.Args, " | ")
}

var registry = make(map[string]Definition)

// Normalize reduces a row command to its graceful form: case, spaces,
// dashes, underscores and dots are ignored.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '\t', '-', '_', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func Register(def Definition) {
	key := Normalize(def.Name)
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("row %q already registered", def.Name))
	}
	if len(def.Kinds) != 0 && len(def.Kinds) != len(def.Args) {
		panic(fmt.Sprintf("row %q declares %d kinds for %d args", def.Name, len(def.Kinds), len(def.Args)))
	}
	registry[key] = def
}

func Lookup(name string) (Definition, bool) {
	def, ok := registry[Normalize(name)]
	return def, ok
}

func Create(cfg config.RowConfig) (types.Row, error) {
	def, ok := Lookup(cfg.Command)
	if !ok {
		return nil, fmt.Errorf("unknown row %q (available: %v)", cfg.Command, ListRegistered())
	}
	return NewScriptRow(def, cfg), nil
}

func ListRegistered() []string {
	names := make([]string, 0, len(registry))
	for _, def := range registry {
		names = append(names, def.Name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns every registered row sorted by name.
func Definitions() []Definition {
	defs := make([]Definition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

func init() {
	Register(Definition{
		Name:    "set directory for test",
		Args:    []string{"directory"},
		Summary: "Prefix every later filename and command line",
		Handler: setDirectory,
	})
	Register(Definition{
		Name:    "run command",
		Args:    []string{"command line"},
		Summary: "Start a process without waiting for it",
		Handler: runCommand,
	})
	Register(Definition{
		Name:    "wait for",
		Args:    []string{"seconds"},
		Kinds:   []ArgKind{ArgInt},
		Summary: "Pause the script",
		Handler: waitFor,
	})
	Register(Definition{
		Name:    "create file with",
		Args:    []string{"name", "contents"},
		Summary: "Create or truncate a file with literal contents",
		Handler: createFile,
	})
	Register(Definition{
		Name:    "create executable file with",
		Args:    []string{"name", "contents"},
		Summary: "Create or truncate an executable file",
		Handler: createExecutableFile,
	})
	Register(Definition{
		Name:    "delete file",
		Args:    []string{"name"},
		Result:  true,
		Summary: "Remove an existing file",
		Handler: deleteFile,
	})
	Register(Definition{
		Name:    "file mutated after",
		Args:    []string{"name", "epoch seconds"},
		Kinds:   []ArgKind{ArgText, ArgInt},
		Result:  true,
		Summary: "Compare a file's modification time",
		Handler: fileMutatedAfter,
	})
	Register(Definition{
		Name:    "file mutated before",
		Args:    []string{"name", "epoch seconds"},
		Kinds:   []ArgKind{ArgText, ArgInt},
		Result:  true,
		Summary: "Compare a file's modification time",
		Handler: fileMutatedBefore,
	})
	Register(Definition{
		Name:    "open file",
		Args:    []string{"name"},
		Summary: "Start authoring a file",
		Handler: openFile,
	})
	Register(Definition{
		Name:    "add line to file",
		Args:    []string{"line"},
		Summary: "Queue a line for the open file",
		Handler: addLine,
	})
	Register(Definition{
		Name:    "make file executable",
		Summary: "Write the open file with the executable bit",
		Handler: makeExecutable,
	})
	Register(Definition{
		Name:    "write and close file",
		Summary: "Write the queued lines and end authoring",
		Handler: writeAndClose,
	})
}
