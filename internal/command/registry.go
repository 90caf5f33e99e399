// Package command implements the ex-style command table: a static
// built-in table, dynamic registration for external modules, and a
// bounded history ring.
package command

import (
	"fmt"
	"strconv"
	"strings"
)

// Context is the minimal surface a command handler needs from the
// session; session.Session implements it. Kept as an interface so this
// package has no dependency on session (which depends on command).
type Context interface {
	Save(path string) error
	Quit(force bool) error
	Open(path string) error
	SetOption(name, value string) error
	GotoLine(n int) error
	Help(name string) error
	AnyDirty() bool
}

// Handler is a dynamic or built-in command's implementation.
type Handler func(ctx Context, args []string) error

// Spec describes one registered command's argument arity.
type Spec struct {
	Name    string
	MinArgs int
	MaxArgs int
	Run     Handler
}

const historyCap = 256

// Registry holds the built-in table, the dynamic registry, and history.
type Registry struct {
	builtins map[string]Spec
	dynamic  map[string]Spec
	history  []string
}

// New returns a registry pre-populated with the built-in table.
func New() *Registry {
	r := &Registry{
		builtins: map[string]Spec{},
		dynamic:  map[string]Spec{},
	}
	r.registerBuiltins()
	return r
}

func (r *Registry) registerBuiltins() {
	add := func(name string, min, max int, run Handler) {
		r.builtins[name] = Spec{Name: name, MinArgs: min, MaxArgs: max, Run: run}
	}

	add("w", 0, 1, func(ctx Context, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return ctx.Save(path)
	})
	add("q", 0, 0, func(ctx Context, args []string) error {
		return ctx.Quit(false)
	})
	add("q!", 0, 0, func(ctx Context, args []string) error {
		return ctx.Quit(true)
	})
	add("wq", 0, 1, func(ctx Context, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		if err := ctx.Save(path); err != nil {
			return err
		}
		return ctx.Quit(false)
	})
	add("e", 1, 1, func(ctx Context, args []string) error {
		return ctx.Open(args[0])
	})
	add("set", 1, 2, func(ctx Context, args []string) error {
		val := ""
		if len(args) == 2 {
			val = args[1]
		}
		return ctx.SetOption(args[0], val)
	})
	add("help", 0, 1, func(ctx Context, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return ctx.Help(name)
	})
	add("goto", 1, 1, func(ctx Context, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("goto: not a number: %s", args[0])
		}
		return ctx.GotoLine(n)
	})
}

// Register adds a dynamic command; collisions with built-ins are
// rejected.
func (r *Registry) Register(spec Spec) error {
	if _, exists := r.builtins[spec.Name]; exists {
		return fmt.Errorf("command %q is a built-in and cannot be overridden", spec.Name)
	}
	r.dynamic[spec.Name] = spec
	return nil
}

func (r *Registry) pushHistory(line string) {
	if len(r.history) > 0 && r.history[len(r.history)-1] == line {
		return
	}
	r.history = append(r.history, line)
	if len(r.history) > historyCap {
		r.history = r.history[len(r.history)-historyCap:]
	}
}

// History returns the command history, oldest first.
func (r *Registry) History() []string {
	return r.history
}

// Execute looks up the first whitespace-delimited token against the
// registry (built-ins first, then dynamic), validates arity, and runs the
// handler. A bare numeric token is treated as "goto <n>".
func (r *Registry) Execute(ctx Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	r.pushHistory(line)

	fields := strings.Fields(line)
	name := fields[0]
	args := fields[1:]

	if _, err := strconv.Atoi(name); err == nil {
		return ctx.GotoLine(mustAtoi(name))
	}

	spec, ok := r.builtins[name]
	if !ok {
		spec, ok = r.dynamic[name]
	}
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	if len(args) < spec.MinArgs || len(args) > spec.MaxArgs {
		return fmt.Errorf("%s: wrong number of arguments", name)
	}
	return spec.Run(ctx, args)
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
