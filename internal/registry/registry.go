// Package registry is the command core of the toolkit: it holds the set of
// registered subcommands, parses an invocation against the matched
// command's declared options, runs its handler and maps the outcome to
// console output and an exit status.
//
// Commands are registered once at startup. After Freeze the registry is
// read-only, so it is safe to share without locking.
package registry

import (
	"sort"
)

// Registry maps command names to their specs.
type Registry struct {
	commands map[string]*CommandSpec
	frozen   bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{commands: make(map[string]*CommandSpec)}
}

// Register validates spec and adds it. It fails with a DuplicateCommandError
// if the name is taken, and leaves the registry unchanged on any error.
func (r *Registry) Register(spec CommandSpec) error {
	if r.frozen {
		return newError(KindInternal, spec.Name, "", "cannot register %q: registry is frozen", spec.Name)
	}
	if err := spec.validate(); err != nil {
		return err
	}
	if _, exists := r.commands[spec.Name]; exists {
		return newError(KindDuplicateCommand, spec.Name, "", "command %q is already registered", spec.Name)
	}
	r.commands[spec.Name] = spec.clone()
	return nil
}

// RegisterAll registers specs in order and stops at the first failure.
func (r *Registry) RegisterAll(specs ...CommandSpec) error {
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			return err
		}
	}
	return nil
}

// Freeze makes the registry read-only. Later Register calls fail.
func (r *Registry) Freeze() { r.frozen = true }

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen }

// Lookup returns a copy of the named command's spec.
func (r *Registry) Lookup(name string) (CommandSpec, bool) {
	s, ok := r.commands[name]
	if !ok {
		return CommandSpec{}, false
	}
	return *s.clone(), true
}

// Commands returns every registered command sorted by name.
func (r *Registry) Commands() []CommandSpec {
	out := make([]CommandSpec, 0, len(r.commands))
	for _, s := range r.commands {
		out = append(out, *s.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.commands) }

func (r *Registry) lookup(name string) (*CommandSpec, bool) {
	s, ok := r.commands[name]
	return s, ok
}
