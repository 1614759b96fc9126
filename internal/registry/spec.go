package registry

import (
	"context"
	"fmt"
	"io"
	"regexp"
)

// OptionType is the expected value type of an option.
type OptionType int

const (
	// String options take any text value.
	String OptionType = iota
	// Int options take a base-10 integer.
	Int
	// Bool options accept --x, --x=true and --x=false.
	Bool
	// Flag options are presence-only and reject explicit values.
	Flag
)

func (t OptionType) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Flag:
		return "flag"
	}
	return fmt.Sprintf("OptionType(%d)", int(t))
}

func (t OptionType) takesValue() bool {
	return t == String || t == Int
}

func (t OptionType) zero() any {
	switch t {
	case Int:
		return 0
	case Bool, Flag:
		return false
	}
	return ""
}

// OptionSpec declares one option accepted by a command.
type OptionSpec struct {
	Name      string // long flag name, without dashes
	Shorthand string // optional single-character alias
	Summary   string
	Type      OptionType
	Required  bool
	Default   any // nil, or a value of the Go type matching Type
}

// ArgSpec declares one positional argument.
type ArgSpec struct {
	Name     string
	Summary  string
	Required bool
}

// Invocation is what a handler receives: its parsed arguments and the
// process streams.
type Invocation struct {
	Command string
	Args    ParsedArgs
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// Handler runs a command. Output may be written to inv.Stdout directly or
// returned as the result message.
type Handler func(ctx context.Context, inv *Invocation) Result

// CommandSpec is the declarative description of one subcommand.
type CommandSpec struct {
	Name        string
	Summary     string
	Description string
	Args        []ArgSpec
	Options     []OptionSpec

	// PassThrough delivers every token after the command name as a
	// positional argument without option parsing.
	PassThrough bool

	Handler Handler
}

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

func (s *CommandSpec) validate() error {
	if !namePattern.MatchString(s.Name) {
		return newError(KindInternal, s.Name, "", "invalid command name %q — use lowercase letters, digits and dashes", s.Name)
	}
	if s.Handler == nil {
		return newError(KindInternal, s.Name, "", "command %q has no handler", s.Name)
	}

	longs := make(map[string]bool)
	shorts := make(map[string]bool)
	for _, o := range s.Options {
		if !namePattern.MatchString(o.Name) || o.Name == "help" {
			return newError(KindInternal, s.Name, o.Name, "command %q declares invalid option name %q", s.Name, o.Name)
		}
		if longs[o.Name] {
			return newError(KindInternal, s.Name, o.Name, "command %q declares option --%s twice", s.Name, o.Name)
		}
		longs[o.Name] = true

		if o.Shorthand != "" {
			if len(o.Shorthand) != 1 || o.Shorthand == "h" || o.Shorthand == "-" {
				return newError(KindInternal, s.Name, o.Name, "command %q declares invalid shorthand %q for --%s", s.Name, o.Shorthand, o.Name)
			}
			if shorts[o.Shorthand] {
				return newError(KindInternal, s.Name, o.Name, "command %q declares shorthand -%s twice", s.Name, o.Shorthand)
			}
			shorts[o.Shorthand] = true
		}

		if o.Type < String || o.Type > Flag {
			return newError(KindInternal, s.Name, o.Name, "option --%s has unknown type %d", o.Name, int(o.Type))
		}
		if o.Required && o.Default != nil {
			return newError(KindInternal, s.Name, o.Name, "option --%s is required and cannot have a default", o.Name)
		}
		if err := checkDefault(o); err != nil {
			return newError(KindInternal, s.Name, o.Name, "option --%s: %v", o.Name, err)
		}
	}

	optional := false
	for _, a := range s.Args {
		if a.Name == "" {
			return newError(KindInternal, s.Name, "", "command %q declares an unnamed argument", s.Name)
		}
		if a.Required && optional {
			return newError(KindInternal, s.Name, a.Name, "required argument <%s> follows an optional one", a.Name)
		}
		if !a.Required {
			optional = true
		}
	}
	return nil
}

func checkDefault(o OptionSpec) error {
	if o.Default == nil {
		return nil
	}
	var ok bool
	switch o.Type {
	case String:
		_, ok = o.Default.(string)
	case Int:
		_, ok = o.Default.(int)
	case Bool:
		_, ok = o.Default.(bool)
	case Flag:
		b, isBool := o.Default.(bool)
		if isBool && b {
			return fmt.Errorf("flag options cannot default to true")
		}
		ok = isBool
	}
	if !ok {
		return fmt.Errorf("default %v (%T) does not match type %s", o.Default, o.Default, o.Type)
	}
	return nil
}

func (s CommandSpec) clone() *CommandSpec {
	c := s
	c.Args = append([]ArgSpec(nil), s.Args...)
	c.Options = append([]OptionSpec(nil), s.Options...)
	return &c
}

// ValidName reports whether name can be used as a command name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}
