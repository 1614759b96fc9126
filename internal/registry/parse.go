package registry

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// optionValue is the pflag.Value behind every declared option. It converts
// the raw text according to the option type and keeps the categorized error
// so the dispatcher can report exactly which option was wrong.
type optionValue struct {
	command string
	spec    *OptionSpec
	value   any
	err     *Error
}

// flagPresent is the value pflag assigns to a presence-only option written
// without "=". Option text from the command line cannot contain a NUL byte.
const flagPresent = "\x00present"

func newOptionValue(command string, spec *OptionSpec) *optionValue {
	v := &optionValue{command: command, spec: spec, value: spec.Default}
	if v.value == nil {
		v.value = spec.Type.zero()
	}
	return v
}

func (v *optionValue) String() string { return fmt.Sprint(v.value) }

func (v *optionValue) Type() string { return v.spec.Type.String() }

func (v *optionValue) Set(raw string) error {
	switch v.spec.Type {
	case String:
		v.value = raw
	case Int:
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return v.fail("invalid value %q for option --%s of command %q — expected an integer", raw, v.spec.Name, v.command)
		}
		v.value = n
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return v.fail("invalid value %q for option --%s of command %q — expected true or false", raw, v.spec.Name, v.command)
		}
		v.value = b
	case Flag:
		if raw != flagPresent {
			return v.fail("option --%s of command %q does not take a value (got %q)", v.spec.Name, v.command, raw)
		}
		v.value = true
	}
	return nil
}

func (v *optionValue) fail(format string, args ...any) error {
	v.err = newError(KindInvalidOptionValue, v.command, v.spec.Name, format, args...)
	return v.err
}

// wantsHelp reports whether --help or -h appears before the "--" terminator.
// It is consulted only when pflag fails first, so a malformed command line
// that also asks for help still prints usage.
func wantsHelp(tokens []string) bool {
	for _, t := range tokens {
		if t == "--" {
			return false
		}
		if t == "--help" || t == "-h" {
			return true
		}
	}
	return false
}

// parseArgs resolves tokens against spec. help is true when the user asked
// for the command's usage instead of running it.
func parseArgs(prog string, spec *CommandSpec, tokens []string) (args ParsedArgs, help bool, perr *Error) {
	if spec.PassThrough {
		return ParsedArgs{
			values:     map[string]any{},
			given:      map[string]bool{},
			positional: append([]string(nil), tokens...),
		}, false, nil
	}

	fs := pflag.NewFlagSet(spec.Name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	values := make([]*optionValue, len(spec.Options))
	for i := range spec.Options {
		o := &spec.Options[i]
		v := newOptionValue(spec.Name, o)
		values[i] = v
		f := fs.VarPF(v, o.Name, o.Shorthand, o.Summary)
		switch o.Type {
		case Bool:
			f.NoOptDefVal = "true"
		case Flag:
			f.NoOptDefVal = flagPresent
		}
	}

	if err := fs.Parse(tokens); err != nil {
		if errors.Is(err, pflag.ErrHelp) || wantsHelp(tokens) {
			return ParsedArgs{}, true, nil
		}
		for _, v := range values {
			if v.err != nil {
				return ParsedArgs{}, false, v.err
			}
		}
		return ParsedArgs{}, false, classifyFlagError(prog, spec.Name, err)
	}

	args = ParsedArgs{
		values:     make(map[string]any, len(values)),
		given:      make(map[string]bool, len(values)),
		positional: fs.Args(),
	}
	for _, v := range values {
		name := v.spec.Name
		args.values[name] = v.value
		if fs.Changed(name) {
			args.given[name] = true
		} else if v.spec.Required {
			return ParsedArgs{}, false, newError(KindMissingRequiredOption, spec.Name, name,
				"command %q requires option --%s — run '%s help %s' for usage", spec.Name, name, prog, spec.Name)
		}
	}

	for i, a := range spec.Args {
		if i >= len(args.positional) && a.Required {
			return ParsedArgs{}, false, newError(KindMissingRequiredOption, spec.Name, a.Name,
				"command %q requires argument <%s> — run '%s help %s' for usage", spec.Name, a.Name, prog, spec.Name)
		}
	}
	if len(args.positional) > len(spec.Args) {
		extra := args.positional[len(spec.Args)]
		return ParsedArgs{}, false, newError(KindUnrecognizedOption, spec.Name, "",
			"unexpected argument %q for command %q — run '%s help %s' for usage", extra, spec.Name, prog, spec.Name)
	}

	return args, false, nil
}

// classifyFlagError sorts the remaining pflag failures. Undeclared flags are
// unrecognized; everything else (a missing value, bad syntax) is an invalid
// value.
func classifyFlagError(prog, command string, err error) *Error {
	msg := err.Error()
	if strings.HasPrefix(msg, "unknown flag") || strings.HasPrefix(msg, "unknown shorthand flag") {
		return newError(KindUnrecognizedOption, command, "",
			"unrecognized option for command %q (%s) — run '%s help %s' for usage", command, msg, prog, command)
	}
	return newError(KindInvalidOptionValue, command, "",
		"invalid option for command %q (%s) — run '%s help %s' for usage", command, msg, prog, command)
}
