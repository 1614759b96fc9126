package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// HelpSpec returns the built-in "help [command]" command bound to d.
func (d *Dispatcher) HelpSpec() CommandSpec {
	return CommandSpec{
		Name:    "help",
		Summary: "List available commands or show help for one command",
		Args: []ArgSpec{
			{Name: "command", Summary: "Command to describe"},
		},
		Handler: func(_ context.Context, inv *Invocation) Result {
			name := inv.Args.Arg(0)
			if name == "" {
				var buf bytes.Buffer
				d.WriteHelp(&buf)
				return Success(buf.String())
			}
			spec, ok := d.Registry.lookup(name)
			if !ok {
				return failureFrom(newError(KindUnknownCommand, name, "",
					"unknown command %q — run '%s help' to list available commands", name, d.Program))
			}
			var buf bytes.Buffer
			d.WriteCommandHelp(&buf, spec)
			return Success(buf.String())
		},
	}
}

func (d *Dispatcher) writeHelp() Result {
	var buf bytes.Buffer
	d.WriteHelp(&buf)
	return Success(buf.String())
}

func (d *Dispatcher) writeCommandHelp(spec *CommandSpec) Result {
	var buf bytes.Buffer
	d.WriteCommandHelp(&buf, spec)
	return Success(buf.String())
}

// WriteHelp renders the top-level help: usage line, global options and
// every registered command with its summary.
func (d *Dispatcher) WriteHelp(w io.Writer) {
	heading := color.New(color.Bold)

	if d.Title != "" {
		fmt.Fprintln(w, d.Title)
		fmt.Fprintln(w)
	}

	heading.Fprintln(w, "Usage:")
	if len(d.Globals) > 0 {
		fmt.Fprintf(w, "  %s [global options] <command> [options]\n\n", d.Program)
	} else {
		fmt.Fprintf(w, "  %s <command> [options]\n\n", d.Program)
	}

	heading.Fprintln(w, "Commands:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, s := range d.Registry.Commands() {
		fmt.Fprintf(tw, "  %s\t%s\n", s.Name, s.Summary)
	}
	tw.Flush()

	if len(d.Globals) > 0 {
		fmt.Fprintln(w)
		heading.Fprintln(w, "Global Options:")
		writeOptions(w, d.Globals)
	}

	fmt.Fprintf(w, "\nRun '%s help <command>' for details on a command.\n", d.Program)
}

// WriteCommandHelp renders usage, arguments and options of one command.
func (d *Dispatcher) WriteCommandHelp(w io.Writer, spec *CommandSpec) {
	heading := color.New(color.Bold)

	heading.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s\n\n", usageLine(d.Program, spec))

	about := spec.Description
	if about == "" {
		about = spec.Summary
	}
	if about != "" {
		fmt.Fprintln(w, strings.TrimRight(about, "\n"))
	}

	if len(spec.Args) > 0 {
		fmt.Fprintln(w)
		heading.Fprintln(w, "Arguments:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, a := range spec.Args {
			req := ""
			if a.Required {
				req = " (required)"
			}
			fmt.Fprintf(tw, "  <%s>\t%s%s\n", a.Name, a.Summary, req)
		}
		tw.Flush()
	}

	if len(spec.Options) > 0 {
		fmt.Fprintln(w)
		heading.Fprintln(w, "Options:")
		writeOptions(w, spec.Options)
	}
}

func usageLine(program string, spec *CommandSpec) string {
	parts := []string{program, spec.Name}
	for _, a := range spec.Args {
		if a.Required {
			parts = append(parts, "<"+a.Name+">")
		} else {
			parts = append(parts, "[<"+a.Name+">]")
		}
	}
	if spec.PassThrough {
		parts = append(parts, "[args...]")
	} else if len(spec.Options) > 0 {
		parts = append(parts, "[options]")
	}
	return strings.Join(parts, " ")
}

func writeOptions(w io.Writer, opts []OptionSpec) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, o := range opts {
		flag := "    --" + o.Name
		if o.Shorthand != "" {
			flag = "-" + o.Shorthand + ", --" + o.Name
		}
		if o.Type.takesValue() {
			flag += " " + o.Type.String()
		}

		desc := o.Summary
		switch {
		case o.Required:
			desc += " (required)"
		case o.Default != nil && o.Default != o.Type.zero():
			desc += fmt.Sprintf(" (default %v)", o.Default)
		}
		fmt.Fprintf(tw, "  %s\t%s\n", flag, desc)
	}
	tw.Flush()
}
