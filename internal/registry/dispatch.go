package registry

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Record describes one completed dispatch.
type Record struct {
	Command  string
	Args     []string
	Kind     ErrorKind
	ExitCode int
	Duration time.Duration
}

// Observer is notified after every dispatch.
type Observer func(Record)

// Reporter writes a result to the console.
type Reporter interface {
	Report(res Result, stdout, stderr io.Writer) error
}

// TextReporter prints success messages to stdout and failures to stderr.
type TextReporter struct{}

// Report implements Reporter.
func (TextReporter) Report(res Result, stdout, stderr io.Writer) error {
	if res.OK() {
		if res.Message == "" {
			return nil
		}
		_, err := fmt.Fprintln(stdout, strings.TrimRight(res.Message, "\n"))
		return err
	}
	_, err := fmt.Fprintf(stderr, "%s %s\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), res.Message)
	return err
}

// Dispatcher resolves invocations against a registry and runs handlers.
type Dispatcher struct {
	Registry *Registry
	Program  string // binary name used in usage text
	Title    string // first line of the top-level help

	// Globals are shown in the top-level help. They are parsed by the
	// caller before Dispatch sees argv.
	Globals []OptionSpec

	Stdin    io.Reader
	Stdout   io.Writer
	Stderr   io.Writer
	Logger   logrus.FieldLogger
	Reporter Reporter
	Observer Observer
}

// NewDispatcher returns a dispatcher wired to the process streams.
func NewDispatcher(reg *Registry, program string) *Dispatcher {
	return &Dispatcher{
		Registry: reg,
		Program:  program,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Logger:   logrus.StandardLogger(),
		Reporter: TextReporter{},
	}
}

// Run dispatches argv, reports the result and returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, argv []string) int {
	res := d.Dispatch(ctx, argv)
	if err := d.reporter().Report(res, d.Stdout, d.Stderr); err != nil {
		d.logger().WithError(err).Warn("could not write command output")
	}
	return res.ExitCode()
}

// Dispatch selects the command named by argv[0], parses the remaining
// tokens and invokes the handler. An empty argv prints the top-level help.
// Handler panics are recovered and reported as internal errors.
func (d *Dispatcher) Dispatch(ctx context.Context, argv []string) (res Result) {
	start := time.Now()
	name := ""
	if len(argv) > 0 {
		name = argv[0]
	}
	defer func() {
		if d.Observer == nil {
			return
		}
		d.Observer(Record{
			Command:  name,
			Args:     append([]string(nil), argv...),
			Kind:     res.Kind,
			ExitCode: res.ExitCode(),
			Duration: time.Since(start),
		})
	}()

	if name == "" || name == "--help" || name == "-h" {
		return d.writeHelp()
	}

	spec, ok := d.Registry.lookup(name)
	if !ok {
		d.logger().WithField("command", name).Debug("unknown command")
		return failureFrom(newError(KindUnknownCommand, name, "",
			"unknown command %q — run '%s help' to list available commands", name, d.Program))
	}

	args, help, perr := parseArgs(d.Program, spec, argv[1:])
	if perr != nil {
		d.logger().WithFields(logrus.Fields{
			"command": name,
			"kind":    perr.Kind.String(),
			"option":  perr.Option,
		}).Debug("argument parsing failed")
		return failureFrom(perr)
	}
	if help {
		return d.writeCommandHelp(spec)
	}

	d.logger().WithFields(logrus.Fields{
		"command": name,
		"args":    args.NArg(),
	}).Debug("dispatching command")

	res = d.invoke(ctx, spec, args)
	res.Command = name
	return res
}

func (d *Dispatcher) invoke(ctx context.Context, spec *CommandSpec, args ParsedArgs) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			d.logger().WithFields(logrus.Fields{
				"command": spec.Name,
				"panic":   fmt.Sprint(p),
				"stack":   string(debug.Stack()),
			}).Debug("handler panicked")
			res = Failure(KindInternal, fmt.Sprintf("internal error in command %q: %v", spec.Name, p))
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	inv := &Invocation{
		Command: spec.Name,
		Args:    args,
		Stdin:   d.stdin(),
		Stdout:  d.Stdout,
		Stderr:  d.Stderr,
	}
	return spec.Handler(ctx, inv)
}

func (d *Dispatcher) logger() logrus.FieldLogger {
	if d.Logger == nil {
		return logrus.StandardLogger()
	}
	return d.Logger
}

func (d *Dispatcher) reporter() Reporter {
	if d.Reporter == nil {
		return TextReporter{}
	}
	return d.Reporter
}

func (d *Dispatcher) stdin() io.Reader {
	if d.Stdin == nil {
		return strings.NewReader("")
	}
	return d.Stdin
}
