// Package cmd assembles the xlkit binary: global options, configuration,
// logging, the command registry and the dispatcher.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	cmdaudit "github.com/klytics/xlkit/cmd/audit"
	"github.com/klytics/xlkit/cmd/completion"
	"github.com/klytics/xlkit/cmd/excel"
	"github.com/klytics/xlkit/cmd/info"
	"github.com/klytics/xlkit/cmd/version"
	"github.com/klytics/xlkit/internal/audit"
	"github.com/klytics/xlkit/internal/config"
	"github.com/klytics/xlkit/internal/output"
	"github.com/klytics/xlkit/internal/plugin"
	"github.com/klytics/xlkit/internal/registry"
)

// Program is the binary name used in usage lines.
const Program = "xlkit"

// Globals are accepted before the command name.
var Globals = []registry.OptionSpec{
	{Name: "json", Summary: "Output results as machine-readable JSON", Type: registry.Flag},
	{Name: "verbose", Summary: "Enable debug logging", Type: registry.Flag},
	{Name: "no-color", Summary: "Disable ANSI color output", Type: registry.Flag},
}

// shutdownSignals cancel the running command's context.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

type globalFlags struct {
	json    bool
	verbose bool
	noColor bool
}

// Execute runs the toolkit with the process arguments and returns the exit
// code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()
	return Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run executes one invocation of the toolkit.
func Run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if completion.IsRequest(argv) {
		cfg, err := config.Load()
		if err != nil {
			cfg = nil
		}
		d, err := build(cfg, globalFlags{}, stdin, stdout, stderr)
		if err != nil {
			return fail(stderr, err)
		}
		if err := completion.Complete(ctx, d.Registry, Program, argv, stdout, stderr); err != nil {
			return fail(stderr, err)
		}
		return registry.ExitOK
	}

	g, rest, err := parseGlobals(argv)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v — run '%s help' for usage\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err, Program)
		return registry.ExitUsageError
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(stderr, err)
	}

	d, err := build(cfg, g, stdin, stdout, stderr)
	if err != nil {
		return fail(stderr, err)
	}
	return d.Run(ctx, rest)
}

// parseGlobals consumes the global options up to the first non-option
// token. --help and -h are left for the dispatcher.
func parseGlobals(argv []string) (globalFlags, []string, error) {
	var g globalFlags
	fs := pflag.NewFlagSet(Program, pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.BoolVar(&g.json, "json", false, "")
	fs.BoolVar(&g.verbose, "verbose", false, "")
	fs.BoolVar(&g.noColor, "no-color", false, "")

	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return g, []string{"--help"}, nil
		}
		return g, nil, err
	}
	return g, fs.Args(), nil
}

// build wires the registry and dispatcher. A nil cfg uses the defaults for
// everything except plugin discovery, which is skipped.
func build(cfg *config.Config, g globalFlags, stdin io.Reader, stdout, stderr io.Writer) (*registry.Dispatcher, error) {
	logger := newLogger(cfg, g, stderr)
	if cfg != nil {
		for _, issue := range cfg.Validate() {
			entry := logger.WithField("key", issue.Key)
			if issue.Severity == "error" {
				return nil, fmt.Errorf("invalid config %s: %s", config.ConfigPath(), issue.Message)
			}
			entry.Warn(issue.Message)
		}
		if !cfg.Output.Color {
			color.NoColor = true
		}
	}
	if g.noColor {
		color.NoColor = true
	}

	auditPath := filepath.Join(config.Dir(), "audit.jsonl")
	if cfg != nil && cfg.Audit.Path != "" {
		auditPath = cfg.Audit.Path
	}

	ver := version.Resolve()
	reg := registry.New()
	d := registry.NewDispatcher(reg, Program)
	d.Title = info.Name + " - " + info.Description
	d.Globals = Globals
	d.Stdin = stdin
	d.Stdout = stdout
	d.Stderr = stderr
	d.Logger = logger

	specs := []registry.CommandSpec{
		info.Spec(),
		version.Spec(),
		d.HelpSpec(),
		completion.Spec(reg, Program),
		cmdaudit.Spec(auditPath),
	}
	specs = append(specs, excel.Specs()...)
	if err := reg.RegisterAll(specs...); err != nil {
		return nil, err
	}

	if cfg != nil {
		if err := registerPlugins(reg, cfg, g, ver, logger); err != nil {
			return nil, err
		}
	}
	reg.Freeze()

	if g.json || (cfg != nil && cfg.Output.Format == "json") {
		d.Reporter = output.JSONReporter{Version: ver}
	}
	if cfg != nil && cfg.Audit.Enabled && cfg.Audit.Path != "" {
		d.Observer = audit.NewLogger(auditPath, true, logger).Observe
	}
	return d, nil
}

func registerPlugins(reg *registry.Registry, cfg *config.Config, g globalFlags, ver string, logger logrus.FieldLogger) error {
	plugins, err := plugin.Discover(cfg.Plugins.Dir)
	if err != nil {
		logger.WithError(err).WithField("dir", cfg.Plugins.Dir).Warn("could not scan plugin directory")
		return nil
	}
	env := plugin.Env{
		Version:    ver,
		ConfigPath: config.ConfigPath(),
		JSON:       g.json,
		Verbose:    g.verbose,
	}
	for _, p := range plugins {
		if err := reg.Register(p.Spec(env)); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Path, err)
		}
		logger.WithFields(logrus.Fields{"plugin": p.Name, "path": p.Path}).Debug("registered plugin")
	}
	return nil
}

func newLogger(cfg *config.Config, g globalFlags, stderr io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level := logrus.WarnLevel
	if cfg != nil {
		if l, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
			level = l
		}
	}
	if g.verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
	return registry.ExitFailure
}
