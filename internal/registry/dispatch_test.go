package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestDispatcher(t *testing.T, specs ...CommandSpec) (*Dispatcher, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	reg := New()
	if err := reg.RegisterAll(specs...); err != nil {
		t.Fatalf("register: %v", err)
	}

	var stdout, stderr bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	d := NewDispatcher(reg, "xlkit")
	d.Title = "Excel CLI Toolkit"
	d.Stdout = &stdout
	d.Stderr = &stderr
	d.Logger = logger
	if err := reg.Register(d.HelpSpec()); err != nil {
		t.Fatalf("register help: %v", err)
	}
	reg.Freeze()
	return d, &stdout, &stderr
}

func TestDispatchRoutesToMatchingHandler(t *testing.T) {
	var called []string
	mk := func(name string) CommandSpec {
		return CommandSpec{
			Name:    name,
			Summary: name + " command",
			Handler: func(_ context.Context, inv *Invocation) Result {
				called = append(called, inv.Command)
				return Success(name + " ran")
			},
		}
	}
	names := []string{"alpha", "beta", "gamma", "beta-two"}
	specs := make([]CommandSpec, len(names))
	for i, n := range names {
		specs[i] = mk(n)
	}
	d, _, _ := newTestDispatcher(t, specs...)

	for _, n := range names {
		called = nil
		res := d.Dispatch(context.Background(), []string{n})
		if !res.OK() {
			t.Fatalf("%s: %s", n, res.Message)
		}
		if len(called) != 1 || called[0] != n {
			t.Errorf("dispatch %q invoked %v", n, called)
		}
		if res.Message != n+" ran" {
			t.Errorf("dispatch %q returned %q", n, res.Message)
		}
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	invoked := false
	d, stdout, stderr := newTestDispatcher(t, CommandSpec{
		Name:    "info",
		Handler: func(context.Context, *Invocation) Result { invoked = true; return Success("") },
	})

	code := d.Run(context.Background(), []string{"unknowncmd"})
	if code != ExitUsageError {
		t.Errorf("exit code = %d, want %d", code, ExitUsageError)
	}
	if invoked {
		t.Error("no handler should run for an unknown command")
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), `unknown command "unknowncmd"`) {
		t.Errorf("stderr = %q", stderr.String())
	}

	res := d.Dispatch(context.Background(), []string{"unknowncmd"})
	if res.Kind != KindUnknownCommand {
		t.Errorf("kind = %s", res.Kind)
	}
}

func TestRunResultTranslation(t *testing.T) {
	d, stdout, stderr := newTestDispatcher(t,
		CommandSpec{Name: "ok", Handler: func(context.Context, *Invocation) Result { return Success("done") }},
		CommandSpec{Name: "silent", Handler: func(context.Context, *Invocation) Result { return Success("") }},
		CommandSpec{Name: "fail", Handler: func(context.Context, *Invocation) Result { return Failuref("sheet %q is empty", "Q1") }},
		CommandSpec{Name: "errs", Handler: func(context.Context, *Invocation) Result { return FromError(fmt.Errorf("could not open: %w", io.ErrUnexpectedEOF)) }},
	)

	tests := []struct {
		argv       string
		code       int
		wantStdout string
		wantStderr string
	}{
		{"ok", 0, "done\n", ""},
		{"silent", 0, "", ""},
		{"fail", 1, "", `sheet "Q1" is empty`},
		{"errs", 1, "", "could not open: unexpected EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.argv, func(t *testing.T) {
			stdout.Reset()
			stderr.Reset()
			code := d.Run(context.Background(), []string{tt.argv})
			if code != tt.code {
				t.Errorf("exit code = %d, want %d", code, tt.code)
			}
			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr == "" && stderr.Len() != 0 {
				t.Errorf("stderr = %q, want empty", stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

func TestDispatchRecoversFromPanic(t *testing.T) {
	d, _, stderr := newTestDispatcher(t, CommandSpec{
		Name: "info",
		Handler: func(context.Context, *Invocation) Result {
			var m map[string]int
			m["boom"]++
			return Success("unreachable")
		},
	})

	res := d.Dispatch(context.Background(), []string{"info"})
	if res.Kind != KindInternal {
		t.Fatalf("kind = %s, want InternalError", res.Kind)
	}
	if res.ExitCode() != ExitFailure {
		t.Errorf("exit code = %d", res.ExitCode())
	}
	if !strings.Contains(res.Message, `command "info"`) {
		t.Errorf("message = %q", res.Message)
	}

	if code := d.Run(context.Background(), []string{"info"}); code != ExitFailure {
		t.Errorf("Run exit code = %d", code)
	}
	if !strings.Contains(stderr.String(), "internal error") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestDispatchParseErrorSkipsHandler(t *testing.T) {
	invoked := false
	d, _, _ := newTestDispatcher(t, CommandSpec{
		Name:    "head",
		Options: []OptionSpec{{Name: "rows", Type: Int}},
		Handler: func(context.Context, *Invocation) Result { invoked = true; return Success("") },
	})

	for _, argv := range [][]string{
		{"head", "--rows", "x"},
		{"head", "--bogus"},
		{"head", "surplus"},
	} {
		res := d.Dispatch(context.Background(), argv)
		if res.OK() || res.ExitCode() != ExitUsageError {
			t.Errorf("%v: result = %+v", argv, res)
		}
	}
	if invoked {
		t.Error("handler ran despite a parse error")
	}
}

func TestDispatchPassesArgsAndStreams(t *testing.T) {
	var got ParsedArgs
	d, stdout, _ := newTestDispatcher(t, CommandSpec{
		Name:    "head",
		Args:    []ArgSpec{{Name: "file", Required: true}},
		Options: []OptionSpec{{Name: "rows", Shorthand: "n", Type: Int, Default: 10}},
		Handler: func(_ context.Context, inv *Invocation) Result {
			got = inv.Args
			fmt.Fprintln(inv.Stdout, "a,b")
			return Success("")
		},
	})

	code := d.Run(context.Background(), []string{"head", "-n", "2", "book.xlsx"})
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}
	if got.Int("rows") != 2 || got.Arg(0) != "book.xlsx" {
		t.Errorf("args = rows %d file %q", got.Int("rows"), got.Arg(0))
	}
	if stdout.String() != "a,b\n" {
		t.Errorf("stdout = %q", stdout.String())
	}
}

func TestDispatchHandlerKeepsErrorKind(t *testing.T) {
	d, _, _ := newTestDispatcher(t, CommandSpec{
		Name: "strict",
		Handler: func(context.Context, *Invocation) Result {
			return FromError(&Error{Kind: KindInvalidOptionValue, Msg: "rows must be positive"})
		},
	})

	res := d.Dispatch(context.Background(), []string{"strict"})
	if res.Kind != KindInvalidOptionValue || res.ExitCode() != ExitUsageError {
		t.Errorf("result = %+v", res)
	}
}

func TestDispatchObserver(t *testing.T) {
	d, _, _ := newTestDispatcher(t, CommandSpec{
		Name:    "fail",
		Handler: func(context.Context, *Invocation) Result { return Failuref("nope") },
	})

	var records []Record
	d.Observer = func(r Record) { records = append(records, r) }

	d.Dispatch(context.Background(), []string{"fail", "x"})
	d.Dispatch(context.Background(), []string{"missing"})

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Command != "fail" || records[0].ExitCode != ExitUsageError {
		t.Errorf("record[0] = %+v", records[0])
	}
	if records[1].Kind != KindUnknownCommand {
		t.Errorf("record[1] = %+v", records[1])
	}
}

func TestFromError(t *testing.T) {
	if res := FromError(nil); !res.OK() {
		t.Error("nil error should be a success")
	}
	res := FromError(errors.New("bad"))
	if res.Kind != KindHandlerReported || res.Message != "bad" {
		t.Errorf("result = %+v", res)
	}
	if Failure(KindNone, "x").OK() {
		t.Error("a failure must never be OK")
	}
}

func TestErrorKindNames(t *testing.T) {
	if KindUnknownCommand.String() != "UnknownCommandError" {
		t.Errorf("name = %q", KindUnknownCommand.String())
	}
	if KindHandlerReported.ExitCode() != 1 || KindInternal.ExitCode() != 1 || KindDuplicateCommand.ExitCode() != 1 {
		t.Error("handler and internal kinds exit 1")
	}
	if KindUnrecognizedOption.ExitCode() != 2 || KindMissingRequiredOption.ExitCode() != 2 {
		t.Error("parse kinds exit 2")
	}
}
