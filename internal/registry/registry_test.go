package registry

import (
	"context"
	"errors"
	"testing"
)

func noop(_ context.Context, _ *Invocation) Result { return Success("") }

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	if err := r.Register(CommandSpec{Name: "sheets", Summary: "List sheets", Handler: noop}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	spec, ok := r.Lookup("sheets")
	if !ok {
		t.Fatal("expected sheets to be registered")
	}
	if spec.Summary != "List sheets" {
		t.Errorf("summary = %q", spec.Summary)
	}

	if _, ok := r.Lookup("missing"); ok {
		t.Error("expected lookup of missing command to fail")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	first := CommandSpec{Name: "info", Summary: "first", Handler: noop}
	if err := r.Register(first); err != nil {
		t.Fatal(err)
	}

	err := r.Register(CommandSpec{Name: "info", Summary: "second", Handler: noop})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if !errors.Is(err, ErrDuplicateCommand) {
		t.Errorf("expected ErrDuplicateCommand, got %v", err)
	}
	if KindOf(err) != KindDuplicateCommand {
		t.Errorf("kind = %s", KindOf(err))
	}

	// Prior state is untouched.
	if r.Len() != 1 {
		t.Errorf("expected 1 command, got %d", r.Len())
	}
	spec, _ := r.Lookup("info")
	if spec.Summary != "first" {
		t.Errorf("registry was modified: summary = %q", spec.Summary)
	}
}

func TestRegisterInvalidSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec CommandSpec
	}{
		{"empty name", CommandSpec{Handler: noop}},
		{"uppercase name", CommandSpec{Name: "Head", Handler: noop}},
		{"no handler", CommandSpec{Name: "head"}},
		{"duplicate option", CommandSpec{Name: "head", Handler: noop, Options: []OptionSpec{
			{Name: "rows", Type: Int}, {Name: "rows", Type: String},
		}}},
		{"duplicate shorthand", CommandSpec{Name: "head", Handler: noop, Options: []OptionSpec{
			{Name: "rows", Shorthand: "n", Type: Int}, {Name: "name", Shorthand: "n", Type: String},
		}}},
		{"help shorthand", CommandSpec{Name: "head", Handler: noop, Options: []OptionSpec{
			{Name: "header", Shorthand: "h", Type: Bool},
		}}},
		{"reserved help option", CommandSpec{Name: "head", Handler: noop, Options: []OptionSpec{
			{Name: "help", Type: Flag},
		}}},
		{"default type mismatch", CommandSpec{Name: "head", Handler: noop, Options: []OptionSpec{
			{Name: "rows", Type: Int, Default: "10"},
		}}},
		{"required with default", CommandSpec{Name: "head", Handler: noop, Options: []OptionSpec{
			{Name: "sheet", Type: String, Required: true, Default: "Sheet1"},
		}}},
		{"flag defaulting to true", CommandSpec{Name: "head", Handler: noop, Options: []OptionSpec{
			{Name: "all", Type: Flag, Default: true},
		}}},
		{"required after optional arg", CommandSpec{Name: "head", Handler: noop, Args: []ArgSpec{
			{Name: "a"}, {Name: "b", Required: true},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			err := r.Register(tt.spec)
			if err == nil {
				t.Fatal("expected registration to fail")
			}
			if KindOf(err) != KindInternal {
				t.Errorf("kind = %s, want InternalError", KindOf(err))
			}
			if r.Len() != 0 {
				t.Error("invalid spec was partially registered")
			}
		})
	}
}

func TestRegisterAfterFreeze(t *testing.T) {
	r := New()
	r.Freeze()
	if !r.Frozen() {
		t.Fatal("expected registry to be frozen")
	}
	if err := r.Register(CommandSpec{Name: "late", Handler: noop}); err == nil {
		t.Error("expected registration on a frozen registry to fail")
	}
}

func TestCommandsListedOnceWithSummary(t *testing.T) {
	r := New()
	if err := r.RegisterAll(
		CommandSpec{Name: "version", Summary: "Show version information", Handler: noop},
		CommandSpec{Name: "head", Summary: "Print the first rows of a sheet", Handler: noop},
		CommandSpec{Name: "info", Summary: "Show toolkit information", Handler: noop},
	); err != nil {
		t.Fatal(err)
	}

	cmds := r.Commands()
	if len(cmds) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(cmds))
	}
	want := []string{"head", "info", "version"}
	for i, c := range cmds {
		if c.Name != want[i] {
			t.Errorf("commands[%d] = %q, want %q", i, c.Name, want[i])
		}
	}

	seen := 0
	for _, c := range cmds {
		if c.Name == "head" {
			seen++
			if c.Summary != "Print the first rows of a sheet" {
				t.Errorf("head summary = %q", c.Summary)
			}
		}
	}
	if seen != 1 {
		t.Errorf("head listed %d times", seen)
	}
}

func TestRegisteredSpecIsCopied(t *testing.T) {
	opts := []OptionSpec{{Name: "rows", Type: Int, Default: 10}}
	r := New()
	if err := r.Register(CommandSpec{Name: "head", Options: opts, Handler: noop}); err != nil {
		t.Fatal(err)
	}
	opts[0].Name = "changed"

	spec, _ := r.Lookup("head")
	if spec.Options[0].Name != "rows" {
		t.Errorf("registered spec shares caller's slice: %q", spec.Options[0].Name)
	}

	spec.Options[0].Name = "mutated"
	again, _ := r.Lookup("head")
	if again.Options[0].Name != "rows" {
		t.Errorf("Lookup returned shared state: %q", again.Options[0].Name)
	}
}
