// Package completion provides shell completion generation. The scripts are
// generated by cobra from a command tree mirrored from the registry, and
// cobra also answers the scripts' runtime __complete requests.
package completion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/klytics/xlkit/internal/registry"
)

// Shells lists the supported shells.
var Shells = []string{"bash", "zsh", "fish", "powershell"}

// IsRequest reports whether argv is a completion callback from a generated
// script rather than a user command.
func IsRequest(argv []string) bool {
	return len(argv) > 0 && strings.HasPrefix(argv[0], cobra.ShellCompRequestCmd)
}

// Tree mirrors the registry as a cobra command tree. The commands do
// nothing when run; the tree only describes names, flags and summaries.
func Tree(reg *registry.Registry, program string) *cobra.Command {
	root := &cobra.Command{
		Use:           program,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	for _, spec := range reg.Commands() {
		if spec.Name == "help" {
			// cobra supplies its own help command, which completes command names.
			continue
		}
		root.AddCommand(mirror(spec))
	}
	return root
}

func mirror(spec registry.CommandSpec) *cobra.Command {
	c := &cobra.Command{
		Use:                spec.Name,
		Short:              spec.Summary,
		DisableFlagParsing: spec.PassThrough,
		Run:                func(*cobra.Command, []string) {},
	}
	if spec.Name == "completion" {
		c.ValidArgs = Shells
	}

	flags := c.Flags()
	for _, o := range spec.Options {
		switch o.Type {
		case registry.String:
			def, _ := o.Default.(string)
			flags.StringP(o.Name, o.Shorthand, def, o.Summary)
		case registry.Int:
			def, _ := o.Default.(int)
			flags.IntP(o.Name, o.Shorthand, def, o.Summary)
		case registry.Bool, registry.Flag:
			def, _ := o.Default.(bool)
			flags.BoolP(o.Name, o.Shorthand, def, o.Summary)
		}
	}
	return c
}

// Generate writes the completion script for shell.
func Generate(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unsupported shell: %s (supported: %s)", shell, strings.Join(Shells, ", "))
}

// Complete answers a __complete request from a generated script.
func Complete(ctx context.Context, reg *registry.Registry, program string, argv []string, stdout, stderr io.Writer) error {
	root := Tree(reg, program)
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// Spec returns the completion command. The tree is built when the command
// runs so plugins registered at startup are included.
func Spec(reg *registry.Registry, program string) registry.CommandSpec {
	return registry.CommandSpec{
		Name:    "completion",
		Summary: "Generate shell completion scripts",
		Description: fmt.Sprintf(`Generate shell completion scripts for %[1]s.

Install instructions:
  Bash:       %[1]s completion bash > /etc/bash_completion.d/%[1]s
              echo 'source <(%[1]s completion bash)' >> ~/.bashrc
  Zsh:        %[1]s completion zsh > ~/.zsh/completions/_%[1]s
  Fish:       %[1]s completion fish > ~/.config/fish/completions/%[1]s.fish
  PowerShell: %[1]s completion powershell >> $PROFILE`, program),
		Args: []registry.ArgSpec{
			{Name: "shell", Summary: "bash, zsh, fish or powershell", Required: true},
		},
		Handler: func(_ context.Context, inv *registry.Invocation) registry.Result {
			var buf bytes.Buffer
			if err := Generate(Tree(reg, program), inv.Args.Arg(0), &buf); err != nil {
				return registry.FromError(err)
			}
			return registry.Success(buf.String())
		},
	}
}
