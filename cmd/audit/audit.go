// Package audit provides the "xlkit audit" command for viewing the audit log.
package audit

import (
	"bytes"
	"context"
	"fmt"
	"text/tabwriter"

	auditpkg "github.com/klytics/xlkit/internal/audit"
	"github.com/klytics/xlkit/internal/registry"
)

// Spec returns the audit command reading the log at path.
func Spec(path string) registry.CommandSpec {
	return registry.CommandSpec{
		Name:        "audit",
		Summary:     "Show recent audit log entries",
		Description: "Shows the most recent entries of the audit log. Entries are only recorded while audit.enabled is set in the config.",
		Options: []registry.OptionSpec{
			{Name: "last", Summary: "Show last N entries", Type: registry.Int, Default: 20},
			{Name: "command", Summary: "Filter by command name", Type: registry.String},
		},
		Handler: func(_ context.Context, inv *registry.Invocation) registry.Result {
			last := inv.Args.Int("last")
			if last <= 0 {
				return registry.Failuref("--last must be a positive number, got %d", last)
			}
			entries, err := auditpkg.ReadEntries(path)
			if err != nil {
				return registry.FromError(fmt.Errorf("could not read audit log %s: %w", path, err))
			}

			if name := inv.Args.String("command"); name != "" {
				filtered := entries[:0]
				for _, e := range entries {
					if e.Command == name {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}
			if len(entries) > last {
				entries = entries[len(entries)-last:]
			}
			if len(entries) == 0 {
				return registry.Success("No audit log entries found.")
			}

			var buf bytes.Buffer
			fmt.Fprintf(&buf, "Audit Log — %d Entries\nFile: %s\n\n", len(entries), path)
			tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "TIMESTAMP\tCOMMAND\tDURATION\tEXIT\n")
			for _, e := range entries {
				dur := fmt.Sprintf("%dms", e.DurationMs)
				if e.DurationMs >= 1000 {
					dur = fmt.Sprintf("%.1fs", float64(e.DurationMs)/1000)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Command, dur, e.ExitCode)
			}
			tw.Flush()
			return registry.Success(buf.String())
		},
	}
}
