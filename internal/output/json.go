// Package output formats command results for the console.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klytics/xlkit/internal/registry"
)

// JSONResult is the standard JSON output envelope for all commands.
type JSONResult struct {
	OK      bool   `json:"ok"`
	Command string `json:"command,omitempty"`
	Version string `json:"version"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Code    int    `json:"code"`
}

// JSONReporter writes every result, success or failure, as one JSONResult
// on stdout.
type JSONReporter struct {
	Version string
}

// Report implements registry.Reporter.
func (r JSONReporter) Report(res registry.Result, stdout, _ io.Writer) error {
	out := JSONResult{
		OK:      res.OK(),
		Command: res.Command,
		Version: r.Version,
		Code:    res.ExitCode(),
	}
	if res.OK() {
		out.Message = res.Message
	} else {
		out.Error = res.Message
		out.Kind = res.Kind.String()
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("could not encode JSON result: %w", err)
	}
	return nil
}
