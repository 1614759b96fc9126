// Package audit records every dispatched command to a local JSONL log.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/klytics/xlkit/internal/registry"
)

// Entry is a single audit log line.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Machine    string    `json:"machine"`
	Command    string    `json:"command"`
	Args       []string  `json:"args"`
	Kind       string    `json:"kind,omitempty"`
	ExitCode   int       `json:"exit_code"`
	DurationMs int64     `json:"duration_ms"`
}

// Logger appends entries to a file. A disabled logger does nothing.
type Logger struct {
	FilePath string
	Enabled  bool
	Log      logrus.FieldLogger
}

// NewLogger creates a Logger writing to filePath.
func NewLogger(filePath string, enabled bool, log logrus.FieldLogger) *Logger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logger{FilePath: filePath, Enabled: enabled, Log: log}
}

// Write appends one entry. Failures are returned but callers treat the
// audit log as best-effort and never fail a command because of it.
func (l *Logger) Write(entry Entry) error {
	if !l.Enabled || l.FilePath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.FilePath), 0o755); err != nil {
		return fmt.Errorf("could not create audit directory: %w", err)
	}

	f, err := os.OpenFile(l.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("could not open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// Observe converts a dispatch record into an entry and writes it. It has
// the registry.Observer signature.
func (l *Logger) Observe(rec registry.Record) {
	if !l.Enabled {
		return
	}
	host, _ := os.Hostname()
	entry := Entry{
		Timestamp:  time.Now().UTC(),
		Machine:    host,
		Command:    rec.Command,
		ExitCode:   rec.ExitCode,
		DurationMs: rec.Duration.Milliseconds(),
	}
	if len(rec.Args) > 1 {
		entry.Args = Redact(rec.Args[1:])
	}
	if rec.Kind != registry.KindNone {
		entry.Kind = rec.Kind.String()
	}
	if err := l.Write(entry); err != nil {
		l.Log.WithError(err).Debug("could not write audit entry")
	}
}

// ReadEntries reads all audit entries from the log file, skipping
// malformed lines.
func ReadEntries(filePath string) ([]Entry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// sensitiveFlags are flags whose value must not reach the log.
var sensitiveFlags = map[string]bool{
	"--password": true, "-p": true, "--token": true, "--secret": true,
}

// sensitiveShorthands are single-letter aliases of sensitive flags. They may
// be grouped with other shorthands (-cp x) or carry their value attached (-px).
const sensitiveShorthands = "p"

// Redact replaces the values of sensitive flags with a placeholder.
func Redact(args []string) []string {
	result := make([]string, len(args))
	redactNext := false
	for i, arg := range args {
		switch {
		case redactNext:
			result[i] = "[REDACTED]"
			redactNext = false
		case sensitiveFlags[arg]:
			result[i] = arg
			redactNext = true
		case strings.HasPrefix(arg, "--"):
			result[i] = arg
			if name, _, ok := strings.Cut(arg, "="); ok && sensitiveFlags[name] {
				result[i] = name + "=[REDACTED]"
			}
		case len(arg) > 1 && arg[0] == '-':
			result[i] = arg
			if at := strings.IndexAny(arg[1:], sensitiveShorthands); at >= 0 {
				end := at + 2
				if end == len(arg) {
					redactNext = true
				} else {
					result[i] = arg[:end] + "[REDACTED]"
				}
			}
		default:
			result[i] = arg
		}
	}
	return result
}
