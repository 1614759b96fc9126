// Package info provides the toolkit's identity and the info command.
package info

import (
	"context"

	"github.com/klytics/xlkit/internal/registry"
)

// Toolkit identity shown by version, info and the top-level help.
const (
	Name        = "Excel CLI Toolkit"
	Description = "Command-line toolkit for Excel data manipulation and analysis"
)

// Spec returns the info command.
func Spec() registry.CommandSpec {
	return registry.CommandSpec{
		Name:    "info",
		Summary: "Show toolkit information",
		Handler: func(context.Context, *registry.Invocation) registry.Result {
			return registry.Success(Name + "\n" + Description)
		},
	}
}
