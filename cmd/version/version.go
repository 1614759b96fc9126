// Package version resolves the toolkit version and provides the version command.
package version

import (
	"context"
	"runtime/debug"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/klytics/xlkit/cmd/info"
	"github.com/klytics/xlkit/internal/registry"
)

// Version is set at build time via ldflags:
//
//	go build -ldflags "-X github.com/klytics/xlkit/cmd/version.Version=1.2.0"
var Version = ""

// Fallback is reported when neither ldflags nor build info carry a version.
const Fallback = "0.1.0-dev"

// Resolve returns the toolkit version: the ldflags value, else the main
// module version from build info, else Fallback. It never fails.
func Resolve() string {
	return resolve(Version, buildInfoVersion)
}

func resolve(ldflags string, buildInfo func() string) string {
	if v, ok := normalize(ldflags); ok {
		return v
	}
	if v, ok := normalize(buildInfo()); ok {
		return v
	}
	return Fallback
}

// normalize canonicalizes semantic versions, tolerating a leading "v".
// Any other non-empty value is kept as given.
func normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "(devel)" {
		return "", false
	}
	v, err := semver.NewVersion(strings.TrimPrefix(s, "v"))
	if err != nil {
		return s, true
	}
	return v.String(), true
}

func buildInfoVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return bi.Main.Version
}

// Spec returns the version command.
func Spec() registry.CommandSpec {
	return registry.CommandSpec{
		Name:    "version",
		Summary: "Show version information",
		Options: []registry.OptionSpec{
			{Name: "short", Summary: "Print only the version number", Type: registry.Flag},
		},
		Handler: func(_ context.Context, inv *registry.Invocation) registry.Result {
			v := Resolve()
			if inv.Args.Bool("short") {
				return registry.Success(v)
			}
			return registry.Successf("%s v%s", info.Name, v)
		},
	}
}
