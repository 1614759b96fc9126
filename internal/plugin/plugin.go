// Package plugin discovers external commands and adapts them to the
// command registry. Plugins are executables named xlkit-<name> in the
// plugin directory, optionally in a <name>/ subdirectory next to a
// plugin.yaml manifest.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klytics/xlkit/internal/registry"
)

// Prefix is the executable name prefix that marks a plugin.
const Prefix = "xlkit-"

// Plugin represents a discovered plugin.
type Plugin struct {
	Name        string    `json:"name"`
	Version     string    `json:"version,omitempty"`
	Description string    `json:"description,omitempty"`
	Author      string    `json:"author,omitempty"`
	Path        string    `json:"path"`
	Type        string    `json:"type"` // "shell" | "binary" | "script"
	Manifest    *Manifest `json:"-"`
}

// Manifest is the metadata file for a plugin (plugin.yaml alongside executable).
type Manifest struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
	Author      string `yaml:"author" json:"author"`
}

// Env is the toolkit context exported to plugin processes.
type Env struct {
	Version    string
	ConfigPath string
	JSON       bool
	Verbose    bool
}

// Discover returns the plugins installed in dir, sorted by name. A missing
// directory yields no plugins. Executables whose names are not valid
// command names are skipped.
func Discover(dir string) ([]Plugin, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot read plugin directory %s: %w", dir, err)
	}

	var plugins []Plugin
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			sub := filepath.Join(dir, name, Prefix+name)
			if isExecutable(sub) && registry.ValidName(name) {
				plugins = append(plugins, pluginFromPath(sub, name))
			}
			continue
		}
		if !strings.HasPrefix(name, Prefix) {
			continue
		}
		full := filepath.Join(dir, name)
		pluginName := strings.TrimPrefix(name, Prefix)
		if runtime.GOOS == "windows" {
			pluginName = strings.TrimSuffix(pluginName, filepath.Ext(pluginName))
		}
		if isExecutable(full) && registry.ValidName(pluginName) {
			plugins = append(plugins, pluginFromPath(full, pluginName))
		}
	}

	sort.Slice(plugins, func(i, j int) bool { return plugins[i].Name < plugins[j].Name })
	return plugins, nil
}

// LoadManifest reads plugin.yaml from a directory.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "plugin.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("plugin.yaml not found in %s", dir)
		}
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid plugin.yaml: %w", err)
	}
	return &m, nil
}

// Spec returns a pass-through command that runs the plugin.
func (p Plugin) Spec(env Env) registry.CommandSpec {
	summary := p.Description
	if summary == "" {
		summary = fmt.Sprintf("Run the %s plugin", p.Name)
	}
	return registry.CommandSpec{
		Name:        p.Name,
		Summary:     summary,
		Description: fmt.Sprintf("%s\n\nPlugin executable: %s", summary, p.Path),
		PassThrough: true,
		Handler: func(ctx context.Context, inv *registry.Invocation) registry.Result {
			err := p.Run(ctx, inv.Args.Args(), inv.Stdin, inv.Stdout, inv.Stderr, env)
			var exitErr *exec.ExitError
			switch {
			case err == nil:
				return registry.Success("")
			case errors.As(err, &exitErr):
				return registry.Failuref("plugin %q exited with status %d", p.Name, exitErr.ExitCode())
			default:
				return registry.Failuref("could not run plugin %q: %v", p.Name, err)
			}
		},
	}
}

// Run executes the plugin with args, forwarding the given streams.
func (p Plugin) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, env Env) error {
	cmd := exec.CommandContext(ctx, p.Path, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(), env.vars()...)
	return cmd.Run()
}

func (e Env) vars() []string {
	return []string{
		"XLKIT_VERSION=" + e.Version,
		"XLKIT_CONFIG_PATH=" + e.ConfigPath,
		"XLKIT_JSON=" + boolEnv(e.JSON),
		"XLKIT_VERBOSE=" + boolEnv(e.Verbose),
	}
}

func pluginFromPath(path, name string) Plugin {
	p := Plugin{
		Name: name,
		Path: path,
		Type: detectType(path),
	}

	if m, err := LoadManifest(filepath.Dir(path)); err == nil {
		p.Manifest = m
		p.Version = m.Version
		p.Description = m.Description
		p.Author = m.Author
	}
	return p
}

func detectType(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return "script"
	}
	defer f.Close()

	head := make([]byte, 4)
	n, _ := io.ReadFull(f, head)
	head = head[:n]

	switch {
	case strings.HasPrefix(string(head), "#!"):
		return "shell"
	case n == 4 && head[0] == 0x7f && head[1] == 'E' && head[2] == 'L' && head[3] == 'F':
		return "binary"
	case n == 4 && head[0] == 0xcf && head[1] == 0xfa && head[2] == 0xed && head[3] == 0xfe:
		return "binary"
	case n >= 2 && head[0] == 'M' && head[1] == 'Z':
		return "binary"
	}
	return "script"
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		ext := strings.ToLower(filepath.Ext(path))
		return ext == ".exe" || ext == ".bat" || ext == ".cmd"
	}
	return info.Mode()&0o111 != 0
}

func boolEnv(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
