// Package config manages toolkit configuration from ~/.xlkit/config.yaml and
// XLKIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds the toolkit configuration.
type Config struct {
	Output struct {
		Format string `mapstructure:"format"`
		Color  bool   `mapstructure:"color"`
	} `mapstructure:"output"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Plugins struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"plugins"`
	Audit struct {
		Enabled bool   `mapstructure:"enabled"`
		Path    string `mapstructure:"path"`
	} `mapstructure:"audit"`
}

// Issue is a validation finding.
type Issue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error" or "warning"
	Message  string `json:"message"`
}

// Load reads the configuration from the default location. A missing file is
// not an error.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the configuration from path with defaults and environment
// overrides applied.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix("XLKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output.format", "text")
	v.SetDefault("output.color", true)
	v.SetDefault("log.level", "warn")
	v.SetDefault("plugins.dir", filepath.Join(Dir(), "plugins"))
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.path", filepath.Join(Dir(), "audit.jsonl"))
}

// Validate reports settings that cannot be honored.
func (c *Config) Validate() []Issue {
	var issues []Issue

	switch c.Output.Format {
	case "text", "json":
	default:
		issues = append(issues, Issue{
			Key:      "output.format",
			Severity: "error",
			Message:  fmt.Sprintf("unsupported output format %q — use text or json", c.Output.Format),
		})
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		issues = append(issues, Issue{
			Key:      "log.level",
			Severity: "warning",
			Message:  fmt.Sprintf("unknown log level %q — falling back to warn", c.Log.Level),
		})
	}

	if c.Audit.Enabled && c.Audit.Path == "" {
		issues = append(issues, Issue{
			Key:      "audit.path",
			Severity: "warning",
			Message:  "audit logging is enabled but audit.path is empty — nothing will be recorded",
		})
	}

	return issues
}

// Dir returns the toolkit's configuration directory (~/.xlkit).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".xlkit"
	}
	return filepath.Join(home, ".xlkit")
}

// ConfigPath returns the path of the configuration file.
func ConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}
