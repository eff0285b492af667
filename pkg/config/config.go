// Package config handles configuration for deviceautomator.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Default values applied by Load and LoadFromDir.
const (
	DefaultDevicePort    = 6790
	DefaultTimeout       = 5 * time.Second
	DefaultLaunchTimeout = 10 * time.Second
	DefaultServerTimeout = 30 * time.Second
)

// fileNames are tried in order by LoadFromDir.
var fileNames = []string{
	"deviceautomator.yaml",
	"deviceautomator.yml",
	"deviceautomator.toml",
}

// Config represents the workspace configuration (deviceautomator.yaml).
type Config struct {
	// Device settings
	Device     string `yaml:"device" toml:"device"`         // Serial, comma-separated for several
	DevicePort int    `yaml:"devicePort" toml:"devicePort"` // UIAutomator2 port on the device
	SocketPath string `yaml:"socketPath" toml:"socketPath"` // Local unix socket for the forward

	// Waits
	Timeout       Duration `yaml:"timeout" toml:"timeout"`             // Default wait for element lookups
	LaunchTimeout Duration `yaml:"launchTimeout" toml:"launchTimeout"` // Wait for an app to reach the foreground
	ServerTimeout Duration `yaml:"serverTimeout" toml:"serverTimeout"` // UIAutomator2 startup

	LogPath string `yaml:"logPath" toml:"logPath"`
}

// Duration is a time.Duration that decodes from strings like "5s" in both
// YAML and TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler (used by TOML).
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		DevicePort:    DefaultDevicePort,
		Timeout:       Duration(DefaultTimeout),
		LaunchTimeout: Duration(DefaultLaunchTimeout),
		ServerTimeout: Duration(DefaultServerTimeout),
	}
}

// Load loads configuration from a file. The format follows the extension:
// .toml is TOML, anything else YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	switch filepath.Ext(path) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	}

	return cfg, nil
}

// LoadFromDir looks for deviceautomator.yaml, .yml or .toml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range fileNames {
		configPath := filepath.Join(dir, name)
		if _, err := os.Stat(configPath); err == nil {
			return Load(configPath)
		}
	}

	// No config file found, return defaults
	return Default(), nil
}
