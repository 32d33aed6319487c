// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the Ember session
// host.
//
// Configuration is loaded from a single YAML file specified by:
//   - the EMBER_CONFIG environment variable, or
//   - the --config flag passed to ember-host
//
// There are no fallbacks or automatic discovery. This keeps the
// configuration deterministic and auditable: what the file says is
// what the host does, with defaults only for fields the file omits.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the session host's configuration.
type Config struct {
	// Title names the server in log output.
	Title string `yaml:"title"`

	// Socket configures the control socket.
	Socket SocketConfig `yaml:"socket"`

	// Commands configures the dispatch layer.
	Commands CommandsConfig `yaml:"commands"`

	// Log configures logging output.
	Log LogConfig `yaml:"log"`
}

// SocketConfig configures the control socket transport.
type SocketConfig struct {
	// Path is the Unix socket path to bind. Default: see
	// DefaultSocketPath.
	Path string `yaml:"path"`

	// AllowedUIDs lists additional uids permitted to connect, beyond
	// the host's own uid and root. Empty in the single-application
	// case.
	AllowedUIDs []int32 `yaml:"allowed_uids"`

	// ReadTimeout and WriteTimeout bound individual connection
	// operations.
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`

	// MaxRequestSize bounds a single encoded request in bytes.
	MaxRequestSize int64 `yaml:"max_request_size"`
}

// CommandsConfig configures the dispatch layer.
type CommandsConfig struct {
	// AliasFile is an optional JSONC alias definition file, loaded at
	// startup. Empty disables aliases.
	AliasFile string `yaml:"alias_file"`

	// GrantedCapabilities lists the platform capabilities the host
	// treats as granted (e.g., "overlay"). Gated commands whose
	// capability is absent from this list are rejected without
	// executing.
	GrantedCapabilities []string `yaml:"granted_capabilities"`
}

// LogConfig configures logging output.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Duration wraps time.Duration so YAML values can be written in the
// usual "30s" / "1m" notation.
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration in Go notation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// DefaultSocketPath returns the per-user control socket path:
// $XDG_RUNTIME_DIR/ember/control.sock when the runtime directory is
// set, otherwise a uid-scoped directory under /tmp.
func DefaultSocketPath() string {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "ember", "control.sock")
	}
	return filepath.Join(fmt.Sprintf("/tmp/ember-%d", os.Getuid()), "control.sock")
}

// Default returns the configuration used when the file omits a field.
func Default() *Config {
	return &Config{
		Title: "ember-host",
		Socket: SocketConfig{
			Path:           DefaultSocketPath(),
			ReadTimeout:    Duration(30 * time.Second),
			WriteTimeout:   Duration(10 * time.Second),
			MaxRequestSize: 64 * 1024,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the EMBER_CONFIG environment
// variable. Fails when the variable is unset; callers that accept a
// --config flag should call LoadFile directly.
func Load() (*Config, error) {
	configPath := os.Getenv("EMBER_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("EMBER_CONFIG environment variable not set; " +
			"set it to the path of your ember.yaml config file, or use the --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, applying
// defaults for omitted fields and validating the result.
func LoadFile(path string) (*Config, error) {
	configuration := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, configuration); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return configuration, nil
}

// Validate checks field values that would otherwise fail deep inside
// the server with a less helpful message.
func (c *Config) Validate() error {
	if c.Socket.Path == "" {
		return fmt.Errorf("socket.path must not be empty")
	}
	if c.Socket.ReadTimeout <= 0 {
		return fmt.Errorf("socket.read_timeout must be positive")
	}
	if c.Socket.WriteTimeout <= 0 {
		return fmt.Errorf("socket.write_timeout must be positive")
	}
	if c.Socket.MaxRequestSize <= 0 {
		return fmt.Errorf("socket.max_request_size must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: must be debug, info, warn, or error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q: must be text or json", c.Log.Format)
	}
	return nil
}
