// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// ember-host is the long-lived session host for the Ember terminal.
// It binds the per-user control socket and serves commands from
// helper binaries (ember-send) after authenticating each peer by its
// kernel-verified socket credentials.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/emberterm/ember/lib/aliasdef"
	"github.com/emberterm/ember/lib/config"
	"github.com/emberterm/ember/lib/control"
	"github.com/emberterm/ember/lib/dispatch"
	"github.com/emberterm/ember/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  string
		socketPath  string
		logLevel    string
		logFormat   string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "path to ember.yaml (defaults to $EMBER_CONFIG when set)")
	flag.StringVar(&socketPath, "socket", "", "control socket path (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	flag.StringVar(&logFormat, "log-format", "", "log format: text or json (overrides config)")
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("ember-host %s\n", version.Full())
		return nil
	}

	configuration, err := loadConfiguration(configPath)
	if err != nil {
		return err
	}
	if socketPath != "" {
		configuration.Socket.Path = socketPath
	}
	if logLevel != "" {
		configuration.Log.Level = logLevel
	}
	if logFormat != "" {
		configuration.Log.Format = logFormat
	}
	if err := configuration.Validate(); err != nil {
		return err
	}

	logger, err := buildLogger(configuration.Log)
	if err != nil {
		return err
	}

	dispatcher := dispatch.NewDispatcher(logger.With("component", "dispatch"))
	dispatcher.SetMaxRequestSize(configuration.Socket.MaxRequestSize)
	dispatcher.UsePermissionQuery(newCapabilitySet(configuration.Commands.GrantedCapabilities))

	if aliasFile := configuration.Commands.AliasFile; aliasFile != "" {
		aliases, err := aliasdef.ReadFile(aliasFile)
		if err != nil {
			return err
		}
		dispatcher.UseAliases(aliases)
		logger.Info("loaded command aliases", "file", aliasFile, "count", len(aliases))
	}

	registerActions(dispatcher, &logLauncher{logger: logger.With("component", "launcher")}, configuration)

	server := control.New(control.RunConfig{
		Title:        configuration.Title,
		SocketPath:   configuration.Socket.Path,
		Policy:       control.SameUserPolicy(int32(os.Getuid()), configuration.Socket.AllowedUIDs...),
		Handler:      dispatcher,
		ReadTimeout:  configuration.Socket.ReadTimeout.Std(),
		WriteTimeout: configuration.Socket.WriteTimeout.Std(),
	}, logger)

	if err := server.Start(); err != nil {
		return err
	}

	// Run until a termination signal or accept-loop death.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case received := <-signals:
		logger.Info("shutting down", "signal", received.String())
		server.Stop()
	case <-server.Done():
		// The accept loop died on its own; the failure was already
		// reported through the handler path.
		return fmt.Errorf("control socket accept loop terminated")
	}

	<-server.Done()
	return nil
}

// loadConfiguration resolves the configuration source: explicit flag,
// then EMBER_CONFIG, then built-in defaults.
func loadConfiguration(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	if os.Getenv("EMBER_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}

// buildLogger constructs the process logger per the log configuration.
func buildLogger(logConfig config.LogConfig) (*slog.Logger, error) {
	var level slog.Level
	switch logConfig.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", logConfig.Level)
	}

	options := &slog.HandlerOptions{Level: level}
	switch logConfig.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, options)), nil
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, options)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", logConfig.Format)
	}
}

// capabilitySet is the static permission oracle built from
// configuration. The real terminal app substitutes a live query
// against the platform's permission state.
type capabilitySet map[string]bool

func (s capabilitySet) Granted(capability string) bool { return s[capability] }

func newCapabilitySet(granted []string) capabilitySet {
	set := make(capabilitySet, len(granted))
	for _, capability := range granted {
		set[capability] = true
	}
	return set
}
