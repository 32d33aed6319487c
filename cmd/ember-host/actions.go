// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emberterm/ember/lib/binhash"
	"github.com/emberterm/ember/lib/config"
	"github.com/emberterm/ember/lib/dispatch"
	"github.com/emberterm/ember/lib/version"
	"github.com/emberterm/ember/lib/wire"
)

// ActionLauncher performs the side effects behind the session
// commands: starting a foreground surface, a background task, or
// delivering a broadcast into the running session. The terminal
// application provides the real implementation; ember-host's built-in
// one only logs, which is enough for protocol development and tests.
type ActionLauncher interface {
	OpenSurface(ctx context.Context, name string, arguments []string) error
	StartTask(ctx context.Context, name string, arguments []string) error
	Broadcast(ctx context.Context, event string, arguments []string) error
}

// registerActions assembles the host's dispatch table. "open" is
// gated on the overlay capability because it raises a foreground
// surface over whatever the user is doing; background tasks and
// broadcasts are not.
func registerActions(dispatcher *dispatch.Dispatcher, launcher ActionLauncher, configuration *config.Config) {
	started := time.Now()

	dispatcher.Handle("ping", func(ctx context.Context, command wire.Command) (wire.Result, error) {
		return wire.Result{ExitCode: wire.ExitSuccess, Stdout: "pong"}, nil
	})

	dispatcher.Handle("echo", func(ctx context.Context, command wire.Command) (wire.Result, error) {
		return wire.Result{ExitCode: wire.ExitSuccess, Stdout: strings.Join(command.Arguments, " ")}, nil
	})

	dispatcher.Handle("status", func(ctx context.Context, command wire.Command) (wire.Result, error) {
		digest, err := binhash.Running()
		if err != nil {
			digest = "unavailable"
		}
		status := fmt.Sprintf("ember-host %s\nbinary %s\nsocket %s\nuptime %s",
			version.Info(), digest, configuration.Socket.Path,
			time.Since(started).Round(time.Second))
		return wire.Result{ExitCode: wire.ExitSuccess, Stdout: status}, nil
	})

	dispatcher.HandleGated("open", "overlay", func(ctx context.Context, command wire.Command) (wire.Result, error) {
		if len(command.Arguments) == 0 {
			return wire.Errorf(wire.ExitUsage, "open: surface name required"), nil
		}
		if err := launcher.OpenSurface(ctx, command.Arguments[0], command.Arguments[1:]); err != nil {
			return wire.Result{}, fmt.Errorf("opening surface %s: %w", command.Arguments[0], err)
		}
		return wire.Result{ExitCode: wire.ExitSuccess, Stdout: "opened " + command.Arguments[0]}, nil
	})

	dispatcher.Handle("run", func(ctx context.Context, command wire.Command) (wire.Result, error) {
		if len(command.Arguments) == 0 {
			return wire.Errorf(wire.ExitUsage, "run: task name required"), nil
		}
		if err := launcher.StartTask(ctx, command.Arguments[0], command.Arguments[1:]); err != nil {
			return wire.Result{}, fmt.Errorf("starting task %s: %w", command.Arguments[0], err)
		}
		return wire.Result{ExitCode: wire.ExitSuccess, Stdout: "started " + command.Arguments[0]}, nil
	})

	dispatcher.Handle("broadcast", func(ctx context.Context, command wire.Command) (wire.Result, error) {
		if len(command.Arguments) == 0 {
			return wire.Errorf(wire.ExitUsage, "broadcast: event name required"), nil
		}
		if err := launcher.Broadcast(ctx, command.Arguments[0], command.Arguments[1:]); err != nil {
			return wire.Result{}, fmt.Errorf("broadcasting %s: %w", command.Arguments[0], err)
		}
		return wire.Result{ExitCode: wire.ExitSuccess, Stdout: "delivered " + command.Arguments[0]}, nil
	})
}

// logLauncher is the built-in ActionLauncher: it records each action
// and succeeds. Useful for protocol development and as the embedding
// template.
type logLauncher struct {
	logger *slog.Logger
}

func (l *logLauncher) OpenSurface(ctx context.Context, name string, arguments []string) error {
	l.logger.Info("open surface", "surface", name, "arguments", arguments)
	return nil
}

func (l *logLauncher) StartTask(ctx context.Context, name string, arguments []string) error {
	l.logger.Info("start task", "task", name, "arguments", arguments)
	return nil
}

func (l *logLauncher) Broadcast(ctx context.Context, event string, arguments []string) error {
	l.logger.Info("broadcast", "event", event, "arguments", arguments)
	return nil
}
