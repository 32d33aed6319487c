// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emberterm/ember/lib/client"
	"github.com/emberterm/ember/lib/config"
	"github.com/emberterm/ember/lib/control"
	"github.com/emberterm/ember/lib/dispatch"
	"github.com/emberterm/ember/lib/testutil"
	"github.com/emberterm/ember/lib/wire"
)

const testTimeout = 5 * time.Second

// recordingLauncher captures every action invocation.
type recordingLauncher struct {
	surfaces   chan string
	tasks      chan string
	broadcasts chan string
}

func newRecordingLauncher() *recordingLauncher {
	return &recordingLauncher{
		surfaces:   make(chan string, 8),
		tasks:      make(chan string, 8),
		broadcasts: make(chan string, 8),
	}
}

func (l *recordingLauncher) OpenSurface(ctx context.Context, name string, arguments []string) error {
	l.surfaces <- name
	return nil
}

func (l *recordingLauncher) StartTask(ctx context.Context, name string, arguments []string) error {
	l.tasks <- name
	return nil
}

func (l *recordingLauncher) Broadcast(ctx context.Context, event string, arguments []string) error {
	l.broadcasts <- event
	return nil
}

// startHost wires the real action table behind a live control server,
// the way run() does, with a configurable capability set.
func startHost(t *testing.T, launcher ActionLauncher, granted ...string) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	configuration := config.Default()
	configuration.Socket.Path = filepath.Join(testutil.SocketDir(t), "host.sock")

	dispatcher := dispatch.NewDispatcher(logger)
	dispatcher.UsePermissionQuery(newCapabilitySet(granted))
	registerActions(dispatcher, launcher, configuration)

	server := control.New(control.RunConfig{
		Title:      "host-test",
		SocketPath: configuration.Socket.Path,
		Policy:     control.SameUserPolicy(int32(os.Getuid())),
		Handler:    dispatcher,
	}, logger)
	if err := server.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		server.Stop()
		testutil.RequireClosed(t, server.Done(), testTimeout, "accept loop exit")
	})
	return configuration.Socket.Path
}

func send(t *testing.T, socketPath string, command wire.Command) wire.Result {
	t.Helper()
	c := client.Client{SocketPath: socketPath, Timeout: testTimeout}
	result, err := c.Send(context.Background(), command)
	if err != nil {
		t.Fatalf("Send(%s): %v", command, err)
	}
	return result
}

func TestPingCommand(t *testing.T) {
	socketPath := startHost(t, newRecordingLauncher())

	result := send(t, socketPath, wire.Command{Name: "ping"})
	if result.ExitCode != wire.ExitSuccess || result.Stdout != "pong" || result.Stderr != "" {
		t.Errorf("ping = %+v, want {0 pong }", result)
	}
}

func TestStatusCommand(t *testing.T) {
	socketPath := startHost(t, newRecordingLauncher())

	result := send(t, socketPath, wire.Command{Name: "status"})
	if result.ExitCode != wire.ExitSuccess {
		t.Fatalf("status = %+v", result)
	}
	for _, field := range []string{"ember-host", "binary", "socket", "uptime"} {
		if !strings.Contains(result.Stdout, field) {
			t.Errorf("status output missing %q:\n%s", field, result.Stdout)
		}
	}
}

func TestOpenRequiresOverlayCapability(t *testing.T) {
	launcher := newRecordingLauncher()
	socketPath := startHost(t, launcher) // no capabilities granted

	result := send(t, socketPath, wire.Command{Name: "open", Arguments: []string{"session"}})
	if result.ExitCode != wire.ExitPermissionDenied {
		t.Errorf("open exit = %d, want %d", result.ExitCode, wire.ExitPermissionDenied)
	}
	testutil.RequireNoReceive(t, launcher.surfaces, 50*time.Millisecond, "no surface launched without permission")
}

func TestOpenWithOverlayCapability(t *testing.T) {
	launcher := newRecordingLauncher()
	socketPath := startHost(t, launcher, "overlay")

	result := send(t, socketPath, wire.Command{Name: "open", Arguments: []string{"session", "--split"}})
	if result.ExitCode != wire.ExitSuccess {
		t.Fatalf("open = %+v", result)
	}
	surface := testutil.RequireReceive(t, launcher.surfaces, testTimeout, "surface launch")
	if surface != "session" {
		t.Errorf("launched surface = %q, want %q", surface, "session")
	}
}

func TestOpenWithoutArguments(t *testing.T) {
	socketPath := startHost(t, newRecordingLauncher(), "overlay")

	result := send(t, socketPath, wire.Command{Name: "open"})
	if result.ExitCode != wire.ExitUsage {
		t.Errorf("open with no arguments = %+v, want usage error", result)
	}
}

func TestRunAndBroadcast(t *testing.T) {
	launcher := newRecordingLauncher()
	socketPath := startHost(t, launcher)

	if result := send(t, socketPath, wire.Command{Name: "run", Arguments: []string{"sync-backups"}}); result.ExitCode != wire.ExitSuccess {
		t.Errorf("run = %+v", result)
	}
	task := testutil.RequireReceive(t, launcher.tasks, testTimeout, "task start")
	if task != "sync-backups" {
		t.Errorf("task = %q, want sync-backups", task)
	}

	if result := send(t, socketPath, wire.Command{Name: "broadcast", Arguments: []string{"reload-settings"}}); result.ExitCode != wire.ExitSuccess {
		t.Errorf("broadcast = %+v", result)
	}
	event := testutil.RequireReceive(t, launcher.broadcasts, testTimeout, "broadcast delivery")
	if event != "reload-settings" {
		t.Errorf("event = %q, want reload-settings", event)
	}
}
