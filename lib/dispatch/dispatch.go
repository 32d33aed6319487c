// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emberterm/ember/lib/aliasdef"
	"github.com/emberterm/ember/lib/codec"
	"github.com/emberterm/ember/lib/control"
	"github.com/emberterm/ember/lib/netutil"
	"github.com/emberterm/ember/lib/wire"
)

// DefaultMaxRequestSize bounds a single encoded request. A command
// name plus arguments fits in a fraction of this; the bound exists so
// a malicious peer cannot exhaust memory.
const DefaultMaxRequestSize = 64 * 1024

// executionTimeout bounds a single action invocation. Actions are
// fire-and-report (launch a surface, deliver a broadcast); anything
// long-running belongs in the launched component, not in the
// connection goroutine.
const executionTimeout = 30 * time.Second

// ActionFunc executes one command and returns its result. A returned
// error is converted to a non-zero-exit Result; it never propagates
// past the connection.
type ActionFunc func(ctx context.Context, command wire.Command) (wire.Result, error)

// PermissionQuery answers whether a named platform capability is
// currently granted. It backs the gate on commands that would start a
// foreground surface. Implementations must be safe for concurrent
// calls.
type PermissionQuery interface {
	Granted(capability string) bool
}

// registration is one dispatch table entry. capability is empty for
// ungated commands.
type registration struct {
	fn         ActionFunc
	capability string
}

// Dispatcher is the control.EventHandler that implements the command
// protocol: one CBOR request per connection, one result, then close.
//
// Register actions with Handle or HandleGated before the server
// starts; the table is read-only afterwards and shared across all
// connection goroutines without locking.
type Dispatcher struct {
	actions     map[string]registration
	aliases     map[string]aliasdef.Alias
	permissions PermissionQuery
	maxRequest  int64
	logger      *slog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		actions:    make(map[string]registration),
		maxRequest: DefaultMaxRequestSize,
		logger:     logger,
	}
}

// Handle registers an action for the given command name. Panics on a
// duplicate name: the table is assembled once at startup, and a
// duplicate is a programming error, not a runtime condition.
func (d *Dispatcher) Handle(name string, fn ActionFunc) {
	d.HandleGated(name, "", fn)
}

// HandleGated registers an action that additionally requires the
// named platform capability. Requests for the command are rejected
// with a permission-denied result, without executing, unless the
// configured PermissionQuery grants the capability.
func (d *Dispatcher) HandleGated(name, capability string, fn ActionFunc) {
	if name == "" {
		panic("dispatch: empty command name")
	}
	if _, exists := d.actions[name]; exists {
		panic(fmt.Sprintf("dispatch: duplicate handler for command %q", name))
	}
	d.actions[name] = registration{fn: fn, capability: capability}
}

// UsePermissionQuery supplies the capability oracle for gated
// commands. Without one, every gated command is denied.
func (d *Dispatcher) UsePermissionQuery(query PermissionQuery) {
	d.permissions = query
}

// UseAliases installs the alias expansion map. Expansion is a single
// step: an alias resolves to a registered command name, never to
// another alias.
func (d *Dispatcher) UseAliases(aliases map[string]aliasdef.Alias) {
	d.aliases = aliases
}

// SetMaxRequestSize overrides the request size bound. Values below 1
// are ignored.
func (d *Dispatcher) SetMaxRequestSize(bytes int64) {
	if bytes > 0 {
		d.maxRequest = bytes
	}
}

// ClientAccepted owns one authorized connection: read a single
// command, execute it, write the single result, close. Every path out
// of this function closes the connection.
func (d *Dispatcher) ClientAccepted(conn *control.Conn) {
	defer conn.Close()

	command, ok := d.readCommand(conn)
	if !ok {
		return
	}

	credential := conn.Credential()
	d.logger.Info("command received",
		"command", command.Name,
		"peer_pid", credential.PID,
		"peer_uid", credential.UID,
	)

	d.writeResult(conn, d.route(command))
}

// readCommand decodes one bounded CBOR command from the connection.
// Malformed, truncated, empty, and oversized requests all produce a
// protocol-error result on the wire; the false return means the
// response has already been written (or cannot be).
func (d *Dispatcher) readCommand(conn *control.Conn) (wire.Command, bool) {
	var command wire.Command
	err := codec.NewDecoder(io.LimitReader(conn, d.maxRequest)).Decode(&command)
	switch {
	case err == nil:
		if command.Name == "" {
			d.writeResult(conn, wire.Errorf(wire.ExitUsage, "missing command name"))
			return wire.Command{}, false
		}
		return command, true
	case errors.Is(err, io.EOF):
		// The peer connected and closed without sending anything.
		d.writeResult(conn, wire.Errorf(wire.ExitUsage, "empty request"))
		return wire.Command{}, false
	default:
		// Covers unparseable bytes, truncated values, and requests
		// clipped by the LimitReader (surfacing as unexpected EOF).
		d.writeResult(conn, wire.Errorf(wire.ExitUsage, "invalid request: %v", err))
		return wire.Command{}, false
	}
}

// route expands aliases, looks the command up, applies the permission
// gate, and executes.
func (d *Dispatcher) route(command wire.Command) wire.Result {
	if alias, ok := d.aliases[command.Name]; ok {
		expanded := wire.Command{
			Name:      alias.Command,
			Arguments: append(append([]string{}, alias.Arguments...), command.Arguments...),
		}
		command = expanded
	}

	entry, ok := d.actions[command.Name]
	if !ok {
		return wire.Errorf(wire.ExitNotFound, "%s: command not found", command.Name)
	}

	if entry.capability != "" {
		if d.permissions == nil || !d.permissions.Granted(entry.capability) {
			return wire.Errorf(wire.ExitPermissionDenied,
				"%s: requires the %q permission, which is not granted", command.Name, entry.capability)
		}
	}

	return d.execute(entry.fn, command)
}

// execute runs the action with panic containment. An action failure
// of any kind becomes a non-zero-exit result; it never kills the
// connection goroutine silently.
func (d *Dispatcher) execute(fn ActionFunc, command wire.Command) (result wire.Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			d.logger.Error("command panicked", "command", command.Name, "panic", recovered)
			result = wire.Errorf(wire.ExitFailure, "%s: internal error: %v", command.Name, recovered)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), executionTimeout)
	defer cancel()

	result, err := fn(ctx, command)
	if err != nil {
		d.logger.Debug("command failed", "command", command.Name, "error", err)
		if result.ExitCode == wire.ExitSuccess {
			result.ExitCode = wire.ExitFailure
		}
		if result.Stderr == "" {
			result.Stderr = err.Error()
		}
	}
	return result
}

// writeResult serializes the result back to the peer. A write failure
// is logged (unless it is a normal teardown race) and the connection
// closes regardless — the peer already decided not to listen.
func (d *Dispatcher) writeResult(conn *control.Conn, result wire.Result) {
	if err := codec.NewEncoder(conn).Encode(result); err != nil {
		if !netutil.IsExpectedCloseError(err) {
			d.logger.Debug("failed to write result", "error", err)
		}
	}
}

// DisallowedClient logs the rejected peer. The enriched fields are
// best-effort diagnostics; the denial itself was decided on the raw
// uid before this callback fired, and the connection is force-closed
// by the server when it returns.
func (d *Dispatcher) DisallowedClient(conn *control.Conn) {
	credential := conn.Credential().Enrich()
	d.logger.Warn("rejected connection from disallowed peer",
		"peer_pid", credential.PID,
		"peer_uid", credential.UID,
		"peer_gid", credential.GID,
		"peer_user", credential.UserName,
		"peer_process", credential.ProcessName,
	)
}

// Error records contained per-connection failures reported by the
// server.
func (d *Dispatcher) Error(err error) {
	d.logger.Error("connection error", "error", err)
}
