// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// Package client implements the helper side of the Ember control
// protocol: dial the session host's socket, send one command, read
// back the result. It is the shared transport for cmd/ember-send and
// for any embedding tool.
package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/emberterm/ember/lib/codec"
	"github.com/emberterm/ember/lib/wire"
)

// DefaultTimeout bounds the whole exchange: dial, send, and read.
const DefaultTimeout = 10 * time.Second

// Client sends commands to a session host's control socket. The zero
// value is not usable; set SocketPath.
type Client struct {
	// SocketPath is the host's control socket.
	SocketPath string

	// Timeout bounds one complete request/response cycle. Zero uses
	// DefaultTimeout.
	Timeout time.Duration
}

// Send performs one request/response cycle and returns the host's
// result. The returned error covers transport problems only — a
// command that executed and failed comes back as a Result with a
// non-zero exit code and a nil error.
func (c *Client) Send(ctx context.Context, command wire.Command) (wire.Result, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", c.SocketPath)
	if err != nil {
		return wire.Result{}, fmt.Errorf("dialing control socket %s: %w", c.SocketPath, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if contextDeadline, ok := ctx.Deadline(); ok && contextDeadline.Before(deadline) {
		deadline = contextDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return wire.Result{}, fmt.Errorf("setting deadline: %w", err)
	}

	if err := codec.NewEncoder(conn).Encode(command); err != nil {
		return wire.Result{}, fmt.Errorf("sending command: %w", err)
	}

	// Half-close to signal the request is complete. CBOR is
	// self-delimiting so the server does not need this, but it lets
	// the server distinguish a finished request from a stalled peer.
	if unixConn, ok := conn.(*net.UnixConn); ok {
		unixConn.CloseWrite()
	}

	var result wire.Result
	if err := codec.NewDecoder(conn).Decode(&result); err != nil {
		return wire.Result{}, fmt.Errorf("reading result: %w", err)
	}
	return result, nil
}
