// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"errors"
	"net"
	"sync/atomic"
	"time"

	"github.com/emberterm/ember/lib/peercred"
)

// ErrClosed is returned by Read and Write after the connection has
// been closed.
var ErrClosed = errors.New("control: connection closed")

// Conn is one accepted client connection. It is owned by exactly one
// goroutine at a time: the accept loop until the authorization
// decision, then either the event handler (allowed) or the server's
// force-close (denied/error).
//
// Conn implements io.ReadWriteCloser. Every Read and Write arms a
// fresh deadline so a stalled peer fails with a timeout instead of
// holding its goroutine forever.
type Conn struct {
	raw        *net.UnixConn
	credential peercred.Credential

	readTimeout  time.Duration
	writeTimeout time.Duration

	closed atomic.Bool
}

// Credential returns the peer credential cached at accept time. It is
// resolved exactly once, before any handler callback fires.
func (c *Conn) Credential() peercred.Credential {
	return c.credential
}

// Read reads from the connection with the configured read deadline.
// Returns ErrClosed after Close.
func (c *Conn) Read(p []byte) (int, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	if c.readTimeout > 0 {
		if err := c.raw.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return 0, err
		}
	}
	return c.raw.Read(p)
}

// Write writes to the connection with the configured write deadline.
// Returns ErrClosed after Close.
func (c *Conn) Write(p []byte) (int, error) {
	if c.closed.Load() {
		return 0, ErrClosed
	}
	if c.writeTimeout > 0 {
		if err := c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return 0, err
		}
	}
	return c.raw.Write(p)
}

// Close releases the underlying socket. Safe to call any number of
// times; only the first call closes the descriptor.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.raw.Close()
}
