// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package control

// EventHandler receives connection lifecycle events from a Server.
// Implementations own the per-connection protocol.
//
// ClientAccepted is invoked on a dedicated goroutine with an open,
// authorized connection; ownership transfers to the handler, which
// must close the connection on every path.
//
// DisallowedClient is invoked for a connection that failed the
// authorization policy. The server force-closes the connection after
// the callback returns regardless of what the handler does, so no
// unauthorized connection is ever left open for application logic.
//
// Error receives every contained per-connection failure (credential
// resolution, handler panics) for observability. It must be safe for
// concurrent calls.
type EventHandler interface {
	ClientAccepted(conn *Conn)
	DisallowedClient(conn *Conn)
	Error(err error)
}

// NopHandler is an EventHandler that ignores every event. Embed it to
// implement only the callbacks a server cares about, or use it
// directly for servers that only need the deny-by-default behavior.
type NopHandler struct{}

func (NopHandler) ClientAccepted(conn *Conn)   {}
func (NopHandler) DisallowedClient(conn *Conn) {}
func (NopHandler) Error(err error)             {}
