// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// Package dispatch implements the command protocol on top of the
// control socket: a [Dispatcher] is a control.EventHandler that reads
// one CBOR-encoded command per authorized connection, runs it through
// a fixed dispatch table, and writes back a single result before
// closing.
//
// Per-connection state machine: read a bounded request, optionally
// check a platform capability for gated commands, execute, respond,
// close. Malformed input short-circuits to an error result; unknown
// names respond with wire.ExitNotFound; action errors and panics are
// captured into non-zero-exit results. Nothing that happens on one
// connection can affect another: the table is immutable after startup
// and actions receive their own bounded context.
package dispatch
