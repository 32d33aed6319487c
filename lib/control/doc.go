// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// Package control implements the Unix-socket server that bridges the
// Ember session host and its separately-spawned helper binaries.
//
// A [Server] is described by an immutable [RunConfig]: the socket
// path, the authorization [Policy], and the [EventHandler] that owns
// per-connection protocol logic. Start binds the socket and runs the
// accept loop on a dedicated goroutine; each accepted connection has
// its peer credential resolved (lib/peercred) and the policy applied
// before a single request byte is read. Allowed connections are
// handed to the handler on their own goroutine; denied ones fire
// DisallowedClient and are force-closed by the server itself.
//
// Error isolation: everything that goes wrong while processing one
// connection is contained to that connection and reported through the
// handler's Error callback. Only a failure of accept itself ends the
// loop, and that exit is observable through AcceptFailure and Done.
package control
