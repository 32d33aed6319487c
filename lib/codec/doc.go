// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec centralizes CBOR encoding configuration for the Ember
// control protocol.
//
// CBOR carries the one-request/one-response exchange between helper
// binaries and the session host. It is self-delimiting, so the socket
// protocol needs no framing layer: the server decodes exactly one
// value, acts on it, and encodes exactly one value back.
//
// All encoding goes through a single deterministic EncMode and all
// decoding through a single DecMode so that every component agrees on
// the wire representation. Consumers import this package instead of
// fxamacker/cbor directly.
package codec
