// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire defines the CBOR types exchanged over the Ember control
// socket. The protocol is one request, one response, then close: a
// helper binary connects, sends a [Command], and reads back a [Result].
//
// The canonical definitions live here so the session host, the helper
// binaries, and the client library all agree on the encoding.
package wire

import (
	"fmt"
	"strings"
)

// Exit codes follow the shell convention so helper binaries can pass
// them straight to os.Exit.
const (
	// ExitSuccess is a completed command.
	ExitSuccess = 0

	// ExitFailure is a command that executed but failed.
	ExitFailure = 1

	// ExitUsage is a malformed request: unparseable, oversized, or
	// missing the command name.
	ExitUsage = 2

	// ExitPermissionDenied is a gated command rejected because the
	// required platform capability is not granted.
	ExitPermissionDenied = 126

	// ExitNotFound is a command name with no registered action.
	ExitNotFound = 127
)

// Command is one parsed request: a command name and its ordered
// arguments.
type Command struct {
	// Name selects the action in the host's dispatch table.
	Name string `cbor:"name"`

	// Arguments are passed to the action verbatim, in order.
	Arguments []string `cbor:"arguments,omitempty"`
}

// String renders the command the way it would be typed, for log
// output.
func (c Command) String() string {
	if len(c.Arguments) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Arguments, " ")
}

// Result is the single response written back before the connection
// closes.
type Result struct {
	// ExitCode is 0 on success; see the Exit* constants.
	ExitCode int `cbor:"exit_code"`

	// Stdout is the command's output payload.
	Stdout string `cbor:"stdout,omitempty"`

	// Stderr carries error and diagnostic text.
	Stderr string `cbor:"stderr,omitempty"`
}

// OK reports whether the command succeeded.
func (r Result) OK() bool {
	return r.ExitCode == ExitSuccess
}

// Errorf builds a failure Result with a formatted stderr payload. The
// exit code must be non-zero; it is the caller's statement of what
// kind of failure occurred.
func Errorf(exitCode int, format string, args ...any) Result {
	return Result{ExitCode: exitCode, Stderr: fmt.Sprintf(format, args...)}
}
