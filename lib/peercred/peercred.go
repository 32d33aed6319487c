// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package peercred

import (
	"errors"
	"net"
	"os/user"
	"strconv"
)

// Unknown is the sentinel for credential fields the OS could not
// resolve. It is deliberately not 0: uid 0 is root, and defaulting an
// unresolvable uid to a privileged value would invert the meaning of
// every authorization check downstream.
const Unknown int32 = -1

// ErrUnsupportedPlatform is returned by Resolve on platforms without a
// socket peer-credential facility. Callers treat the connection as
// carrying an unknown credential (and deny it) rather than failing the
// server.
var ErrUnsupportedPlatform = errors.New("peercred: no peer credential support on this platform")

// Credential is the kernel-verified identity of the process on the
// other end of a connected Unix socket. PID, UID, and GID come from
// the OS socket facility (SO_PEERCRED on Linux, LOCAL_PEERCRED on
// Darwin) and are authoritative. The name fields are best-effort
// decoration filled in by Enrich; they may be empty for peers in
// other security domains and must never feed an authorization
// decision.
type Credential struct {
	PID int32
	UID int32
	GID int32

	// ProcessName is the peer's short process name (comm), when
	// resolvable.
	ProcessName string

	// UserName and GroupName are the symbolic names for UID/GID,
	// when present in the local user database.
	UserName  string
	GroupName string

	// CommandLine is the peer's full command line, when the OS
	// permits reading it.
	CommandLine string
}

// UnknownCredential returns a Credential with all numeric fields set
// to the Unknown sentinel.
func UnknownCredential() Credential {
	return Credential{PID: Unknown, UID: Unknown, GID: Unknown}
}

// Known reports whether the UID was actually resolved from the OS.
// An unknown credential always fails authorization.
func (c Credential) Known() bool {
	return c.UID != Unknown
}

// Resolve returns the peer credential of a freshly accepted Unix
// socket connection. On platforms without a peer-credential facility
// it returns UnknownCredential and ErrUnsupportedPlatform.
//
// Resolution is a getsockopt on the already-connected descriptor; it
// never blocks on the peer.
func Resolve(conn *net.UnixConn) (Credential, error) {
	return resolve(conn)
}

// Enrich fills in the best-effort name fields: user and group names
// from the local user database, and the process name and command line
// where the platform exposes them. Failures leave the corresponding
// field empty; enrichment exists for diagnostics only.
func (c Credential) Enrich() Credential {
	if c.UID != Unknown {
		if u, err := user.LookupId(strconv.Itoa(int(c.UID))); err == nil {
			c.UserName = u.Username
		}
	}
	if c.GID != Unknown {
		if g, err := user.LookupGroupId(strconv.Itoa(int(c.GID))); err == nil {
			c.GroupName = g.Name
		}
	}
	if c.PID != Unknown {
		c.ProcessName = processName(c.PID)
		c.CommandLine = commandLine(c.PID)
	}
	return c
}
