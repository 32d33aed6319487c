// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux && !darwin

package peercred

import "net"

// resolve degrades to an unknown credential on platforms without a
// socket peer-credential facility. The server treats unknown
// credentials as unauthorized, so degradation fails closed.
func resolve(conn *net.UnixConn) (Credential, error) {
	return UnknownCredential(), ErrUnsupportedPlatform
}

func processName(pid int32) string {
	return ""
}

func commandLine(pid int32) string {
	return ""
}
