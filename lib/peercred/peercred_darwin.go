// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package peercred

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// resolve reads LOCAL_PEERCRED (uid/gid) and LOCAL_PEERPID from the
// connected socket. Xucred carries the effective uid and the group
// list; the pid comes from the separate LOCAL_PEERPID option.
func resolve(conn *net.UnixConn) (Credential, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return UnknownCredential(), fmt.Errorf("peercred: syscall conn: %w", err)
	}

	var xucred *unix.Xucred
	var pid int
	var sockoptErr error
	if err := raw.Control(func(fd uintptr) {
		xucred, sockoptErr = unix.GetsockoptXucred(int(fd), unix.SOL_LOCAL, unix.LOCAL_PEERCRED)
		if sockoptErr != nil {
			return
		}
		pid, sockoptErr = unix.GetsockoptInt(int(fd), unix.SOL_LOCAL, unix.LOCAL_PEERPID)
	}); err != nil {
		return UnknownCredential(), fmt.Errorf("peercred: control: %w", err)
	}
	if sockoptErr != nil {
		return UnknownCredential(), fmt.Errorf("peercred: getsockopt LOCAL_PEERCRED: %w", sockoptErr)
	}

	credential := Credential{
		PID: int32(pid),
		UID: int32(xucred.Uid),
		GID: Unknown,
	}
	if xucred.Ngroups > 0 {
		// Groups[0] is the effective gid.
		credential.GID = int32(xucred.Groups[0])
	}
	return credential, nil
}

// processName is not resolvable without procfs; Darwin peers are
// identified by pid/uid/gid only.
func processName(pid int32) string {
	return ""
}

func commandLine(pid int32) string {
	return ""
}
