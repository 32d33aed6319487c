// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package peercred

import (
	"fmt"
	"net"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// resolve reads SO_PEERCRED from the connected socket. The kernel
// records the peer's pid/uid/gid at connect time, so the value cannot
// be forged by the peer process.
func resolve(conn *net.UnixConn) (Credential, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return UnknownCredential(), fmt.Errorf("peercred: syscall conn: %w", err)
	}

	var ucred *unix.Ucred
	var sockoptErr error
	if err := raw.Control(func(fd uintptr) {
		ucred, sockoptErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return UnknownCredential(), fmt.Errorf("peercred: control: %w", err)
	}
	if sockoptErr != nil {
		return UnknownCredential(), fmt.Errorf("peercred: getsockopt SO_PEERCRED: %w", sockoptErr)
	}

	return Credential{
		PID: ucred.Pid,
		UID: int32(ucred.Uid),
		GID: int32(ucred.Gid),
	}, nil
}

// processName reads the peer's comm from procfs. Empty when the
// process has exited or procfs access is denied (e.g., the peer runs
// in another sandbox with hidepid).
func processName(pid int32) string {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(string(data), "\n")
}

// commandLine reads the peer's full command line from procfs. The
// kernel separates arguments with NUL bytes; they are rejoined with
// spaces for display.
func commandLine(pid int32) string {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil || len(data) == 0 {
		return ""
	}
	return strings.TrimRight(strings.ReplaceAll(string(data), "\x00", " "), " ")
}
