// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package peercred

import (
	"net"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/emberterm/ember/lib/testutil"
)

// acceptSelfConnection binds a Unix socket, dials it from the same
// process, and returns the server side of the pair.
func acceptSelfConnection(t *testing.T) *net.UnixConn {
	t.Helper()

	socketPath := filepath.Join(testutil.SocketDir(t), "peer.sock")
	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	client, err := net.Dial("unix", socketPath)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	conn, err := listener.Accept()
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	unixConn, ok := conn.(*net.UnixConn)
	if !ok {
		t.Fatalf("accepted connection type = %T, want *net.UnixConn", conn)
	}
	return unixConn
}

func TestResolveSelfConnection(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("no peer credential facility on %s", runtime.GOOS)
	}

	credential, err := Resolve(acceptSelfConnection(t))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if credential.UID != int32(os.Getuid()) {
		t.Errorf("UID = %d, want %d", credential.UID, os.Getuid())
	}
	if credential.PID != int32(os.Getpid()) {
		t.Errorf("PID = %d, want %d", credential.PID, os.Getpid())
	}
	if !credential.Known() {
		t.Error("Known() = false for a resolved credential")
	}
}

func TestEnrichSelfConnection(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skipf("no peer credential facility on %s", runtime.GOOS)
	}

	credential, err := Resolve(acceptSelfConnection(t))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	enriched := credential.Enrich()

	current, err := user.Current()
	if err != nil {
		t.Fatalf("user.Current: %v", err)
	}
	if enriched.UserName != current.Username {
		t.Errorf("UserName = %q, want %q", enriched.UserName, current.Username)
	}

	if runtime.GOOS == "linux" {
		if enriched.ProcessName == "" {
			t.Error("ProcessName empty for own process on linux")
		}
		if enriched.CommandLine == "" {
			t.Error("CommandLine empty for own process on linux")
		}
	}

	// Enrich never touches the authoritative fields.
	if enriched.UID != credential.UID || enriched.GID != credential.GID || enriched.PID != credential.PID {
		t.Error("Enrich modified numeric credential fields")
	}
}

func TestUnknownCredential(t *testing.T) {
	credential := UnknownCredential()
	if credential.Known() {
		t.Error("UnknownCredential().Known() = true")
	}
	if credential.UID == 0 || credential.GID == 0 || credential.PID == 0 {
		t.Error("unknown sentinel must not be 0 (uid 0 is privileged)")
	}
}

func TestEnrichUnknownCredentialIsNoop(t *testing.T) {
	enriched := UnknownCredential().Enrich()
	if enriched.UserName != "" || enriched.GroupName != "" || enriched.ProcessName != "" {
		t.Errorf("Enrich of unknown credential resolved names: %+v", enriched)
	}
}
