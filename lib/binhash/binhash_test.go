// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"
)

func TestHashFile(t *testing.T) {
	content := []byte("hello, ember")
	path := filepath.Join(t.TempDir(), "test-binary")
	if err := os.WriteFile(path, content, 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	want := sha256.Sum256(content)
	if got != want {
		t.Errorf("HashFile = %x, want %x", got, want)
	}
}

func TestHashFileNonexistent(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("HashFile should fail for a nonexistent file")
	}
}

func TestFormatDigest(t *testing.T) {
	digest := sha256.Sum256([]byte("x"))
	formatted := FormatDigest(digest)
	if len(formatted) != 64 {
		t.Errorf("FormatDigest length = %d, want 64", len(formatted))
	}
}

func TestRunning(t *testing.T) {
	digest, err := Running()
	if err != nil {
		t.Fatalf("Running: %v", err)
	}
	if len(digest) != 64 {
		t.Errorf("Running digest length = %d, want 64", len(digest))
	}
}
