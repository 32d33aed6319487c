// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes content digests of binaries. The session
// host reports its own digest through the status command so operators
// can tell exactly which build is serving a socket.
package binhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashFile computes the SHA256 digest of the file at path. The file
// is streamed through the hash in chunks so memory usage stays
// constant regardless of binary size.
func HashFile(path string) ([32]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [32]byte{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return [32]byte{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// FormatDigest returns the hex encoding of a digest, the canonical
// form used in status output and logs.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}

// Running returns the hex digest of the currently executing binary.
func Running() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating running binary: %w", err)
	}
	digest, err := HashFile(executable)
	if err != nil {
		return "", err
	}
	return FormatDigest(digest), nil
}
