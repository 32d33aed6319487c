// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package control

import "github.com/emberterm/ember/lib/peercred"

// Policy decides whether a connecting peer may use the socket. It is
// evaluated once per connection, strictly before any request bytes
// are read, and sees only the kernel-verified credential.
type Policy func(credential peercred.Credential) bool

// SameUserPolicy allows the server's own uid, root, and any uid in
// extra. Unknown credentials are always denied — a peer whose
// identity the OS cannot vouch for is treated as hostile.
//
// selfUID is passed in explicitly (typically os.Getuid() computed at
// process start) rather than read ambiently, so tests and multi-user
// embedders can pin it.
func SameUserPolicy(selfUID int32, extra ...int32) Policy {
	return func(credential peercred.Credential) bool {
		if !credential.Known() {
			return false
		}
		if credential.UID == selfUID || credential.UID == 0 {
			return true
		}
		for _, uid := range extra {
			if credential.UID == uid {
				return true
			}
		}
		return false
	}
}
