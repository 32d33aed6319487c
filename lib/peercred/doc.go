// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// Package peercred resolves the kernel-verified identity of the
// process on the other end of a connected Unix domain socket.
//
// The control socket's security model rests on this: the kernel, not
// the peer, asserts the peer's pid/uid/gid, so authorization can rely
// on the numbers without a challenge-response protocol. [Resolve] is
// the platform entry point (SO_PEERCRED on Linux, LOCAL_PEERCRED on
// Darwin); platforms without such a facility return
// [ErrUnsupportedPlatform] and an unknown credential, which the
// server rejects.
//
// Unresolvable fields carry the [Unknown] sentinel (-1), never a zero
// default — uid 0 is root, and a false zero would be a privileged
// false value.
package peercred
