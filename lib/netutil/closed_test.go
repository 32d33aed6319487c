// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
)

func TestIsExpectedCloseError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"eof", io.EOF, true},
		{"wrapped eof", fmt.Errorf("reading request: %w", io.EOF), true},
		{"net closed", net.ErrClosed, true},
		{"epipe", syscall.EPIPE, true},
		{"econnreset", &net.OpError{Op: "write", Err: syscall.ECONNRESET}, true},
		{"econnrefused", syscall.ECONNREFUSED, false},
		{"generic", errors.New("boom"), false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsExpectedCloseError(test.err); got != test.want {
				t.Errorf("IsExpectedCloseError(%v) = %v, want %v", test.err, got, test.want)
			}
		})
	}
}
