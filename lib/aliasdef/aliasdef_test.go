// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

package aliasdef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `{
		// scratch terminal next to the current pane
		"scratch": {"command": "open", "arguments": ["session", "--split"]},

		/* plain passthrough */
		"p": {"command": "ping"},
	}`

	aliases, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	scratch, ok := aliases["scratch"]
	if !ok {
		t.Fatal("missing alias \"scratch\"")
	}
	if scratch.Command != "open" {
		t.Errorf("scratch.Command = %q, want %q", scratch.Command, "open")
	}
	if len(scratch.Arguments) != 2 || scratch.Arguments[0] != "session" {
		t.Errorf("scratch.Arguments = %v, want [session --split]", scratch.Arguments)
	}

	if aliases["p"].Command != "ping" {
		t.Errorf("p.Command = %q, want %q", aliases["p"].Command, "ping")
	}
}

func TestParseRejectsMissingCommand(t *testing.T) {
	_, err := Parse([]byte(`{"broken": {"arguments": ["x"]}}`))
	if err == nil || !strings.Contains(err.Error(), "missing target command") {
		t.Errorf("Parse = %v, want missing-target error", err)
	}
}

func TestParseRejectsSelfAlias(t *testing.T) {
	_, err := Parse([]byte(`{"ping": {"command": "ping"}}`))
	if err == nil || !strings.Contains(err.Error(), "expands to itself") {
		t.Errorf("Parse = %v, want self-expansion error", err)
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	if _, err := Parse([]byte(`{"a": `)); err == nil {
		t.Error("Parse accepted truncated input")
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.jsonc")
	content := `{
		"s": {"command": "status"}, // trailing comma below is fine too
	}`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	aliases, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if aliases["s"].Command != "status" {
		t.Errorf("s.Command = %q, want %q", aliases["s"].Command, "status")
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.jsonc")); err == nil {
		t.Error("ReadFile succeeded for a missing file")
	}
}
