// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// Package aliasdef parses command alias definition files for the
// Ember control socket.
//
// Aliases are authored on disk as JSONC (JSON extended with //
// line comments, /* block comments */, and trailing commas) so
// operators can annotate them. Each entry maps a short alias name to
// a registered command plus an argument prefix:
//
//	{
//	  // open a scratch terminal next to the current one
//	  "scratch": {"command": "open", "arguments": ["session", "--split"]},
//	}
//
// The loaded map is read-only after startup and is shared across
// connection goroutines without locking.
package aliasdef

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Alias is one expansion: the target command name and the arguments
// prepended before the caller's own arguments.
type Alias struct {
	Command   string   `json:"command"`
	Arguments []string `json:"arguments,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into an alias map. Every entry must name a
// non-empty target command.
func Parse(data []byte) (map[string]Alias, error) {
	stripped := jsonc.ToJSON(data)

	var aliases map[string]Alias
	if err := json.Unmarshal(stripped, &aliases); err != nil {
		return nil, fmt.Errorf("parsing alias definitions: %w", err)
	}

	for name, alias := range aliases {
		if name == "" {
			return nil, fmt.Errorf("alias with empty name")
		}
		if alias.Command == "" {
			return nil, fmt.Errorf("alias %q: missing target command", name)
		}
		if alias.Command == name {
			return nil, fmt.Errorf("alias %q: expands to itself", name)
		}
	}
	return aliases, nil
}

// ReadFile loads and parses an alias definition file.
func ReadFile(path string) (map[string]Alias, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias file: %w", err)
	}
	aliases, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return aliases, nil
}
