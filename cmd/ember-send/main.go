// Copyright 2026 The Ember Authors
// SPDX-License-Identifier: Apache-2.0

// ember-send is the helper binary spawned alongside the Ember session
// host. It sends a single command over the host's control socket and
// relays the result: stdout payload to stdout, stderr payload to
// stderr, exit code as its own exit code.
//
//	ember-send [flags] COMMAND [ARG...]
//
// With --json, or when stdout is not a terminal, the raw result is
// emitted as JSON instead for scripting.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/emberterm/ember/lib/client"
	"github.com/emberterm/ember/lib/config"
	"github.com/emberterm/ember/lib/version"
	"github.com/emberterm/ember/lib/wire"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		socketPath string
		timeout    time.Duration
		jsonOutput bool
	)

	flagSet := pflag.NewFlagSet("ember-send", pflag.ContinueOnError)
	flagSet.StringVar(&socketPath, "socket", config.DefaultSocketPath(), "control socket path")
	flagSet.DurationVar(&timeout, "timeout", client.DefaultTimeout, "bound on the whole request/response cycle")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit the raw result as JSON")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match ember-host.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("ember-send")
		return 0
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return wire.ExitUsage
	}

	arguments := flagSet.Args()
	if len(arguments) == 0 {
		printHelp(flagSet)
		return wire.ExitUsage
	}

	command := wire.Command{Name: arguments[0], Arguments: arguments[1:]}
	c := client.Client{SocketPath: socketPath, Timeout: timeout}

	result, err := c.Send(context.Background(), command)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return wire.ExitFailure
	}

	if jsonOutput || !term.IsTerminal(int(os.Stdout.Fd())) {
		return emitJSON(result)
	}

	if result.Stdout != "" {
		fmt.Println(result.Stdout)
	}
	if result.Stderr != "" {
		fmt.Fprintln(os.Stderr, result.Stderr)
	}
	return result.ExitCode
}

// emitJSON writes the result as a single JSON object. The exit code
// is still the command's, so scripts can rely on either channel.
func emitJSON(result wire.Result) int {
	encoded, err := json.Marshal(struct {
		OK       bool   `json:"ok"`
		ExitCode int    `json:"exit_code"`
		Stdout   string `json:"stdout"`
		Stderr   string `json:"stderr"`
	}{result.OK(), result.ExitCode, result.Stdout, result.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: encoding result: %v\n", err)
		return wire.ExitFailure
	}
	fmt.Println(string(encoded))
	return result.ExitCode
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Println("usage: ember-send [flags] COMMAND [ARG...]")
	fmt.Println()
	fmt.Println("Sends one command to the Ember session host and prints the result.")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Print(flagSet.FlagUsages())
}
