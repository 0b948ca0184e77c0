// Gladius - Battle.net Game Data Proxy and Leaderboard Normalization
// Copyright 2026 D. Rantham (drantham)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/drantham/gladius

// Package main is the entry point for gladctl, the Gladius operator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/drantham/gladius/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
