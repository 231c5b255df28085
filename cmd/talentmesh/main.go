// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

// Package main is the entry point for the TalentMesh operator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/talentmesh/talentmesh/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit code. A lockdown
// whose safety invariant could not be established exits 2 so operator
// tooling can distinguish "fix the cause and re-run" from "intervene
// by hand now". A verification that itself fails counts as not
// established: the steps committed and nobody confirmed default-deny.
func exitCode(err error) int {
	switch errutil.ErrorCode(err) {
	case "LOCKDOWN_UNSAFE", "LOCKDOWN_VERIFY_FAILED":
		return 2
	}
	return 1
}
