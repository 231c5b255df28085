// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/talentmesh/talentmesh/internal/lockdown"
	"github.com/talentmesh/talentmesh/internal/store"
	"github.com/talentmesh/talentmesh/pkg/errutil"
)

// NewLockdownCmd creates the lockdown subcommand.
func NewLockdownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lockdown",
		Short: "Restore default-deny anonymous access",
		Long: `Run the three-phase lockdown remediation: revoke broad anonymous
grants, install default-deny rules, re-install the narrow public and
demo permits. Idempotent. Exit code 0 on success; 2 when the safety
invariant cannot be established and manual intervention is required.`,
		RunE: runLockdown,
	}
}

func runLockdown(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	cmd.Println("Connecting to database...")
	db, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := lockdown.Run(ctx, db.DB(), logger())
	if err != nil {
		errutil.LogError(logger(), "lockdown run failed", err)
		if !report.Verified {
			cmd.PrintErrln("*** LOCKDOWN DID NOT ESTABLISH DEFAULT-DENY ***")
			cmd.PrintErrln("*** Anonymous access rules require MANUAL INTERVENTION now. ***")
		}
		return err
	}

	cmd.Printf("Lockdown complete: %d phases applied, default-deny verified\n", len(report.Applied))
	return nil
}
