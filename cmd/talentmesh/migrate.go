// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/talentmesh/talentmesh/internal/migrate"
	"github.com/talentmesh/talentmesh/internal/store"
	"github.com/talentmesh/talentmesh/pkg/errutil"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema/policy migration set",
		Long: `Apply the full ordered migration step set against PostgreSQL.
On the first failing step, every committed step is rolled back in
reverse order. Exit code 0 on completion, 1 on failure.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
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

	runner := migrate.NewRunner(db.DB(), logger())
	report, err := runner.Run(ctx, migrate.DefaultSteps())
	if err != nil {
		errutil.LogError(logger(), "migration run failed", err)
	}

	cmd.Println(report.String())
	if report.FailedStep != "" {
		cmd.Printf("failing step: %s\n", report.FailedStep)
		for _, rb := range report.Rollbacks {
			cmd.Printf("rollback %s: %s\n", rb.Step, rb.Status)
		}
	}
	return err
}
