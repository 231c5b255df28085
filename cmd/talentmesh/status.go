// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package main

import (
	"encoding/json"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/talentmesh/talentmesh/internal/migrate"
	"github.com/talentmesh/talentmesh/internal/store"
)

// statusConfig holds configuration for the status command.
type statusConfig struct {
	jsonOutput bool
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the applied step history",
		Long:  `Show the durable record of applied migration and lockdown steps.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output history as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := store.Open(ctx, conf.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := migrate.AppliedSteps(ctx, db.DB())
	if err != nil {
		return err
	}

	if cfg.jsonOutput {
		out, err := json.MarshalIndent(applied, "", "  ")
		if err != nil {
			return oops.With("operation", "marshal step history").Wrap(err)
		}
		cmd.Println(string(out))
		return nil
	}

	if len(applied) == 0 {
		cmd.Println("no steps applied")
		return nil
	}
	for _, name := range applied {
		cmd.Println(name)
	}
	return nil
}
