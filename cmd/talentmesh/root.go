// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TalentMesh Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/talentmesh/talentmesh/internal/config"
	"github.com/talentmesh/talentmesh/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the TalentMesh CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "talentmesh",
		Short: "TalentMesh - recruiting CRM access core",
		Long: `TalentMesh operator tooling for the recruiting CRM access core:
schema/policy migrations, lockdown remediation, and step history.`,
		SilenceUsage: true,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	cmd.PersistentFlags().String("database.url", "", "PostgreSQL connection URL")
	cmd.PersistentFlags().String("log.format", "", "log format: json or text")
	cmd.PersistentFlags().String("log.level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewLockdownCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}

// loadConfig resolves configuration for a subcommand and installs the
// default logger from it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	logging.SetDefault("talentmesh", version, cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	return cfg, nil
}

// logger returns the process logger installed by loadConfig.
func logger() *slog.Logger {
	return slog.Default()
}
