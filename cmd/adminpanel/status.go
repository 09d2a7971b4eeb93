// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/JJHAVOK/full-admin-panel/internal/store"
)

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database schema status",
		Long:  `Show the current migration version and whether the schema is dirty.`,
		RunE:  runStatus,
	}

	cmd.Flags().String("database.url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")

	return cmd
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrator.Close() //nolint:errcheck // nothing to do at exit
	}()

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}

	if version == 0 {
		cmd.Println("Schema version: none (no migrations applied)")
		return nil
	}

	cmd.Printf("Schema version: %d\n", version)
	if dirty {
		cmd.Println("WARNING: schema is dirty - a migration failed partway through")
	}
	return nil
}
