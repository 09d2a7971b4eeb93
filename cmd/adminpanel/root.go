// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the admin panel CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adminpanel",
		Short: "Admin panel with credential-gated pages",
		Long: `The admin panel serves a login-gated dashboard backed by PostgreSQL
user accounts and server-tracked sessions.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewProvisionCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
