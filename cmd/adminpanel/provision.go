// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
	authpg "github.com/JJHAVOK/full-admin-panel/internal/auth/postgres"
	"github.com/JJHAVOK/full-admin-panel/internal/store"
)

// Default timeout for the provision command.
const defaultProvisionTimeout = 30 * time.Second

// provisionConfig holds configuration for the provision command.
type provisionConfig struct {
	email   string
	role    string
	timeout time.Duration
}

// NewProvisionCmd creates the provision subcommand.
//
// Provisioning replaces the old startup-time admin seed: it runs once at
// deployment, outside the request path. The email unique constraint is the
// idempotence guard, so concurrent runs cannot double-create the account.
func NewProvisionCmd() *cobra.Command {
	cfg := &provisionConfig{}

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create the initial admin account",
		Long: `Creates the initial admin account. This command is idempotent - if the
account already exists it exits successfully without changing it.

The password is read from the ADMIN_PASSWORD environment variable so it
never appears in shell history or process listings.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProvision(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.email, "email", "admin@company.com", "admin account email")
	cmd.Flags().StringVar(&cfg.role, "role", "admin", "admin account role")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultProvisionTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")

	return cmd
}

func runProvision(cmd *cobra.Command, pcfg *provisionConfig) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		return oops.Code("CONFIG_INVALID").Errorf("ADMIN_PASSWORD environment variable is required")
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), pcfg.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := authpg.NewUserRepository(pool)
	hasher := auth.NewArgon2idHasher()

	digest, err := hasher.Hash(password)
	if err != nil {
		return oops.Code("PROVISION_FAILED").With("operation", "hash password").Wrap(err)
	}

	user, err := auth.NewUser(pcfg.email, digest, pcfg.role)
	if err != nil {
		return err
	}

	if err := users.Create(ctx, user); err != nil {
		// The unique constraint fired: a previous run already provisioned
		// this account. Leave it untouched.
		if errors.Is(err, auth.ErrDuplicateEmail) {
			cmd.Println("Admin account already exists, skipping provision")
			return nil
		}
		return oops.Code("PROVISION_FAILED").With("operation", "create admin account").Wrap(err)
	}

	cmd.Printf("Admin account created: %s (role %s)\n", user.Email, user.Role)
	return nil
}
