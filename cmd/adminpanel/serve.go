// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Full Admin Panel Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/JJHAVOK/full-admin-panel/internal/auth"
	"github.com/JJHAVOK/full-admin-panel/internal/auth/memory"
	authpg "github.com/JJHAVOK/full-admin-panel/internal/auth/postgres"
	"github.com/JJHAVOK/full-admin-panel/internal/config"
	"github.com/JJHAVOK/full-admin-panel/internal/logging"
	"github.com/JJHAVOK/full-admin-panel/internal/observability"
	"github.com/JJHAVOK/full-admin-panel/internal/store"
	"github.com/JJHAVOK/full-admin-panel/internal/web"
)

// shutdownTimeout bounds graceful shutdown of the HTTP servers.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand with all flags configured.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the admin panel web server",
		Long: `Start the web server: the login flow, the session-gated pages and,
on a separate listener, metrics and health probes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	registerConfigFlags(cmd)
	return cmd
}

// registerConfigFlags declares the dotted flags the config loader overlays
// on top of the config file. Defaults mirror config.Default so an unset
// flag never overrides a file value with something else.
func registerConfigFlags(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().String("server.addr", def.Server.Addr, "web listen address")
	cmd.Flags().String("server.static_dir", def.Server.StaticDir, "static asset directory (empty = disabled)")
	cmd.Flags().String("metrics.addr", def.Metrics.Addr, "metrics/health listen address (empty = disabled)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	cmd.Flags().Duration("session.ttl", def.Session.TTL, "fixed session lifetime")
	cmd.Flags().String("session.store", def.Session.Store, "session store backend (postgres or memory)")
	cmd.Flags().String("session.cookie_name", def.Session.CookieName, "session cookie name")
	cmd.Flags().Duration("session.sweep_interval", def.Session.SweepInterval, "expired session sweep interval")
	cmd.Flags().String("log.format", def.Log.Format, "log format (json or text)")
}

// loadConfig layers the config file and flags, then falls back to the
// DATABASE_URL environment variable the way the deployment scripts expect.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("adminpanel", version, cfg.Log.Format)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	users := authpg.NewUserRepository(pool)

	var sessions auth.SessionRepository
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		sessions = memory.NewSessionRepository()
	default:
		sessions = authpg.NewSessionRepository(pool)
	}

	hasher := auth.NewArgon2idHasherWithParams(auth.Argon2Params{
		Time:    cfg.Auth.Argon2Time,
		Memory:  cfg.Auth.Argon2Memory,
		Threads: cfg.Auth.Argon2Threads,
	})

	service, err := auth.NewServiceWithOptions(users, sessions, hasher, cfg.Session.TTL, logger)
	if err != nil {
		return err
	}

	// Observability listener is optional; the panel runs without it.
	var metrics *observability.Metrics
	var obsErrCh <-chan error
	var obsServer *observability.Server
	if cfg.Metrics.Addr != "" {
		obsServer = observability.NewServer(cfg.Metrics.Addr, func() bool {
			return pool.Ping(ctx) == nil
		})
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return err
		}
		metrics = obsServer.Metrics()
	}

	webServer, err := web.NewServer(service, web.Options{
		Addr:       cfg.Server.Addr,
		StaticDir:  cfg.Server.StaticDir,
		CookieName: cfg.Session.CookieName,
		Metrics:    metrics,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	webErrCh, err := webServer.Start()
	if err != nil {
		return err
	}

	go sweepExpiredSessions(ctx, service, metrics, cfg.Session.SweepInterval, logger)

	// Block until a signal or a server failure.
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-webErrCh:
		if err != nil {
			serveErr = oops.Code("WEB_SERVER_FAILED").Wrap(err)
		}
	case err := <-obsErrCh:
		if err != nil {
			serveErr = oops.Code("OBSERVABILITY_SERVER_FAILED").Wrap(err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := webServer.Stop(shutdownCtx); err != nil {
		logger.Error("web server shutdown failed", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Error("observability server shutdown failed", "error", err)
		}
	}

	return serveErr
}

// sweepExpiredSessions periodically purges expired sessions. Resolution
// already rejects expired tokens; the sweeper just keeps the store from
// accumulating dead rows.
func sweepExpiredSessions(ctx context.Context, service *auth.Service, metrics *observability.Metrics, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := service.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if metrics != nil && n > 0 {
				metrics.SessionsPurgedTotal.Add(float64(n))
			}
		}
	}
}
