// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Castellan Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/castellan/castellan/internal/auth"
	"github.com/castellan/castellan/internal/auth/postgres"
	"github.com/castellan/castellan/internal/config"
	"github.com/castellan/castellan/internal/httpapi"
	"github.com/castellan/castellan/internal/logging"
	"github.com/castellan/castellan/internal/observability"
	"github.com/castellan/castellan/internal/store"
)

// Default values for serve command flags.
const (
	defaultMetricsAddr = "127.0.0.1:9091"
	defaultLogFormat   = "json"
	shutdownTimeout    = 10 * time.Second
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the REST API server: user management and login endpoints
behind the API-key and bearer-token access gate, plus a metrics and
health endpoint on a separate listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("server_addr", "", "API listen address (required; also SERVER_ADDR)")
	flags.String("metrics_addr", defaultMetricsAddr, "metrics/health HTTP address")
	flags.String("log_format", defaultLogFormat, "log format (json or text)")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("castellan", version, cfg.LogFormat)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := postgres.NewUserRepository(pool)
	hasher := auth.NewArgon2idHasher()
	codec := auth.NewJWTCodec(cfg.JWTSecret)

	authSvc, err := auth.NewAuthService(repo, hasher, codec, logger)
	if err != nil {
		return err
	}
	userSvc, err := auth.NewUserService(repo, hasher, logger)
	if err != nil {
		return err
	}
	gate := auth.NewAccessGate(cfg.APIKey, codec)

	obs := observability.NewServer(cfg.MetricsAddr, func(ctx context.Context) bool {
		return pool.Ping(ctx) == nil
	})
	obsErrCh, err := obs.Start()
	if err != nil {
		return oops.With("component", "observability").Wrap(err)
	}
	defer shutdown(obs.Stop, "observability server")

	router := httpapi.NewRouter(
		httpapi.NewAuthHandler(authSvc, logger, obs.Metrics()),
		httpapi.NewUserHandler(userSvc, logger),
		gate,
		logger,
		obs.Metrics(),
	)
	api := httpapi.NewServer(cfg.ServerAddr, router)
	apiErrCh, err := api.Start()
	if err != nil {
		return oops.With("component", "api").Wrap(err)
	}
	defer shutdown(api.Stop, "api server")

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		return nil
	case err := <-apiErrCh:
		if err != nil {
			return oops.With("component", "api").Wrap(err)
		}
		return nil
	case err := <-obsErrCh:
		if err != nil {
			return oops.With("component", "observability").Wrap(err)
		}
		return nil
	}
}

// shutdown stops a component with a bounded grace period.
func shutdown(stop func(context.Context) error, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := stop(ctx); err != nil {
		slog.Error("shutdown failed", "component", name, "error", err)
	}
}
