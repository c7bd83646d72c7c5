// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/worldsense/internal/api"
	"github.com/tomtom215/worldsense/internal/auth"
	"github.com/tomtom215/worldsense/internal/config"
	"github.com/tomtom215/worldsense/internal/fetch"
	"github.com/tomtom215/worldsense/internal/likes"
	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/session"
	"github.com/tomtom215/worldsense/internal/supervisor"
	"github.com/tomtom215/worldsense/internal/supervisor/services"
	"github.com/tomtom215/worldsense/internal/tracking"
	ws "github.com/tomtom215/worldsense/internal/websocket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("upstream", cfg.Upstream.BaseURL).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("likes_store", cfg.Likes.Store).
		Bool("tracking", cfg.Tracking.Enabled).
		Msg("Starting WorldSense")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("WorldSense stopped with an error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	likeStore, err := likes.Open(cfg.Likes)
	if err != nil {
		return fmt.Errorf("open likes store: %w", err)
	}
	defer func() {
		if err := likeStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing likes store")
		}
	}()

	tracker, err := tracking.NewFromConfig(cfg.Tracking)
	if err != nil {
		return fmt.Errorf("init tracking: %w", err)
	}
	defer func() {
		if err := tracker.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing tracking sinks")
		}
	}()

	upstream := fetch.NewHTTPClient(fetch.ClientConfig{
		Timeout:        cfg.Upstream.Timeout,
		RetryAttempts:  cfg.Upstream.RetryAttempts,
		RetryDelay:     cfg.Upstream.RetryDelay,
		RequestsPerSec: cfg.Upstream.RequestsPerSec,
		Burst:          cfg.Upstream.Burst,
		BreakerEnabled: cfg.Upstream.BreakerEnabled,
	})

	sessionCfg, err := session.NewConfig(cfg)
	if err != nil {
		return err
	}

	hub := ws.NewHub()
	sessions := session.NewManager(sessionCfg, upstream, hub, tracker)

	authMW, err := auth.NewMiddleware(&cfg.Security, api.WriteError)
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}
	if authMW.Mode() == auth.AuthModeNone {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none): every visitor shares the anonymous identity")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	handler := api.NewHandler(cfg, sessions, likeStore, hub, tracker, upstream)
	router := api.NewRouter(handler, authMW, api.NewChiMiddlewareFromConfig(&cfg.Security))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if gc, ok := likeStore.(services.GCRunner); ok {
		tree.AddStorageService(services.NewLikesGCService(gc, cfg.Likes.GCInterval))
	}
	if tracker.Enabled() {
		tree.AddStorageService(tracker)
	}
	tree.AddSessionService(hub)
	tree.AddSessionService(sessions)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	err = tree.Serve(ctx)

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	return nil
}
