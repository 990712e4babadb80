// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the listing-leads customization
// server. It loads configuration, connects to services, sets up routing,
// and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/ai"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/cache"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/config"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/database"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/editor"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/handlers"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/router"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/session"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/storage"
	"github.com/vlad-listing-leads/listing-leads-prompt-generator-sub000/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed the admin account, profile catalog, and default settings
	// (no-op when the data already exists).
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize session store backed by Valkey.
	sessionStore := session.NewStore(valkeyClient)

	// Initialize data stores.
	agentStore := store.NewAgentStore(db)
	templateStore := store.NewTemplateStore(db)
	profileStore := store.NewProfileStore(db)
	customizationStore := store.NewCustomizationStore(db)
	settingStore := store.NewSettingStore(db)

	// Connect to S3-compatible object storage (optional — the app falls
	// back to data URLs for attachments without it).
	var storageClient *storage.Client
	if cfg.S3Endpoint != "" && cfg.S3AccessKey != "" {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		if storageClient != nil {
			slog.Info("s3 storage connected",
				"endpoint", cfg.S3Endpoint,
				"bucket", cfg.S3Bucket,
			)
		}
	} else {
		slog.Warn("s3 storage not configured — attachments fall back to data URLs")
	}

	// The active provider selection lives in the settings table and is
	// cached in Valkey so completions do not hit PostgreSQL.
	providerCache := cache.NewProviderCache(valkeyClient, settingStore, "ai_provider", 0)

	// Initialize the AI gateway with every configured vendor.
	gateway := ai.NewGateway(providerCache, map[string]ai.ProviderConfig{
		"anthropic": {APIKey: cfg.AnthropicKey, Model: cfg.AnthropicModel, VisionModel: cfg.AnthropicVisionModel, BaseURL: cfg.AnthropicBaseURL},
		"openai":    {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, VisionModel: cfg.OpenAIVisionModel, BaseURL: cfg.OpenAIBaseURL},
	}, ai.Policy{Timeout: cfg.AITimeout, MaxRetries: cfg.AIMaxRetries})

	slog.Info("ai gateway initialized", "available", gateway.Available())

	// Editing engines and the live session manager.
	merger := editor.NewMerger(gateway)
	toolEditor := editor.NewToolEditor(gateway)
	manager := editor.NewManager()

	// Create handler groups with their dependencies.
	h := router.Handlers{
		Auth:      handlers.NewAuth(sessionStore, agentStore),
		Templates: handlers.NewTemplates(templateStore, profileStore),
		Profile:   handlers.NewProfile(profileStore),
		Customizations: handlers.NewCustomizations(customizationStore, templateStore,
			profileStore, merger, toolEditor, manager, editor.SessionConfig{}),
		Attachments: handlers.NewAttachments(storageClient),
		Settings:    handlers.NewSettings(settingStore, gateway, providerCache),
	}

	// Set up the Chi router with all middleware and routes.
	r := router.New(sessionStore, h)

	// Create the HTTP server with sensible timeouts.
	// WriteTimeout must accommodate turn endpoints that wait on LLM
	// responses (typically 10-30s, up to 60s for full regenerations).
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	// Flush any pending autosaves before the process exits.
	manager.CloseAll(ctx)

	slog.Info("server stopped gracefully")
}
