package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/capitalprocrm/capitalpro-email-service/internal/config"
	"github.com/capitalprocrm/capitalpro-email-service/internal/email"
	"github.com/capitalprocrm/capitalpro-email-service/internal/handler"
	"github.com/capitalprocrm/capitalpro-email-service/internal/logger"
	"github.com/capitalprocrm/capitalpro-email-service/internal/middleware"
	"github.com/capitalprocrm/capitalpro-email-service/internal/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", "0.1.0").Msg("starting CapitalPro email service")

	// Presence booleans only; secret values are never logged.
	log.ConfigSummary(cfg.Summary())

	// Missing credentials are not fatal at boot. They are reported here
	// for the operator and again, per request, at dispatch time.
	if cfg.Auth.APIKey == "" && !cfg.Auth.Disabled {
		log.Warn().Msg("EMAIL_API_KEY missing, all send requests will be refused")
	}
	if _, err := email.NewTransport(cfg); err != nil {
		log.Warn().Err(err).Msg("transport credentials missing")
	}

	// Wire handlers and middleware
	h := handler.New(log, cfg, email.NewTransport)
	mw := middleware.New(log, cfg)
	r := router.New(h, mw)

	// CORS (configure allowed origins based on environment)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}).Handler(r)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
