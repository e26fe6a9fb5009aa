// Package main initializes and starts the form proxy server, setting up
// configuration, logging, the contact database, the backend client, the
// reference-data cache, handlers and the HTTP server.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/formresume/internal/backend"
	"github.com/atinyakov/formresume/internal/cms"
	"github.com/atinyakov/formresume/internal/config"
	"github.com/atinyakov/formresume/internal/db"
	"github.com/atinyakov/formresume/internal/logger"
	"github.com/atinyakov/formresume/internal/refdata"
	"github.com/atinyakov/formresume/internal/repository"
	"github.com/atinyakov/formresume/internal/server/handler/http"
	"github.com/atinyakov/formresume/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection for contact storage.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Drop contact submissions past the retention window.
	db.StartRetentionCleaner(ctx, postgresDB, time.Hour, options.ContactRetention, zapLogger)

	if options.BackendURL == "" {
		zapLogger.Warn("backend URL is not configured, form routes will answer 500")
	}
	backendClient := backend.NewClient(options.BackendURL, nil)

	// Reference data: memory cache, optionally backed by Redis.
	var store refdata.Store
	if options.RedisAddr != "" {
		redisStore, err := refdata.NewRedisStore(ctx, options.RedisAddr, options.RefDataTTL, zapLogger)
		if err != nil {
			zapLogger.Warn("redis unavailable, caching reference data in memory only", zap.Error(err))
		} else {
			defer redisStore.Close()
			store = redisStore
		}
	}
	refCache := refdata.NewCache(backendClient, store, zapLogger)

	// Contact storage with CMS lifecycle hooks.
	contactRepo := repository.NewPostgresContactRepository(postgresDB)
	contactService := service.NewContactService(contactRepo, cms.NewHooks(zapLogger))

	formHandler := &http.FormHandler{Backend: backendClient, Log: zapLogger}
	refHandler := &http.RefDataHandler{RefData: refCache, Log: zapLogger}
	contactHandler := &http.ContactHandler{ContactService: contactService, Log: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(formHandler, refHandler, contactHandler, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
