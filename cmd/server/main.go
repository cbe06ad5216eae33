/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the rent ledger server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env files and configuration (config package)
  2. Parse command-line flags (override config)
  3. Initialize SQLite store
  4. Create API handler, router and reminder scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: PORT or 8080)
  -db      SQLite database path (default: DATABASE_PATH)
           Use ":memory:" for in-memory database
  -demo    Load demo data on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the reminder scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/rent.db"

  # Throwaway database with demo data
  ./server -db=":memory:" -demo

SEE ALSO:
  - config/config.go: Environment keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/warp/rent-ledger/api"
	"github.com/warp/rent-ledger/config"
	"github.com/warp/rent-ledger/logging"
	"github.com/warp/rent-ledger/store/sqlite"
)

func main() {
	config.LoadEnv(nil)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	demo := flag.Bool("demo", false, "Load demo data on startup")
	flag.Parse()
	cfg.Port = *port
	cfg.DatabasePath = *dbPath

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.DatabasePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
			logger.WithError(err).Fatal("Failed to create database directory")
		}
	}

	// Initialize store
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, logger, api.NewMetrics())
	if *demo {
		if _, err := handler.LoadDemoData(context.Background()); err != nil {
			logger.WithError(err).Warn("Failed to load demo data")
		}
	}

	scheduler := api.NewReminderScheduler(handler)
	scheduler.CheckInterval = cfg.ReminderInterval
	scheduler.Enabled = cfg.RemindersEnabled
	scheduler.Start()

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(handler, cfg.CORSAllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.WithField("addr", server.Addr).WithField("db", cfg.DatabasePath).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}
