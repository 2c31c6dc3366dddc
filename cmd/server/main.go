/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the PTO scheduling server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (file, environment, defaults)
  3. Build the configured storage backend
  4. Create API handler with dependencies
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (optional)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config)
           Use ":memory:" for an in-memory database

CONFIGURATION:
  Flags override environment variables (PTO_* prefix), which override the
  config file, which overrides built-in defaults. With no AI key configured
  the server runs parser-only; unparseable requests are rejected.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the storage backend
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/pto.db"

  # Run against a remote records API
  PTO_STORAGE_BACKEND=remote PTO_STORAGE_REMOTE_BASE_URL=https://records.internal ./server

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - config/config.go: Configuration loading and validation
  - api/server.go: Router configuration
  - storage/factory/factory.go: Backend selection
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/pto-scheduler/api"
	"github.com/warp/pto-scheduler/calendar"
	"github.com/warp/pto-scheduler/config"
	"github.com/warp/pto-scheduler/fallback"
	"github.com/warp/pto-scheduler/storage/factory"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "path to YAML config file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.SQLite.Path = *dbPath
	}

	// Initialize storage
	store, err := factory.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer closeIfCloser(store)

	// Initialize handler
	calc := calendar.NewCalculator(calendar.NewCalendar(calendar.USFederal2025()))
	planner := fallback.NewPlanner(cfg.AI, calc)
	if planner == nil {
		log.Println("No AI API key configured; running parser-only")
	}
	handler := api.NewHandler(store, calc, planner)

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", cfg.Port)
		log.Printf("📊 API available at http://localhost:%d/api/pto", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// closeIfCloser closes backends that hold resources; the remote client has
// nothing to close.
func closeIfCloser(v any) {
	if c, ok := v.(io.Closer); ok {
		c.Close()
	}
}
