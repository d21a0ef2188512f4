/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Load settings (defaults on first run) and run legacy migration
  4. Load the visit snapshot into the tracker, consolidate duplicates
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: attendance.db)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: router configuration
  - attendance/tracker.go: the signal state machine
  - store/sqlite/sqlite.go: database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "attendance.db", "SQLite database path")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Load settings; first run gets the defaults persisted.
	settings, err := store.LoadSettings(ctx)
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if settings == nil {
		defaults := attendance.DefaultSettings()
		settings = &defaults
	}
	if settings.MigrateLegacyLocation() {
		log.Println("Migrated legacy single-coordinate office to location list")
	}
	if err := store.SaveSettings(ctx, *settings); err != nil {
		log.Printf("Warning: failed to persist settings: %v", err)
	}

	// Load the visit snapshot and tidy legacy duplicates.
	clock := attendance.SystemClock()
	tracker := attendance.NewTracker(store, clock)
	if err := tracker.Load(ctx); err != nil {
		log.Fatalf("Failed to load visits: %v", err)
	}
	if merged := tracker.ConsolidateDuplicates(ctx); merged > 0 {
		log.Printf("Consolidated %d duplicate same-day visits", merged)
	}

	// Create router
	handler := api.NewHandler(tracker, store, *settings, clock)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Attendance engine listening on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
