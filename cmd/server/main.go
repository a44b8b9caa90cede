package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repomate/server/internal/mcp"
	"repomate/server/internal/middleware"
	"repomate/server/internal/modules"
	"repomate/server/internal/modules/github"
	"repomate/server/internal/observability"
)

const (
	serverName    = "repomate"
	serverVersion = "0.1.0"

	defaultListenAddr = "127.0.0.1:3002"
	defaultOwner      = "EvieHwang"
)

func main() {
	// Initialize observability (Loki)
	observability.Init()

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = defaultListenAddr
	}

	// The token itself is read lazily on first tool call, but an unset
	// variable means every call would fail, so refuse to start.
	if os.Getenv("GITHUB_TOKEN") == "" {
		log.Fatal("GITHUB_TOKEN is not set. Set it via environment variable or .env")
	}

	owner := os.Getenv("GITHUB_DEFAULT_OWNER")
	if owner == "" {
		owner = defaultOwner
	}

	// Register modules
	modules.RegisterModule(github.New(owner))

	moduleNames := modules.ListModules()
	log.Printf("Registered modules: %v", moduleNames)
	log.Printf("Default owner: %s", owner)

	// Create router (Go 1.22+ method-aware patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","server":"%s","version":"%s"}`, serverName, serverVersion)
	})

	// MCP endpoint with recovery + request ID + rate limit + transport middleware
	rateLimiter := middleware.NewRateLimiter(10)
	mcpHandler := mcp.NewHandler(serverName, serverVersion)
	mux.Handle("/mcp", middleware.Recovery(middleware.RequestID(rateLimiter.Middleware(middleware.Transport(mcpHandler)))))

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting MCP server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal %s, shutting down gracefully...", sig)

	// Give in-flight requests up to 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Printf("Server stopped")
}
