/*
Package main is the entry point for the friend service.

It is responsible for loading configuration, initializing the global logging system,
selecting the user directory backend (PostgreSQL or in-memory), setting up the HTTP
server, and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"friendapp/internal/app/db"
	"friendapp/internal/app/friend"
	"friendapp/internal/app/notify"
	"friendapp/internal/configs"
	"friendapp/internal/handler"
	"friendapp/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("postgres", cfg.DatabaseDSN != "").
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Select the directory backend. An empty DSN (development only) runs the
	// service against the in-memory directory.
	var directory friend.Directory
	if cfg.DatabaseDSN != "" {
		pool, err := db.NewPool(cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to initialize database")
		}
		defer pool.Close()
		directory = db.NewStore(pool)
	} else {
		logx.Warn("No DATABASE_URL configured, using the in-memory directory. All data is lost on restart.")
		directory = db.NewMemDirectory()
	}

	// Initialize notification hub and friend service
	hub := notify.NewHub()
	friends := friend.NewService(directory, hub)

	// Setup HTTP server and routes
	deps := &handler.AppDeps{
		Config:    cfg,
		Directory: directory,
		Friends:   friends,
		Hub:       hub,
	}
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Friend Service starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}
