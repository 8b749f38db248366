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

	"github.com/microlearn/microlearn-server/internal/api"
	"github.com/microlearn/microlearn-server/internal/config"
	"github.com/microlearn/microlearn-server/internal/core"
	"github.com/microlearn/microlearn-server/internal/logger"
	"github.com/microlearn/microlearn-server/internal/store"
)

func main() {
	// Load configuration
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	// Setup logging
	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	// Initialize snapshot persistence
	snapshots, err := newSnapshotter(cfg)
	if err != nil {
		appLog.Fatal("Failed to initialize storage", "backend", cfg.StoreBackend, "error", err)
	}
	defer snapshots.Close()

	// Initialize LLM service
	ctx := context.Background()
	llmService, err := core.NewLLMService(ctx, core.LLMOptions{
		APIKey:    cfg.GeminiAPIKey,
		ModelName: cfg.GeminiModel,
		Timeout:   cfg.GenerationTimeout,
	}, appLog)
	if err != nil {
		appLog.Fatal("Failed to initialize LLM service", "error", err)
	}
	defer llmService.Close()

	// Initialize learning service and restore the previous snapshot
	learningService := core.NewLearningService(store.NewUserRegistry(), store.NewHistoryStore(), llmService, snapshots, appLog)
	learningService.Restore(ctx)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(learningService, appLog)
	routerOpts := api.RouterOptions{
		StaticDir:         cfg.StaticDir,
		Workers:           cfg.Workers,
		Backlog:           cfg.WorkerBacklog,
		BacklogTimeout:    cfg.WorkerBacklogTimeout,
		GenerationTimeout: cfg.GenerationTimeout,
	}
	router := api.NewRouter(apiHandler, routerOpts, appLog)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: routerOpts.WriteTimeout(), // queued requests still need time for the LLM call
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		appLog.Info("Starting server", "addr", serverAddr, "url", fmt.Sprintf("http://localhost:%s/index.html", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Could not listen", "addr", serverAddr, "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", "error", err)
	}

	appLog.Info("Server exiting gracefully")
}

func newSnapshotter(cfg config.Config) (store.Snapshotter, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		s, err := store.NewSQLiteSnapshotter(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		f, err := store.NewFileSnapshotter(cfg.UsersFile, cfg.HistoryFile)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}
