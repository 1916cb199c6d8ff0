package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jwebster45206/gamebook-engine/internal/config"
	"github.com/jwebster45206/gamebook-engine/internal/handlers"
	"github.com/jwebster45206/gamebook-engine/internal/logger"
	"github.com/jwebster45206/gamebook-engine/internal/middleware"
	"github.com/jwebster45206/gamebook-engine/internal/storage"
)

// isSavesPath reports whether a /v1/sessions/ path belongs to the
// nested saves routes.
func isSavesPath(path string) bool {
	rest := strings.Trim(strings.TrimPrefix(path, "/v1/sessions"), "/")
	parts := strings.Split(rest, "/")
	return len(parts) >= 2 && parts[1] == "saves"
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Gamebook Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir)

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, log)
	mux.Handle("/health", healthHandler)

	storyHandler := handlers.NewStoryHandler(log, store)
	mux.Handle("/v1/stories", storyHandler)
	mux.Handle("/v1/stories/", storyHandler)

	sessionHandler := handlers.NewSessionHandler(log, store)
	savesHandler := handlers.NewSavesHandler(log, store, sessionHandler)
	mux.Handle("/v1/sessions", sessionHandler)
	mux.HandleFunc("/v1/sessions/", func(w http.ResponseWriter, r *http.Request) {
		if isSavesPath(r.URL.Path) {
			savesHandler.ServeHTTP(w, r)
			return
		}
		sessionHandler.ServeHTTP(w, r)
	})

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
