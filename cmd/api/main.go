package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/internal/handlers"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/middleware"
	"github.com/jwebster45206/quest-engine/internal/services"
	"github.com/jwebster45206/quest-engine/internal/services/queue"
	"github.com/jwebster45206/quest-engine/internal/storage"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Quest Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"model_name", cfg.ModelName)

	storageService := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := storageService.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	queueClient, err := queue.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := queueClient.Close(); err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()
	messageQueue := queue.NewMessageQueue(queueClient, log)

	gameService := services.NewGameService(storageService, log).
		WithMessageSink(messageQueue).
		WithVerbose(cfg.QuestVerbose)

	// The kill fallback needs an LLM; only wire it when enabled.
	if cfg.QuestLLMFallback {
		llmService := services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, log)
		initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Minute)
		if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
			initCancel()
			log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
			os.Exit(1)
		}
		initCancel()
		gameService = gameService.
			WithConfirmer(services.NewLLMConfirmer(llmService, log)).
			WithKillFallback(true)
	}

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(storageService, log))

	questPackHandler := handlers.NewQuestPackHandler(log, storageService)
	mux.Handle("/v1/questpacks", questPackHandler)
	mux.Handle("/v1/questpacks/", questPackHandler)

	gameStateHandler := handlers.NewGameStateHandler(log, gameService)
	mux.Handle("/v1/gamestate", gameStateHandler)
	mux.Handle("/v1/gamestate/{id}", gameStateHandler)

	mux.Handle("POST /v1/gamestate/{id}/events", handlers.NewEventsHandler(log, gameService))
	mux.Handle("POST /v1/gamestate/{id}/commands", handlers.NewCommandsHandler(log, gameService))
	mux.Handle("GET /v1/gamestate/{id}/messages", handlers.NewMessagesHandler(log, messageQueue))
	mux.Handle("GET /v1/gamestate/{id}/prompt", handlers.NewPromptHandler(log, gameService))

	handler := middleware.Logger(mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
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

	if err := storageService.Close(); err != nil {
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
