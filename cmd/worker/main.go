package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/internal/services"
	"github.com/jwebster45206/quest-engine/internal/services/queue"
	"github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/internal/worker"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Quest Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL)

	// Initialize queue service
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

	commandQueue := queue.NewCommandQueue(queueClient, log)
	messageQueue := queue.NewMessageQueue(queueClient, log)
	log.Info("Queue service initialized successfully")

	// Initialize storage service
	storageService := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := storageService.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage service initialized successfully")

	gameService := services.NewGameService(storageService, log).
		WithMessageSink(messageQueue).
		WithVerbose(cfg.QuestVerbose)

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
		log.Info("LLM kill fallback enabled", "model", cfg.ModelName)
	}

	processor := worker.NewProcessor(gameService, log)

	// Create a separate Redis client for worker locking
	// (separate from queue client to avoid connection conflicts)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}()

	log.Info("Redis connection established successfully")

	w := worker.New(commandQueue, processor, redisClient, log, os.Getenv("WORKER_ID"))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("Shutdown signal received")
		w.Stop()
	}()

	if err := w.Start(); err != nil {
		log.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}

	log.Info("Worker exited")
}
