package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	// RedisURL is the address of the Redis instance backing game state
	// storage and the request queues.
	RedisURL string

	// DataDir holds quest pack JSON files.
	DataDir string

	// QuestVerbose enables per-evaluation debug logging in the quest
	// engine.
	QuestVerbose bool

	// QuestLLMFallback enables the LLM confirmation fallback for kill
	// objectives.
	QuestLLMFallback bool

	// Ollama connection for the LLM collaborator.
	OllamaURL string
	ModelName string
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:         getEnv("REDIS_URL", "localhost:6379"),
		DataDir:          getEnv("DATA_DIR", "./data"),
		QuestVerbose:     getBoolEnv("QUEST_VERBOSE", false),
		QuestLLMFallback: getBoolEnv("QUEST_LLM_FALLBACK", false),
		OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
		ModelName:        getEnv("MODEL_NAME", "llama3"),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
