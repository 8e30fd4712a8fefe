package services

import (
	"context"

	"github.com/jwebster45206/quest-engine/pkg/chat"
)

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// InitModel initializes the LLM model on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat generates a response to the given conversation
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
}
