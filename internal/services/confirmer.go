package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/quest-engine/pkg/chat"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

const confirmerSystemPrompt = "You are a strict game rules assistant. " +
	"Answer the question with a single word: yes or no. Do not explain."

// LLMConfirmer adapts an LLMService to the quest engine's Confirmer
// interface. The engine only ever asks single yes/no questions, so the
// whole conversation is one system prompt plus one user message.
type LLMConfirmer struct {
	llm    LLMService
	logger *slog.Logger
}

var _ quest.Confirmer = (*LLMConfirmer)(nil)

// NewLLMConfirmer creates a confirmer backed by the given LLM service.
func NewLLMConfirmer(llm LLMService, logger *slog.Logger) *LLMConfirmer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMConfirmer{
		llm:    llm,
		logger: logger,
	}
}

// Ask sends one yes/no question and returns the raw reply text.
func (c *LLMConfirmer) Ask(ctx context.Context, prompt string) (string, error) {
	resp, err := c.llm.Chat(ctx, []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: confirmerSystemPrompt},
		{Role: chat.ChatRoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("confirmation request failed: %w", err)
	}
	c.logger.Debug("Confirmation reply", "reply", resp.Message)
	return resp.Message, nil
}
