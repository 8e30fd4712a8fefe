package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// MessageQueue holds per-game system messages ("Objective completed: ...")
// until a client drains them. The quest engine writes through the
// MessageSink interface; the API's messages endpoint and the console drain.
type MessageQueue struct {
	client *Client
	logger *slog.Logger
}

// Ensure MessageQueue satisfies the engine's sink interface
var _ quest.MessageSink = (*MessageQueue)(nil)

func NewMessageQueue(client *Client, logger *slog.Logger) *MessageQueue {
	return &MessageQueue{
		client: client,
		logger: logger,
	}
}

func messageKey(gameStateID uuid.UUID) string {
	return fmt.Sprintf("system-messages:%s", gameStateID.String())
}

// SystemMessage implements quest.MessageSink.
func (q *MessageQueue) SystemMessage(ctx context.Context, gameID uuid.UUID, text string) error {
	return q.Enqueue(ctx, gameID, text)
}

// Enqueue adds a system message to the end of a game's queue
func (q *MessageQueue) Enqueue(ctx context.Context, gameStateID uuid.UUID, text string) error {
	key := messageKey(gameStateID)
	if err := q.client.rdb.RPush(ctx, key, text).Err(); err != nil {
		return fmt.Errorf("failed to enqueue system message: %w", err)
	}
	return nil
}

// Drain removes and returns all queued system messages for a game
func (q *MessageQueue) Drain(ctx context.Context, gameStateID uuid.UUID) ([]string, error) {
	key := messageKey(gameStateID)

	messages, err := q.client.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to drain system messages: %w", err)
	}
	if len(messages) > 0 {
		if err := q.client.rdb.Del(ctx, key).Err(); err != nil {
			return nil, fmt.Errorf("failed to clear system message queue after drain: %w", err)
		}
	}
	return messages, nil
}

// Peek returns up to limit system messages without removing them. A
// non-positive limit returns all.
func (q *MessageQueue) Peek(ctx context.Context, gameStateID uuid.UUID, limit int) ([]string, error) {
	key := messageKey(gameStateID)

	end := int64(limit - 1)
	if limit <= 0 {
		end = -1 // Get all
	}
	messages, err := q.client.rdb.LRange(ctx, key, 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to peek system messages: %w", err)
	}
	return messages, nil
}

// Clear removes all system messages for a game
func (q *MessageQueue) Clear(ctx context.Context, gameStateID uuid.UUID) error {
	key := messageKey(gameStateID)
	if err := q.client.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear system message queue: %w", err)
	}
	return nil
}

// Depth returns the number of system messages queued for a game
func (q *MessageQueue) Depth(ctx context.Context, gameStateID uuid.UUID) (int, error) {
	count, err := q.client.rdb.LLen(ctx, messageKey(gameStateID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get message queue depth: %w", err)
	}
	return int(count), nil
}
