package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/quest-engine/pkg/event"
	"github.com/jwebster45206/quest-engine/pkg/queue"
)

// Seeds the request queue with sample traffic for an existing game, so a
// running worker can be observed end to end without the API in front.
func main() {
	redisURL := flag.String("redis", "redis://localhost:6379", "Redis URL")
	gameID := flag.String("game", "", "game state ID to target (required)")
	flag.Parse()

	if *gameID == "" {
		log.Fatal("-game is required (create a session via the API first)")
	}
	gameStateID, err := uuid.Parse(*gameID)
	if err != nil {
		log.Fatal("Invalid game state ID:", err)
	}

	redisOpts, err := redis.ParseURL(*redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}
	client := redis.NewClient(redisOpts)
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	fmt.Println("Connected to Redis successfully!")

	requests := []*queue.Request{
		{
			RequestID:   uuid.New().String(),
			Type:        queue.RequestTypeEvent,
			GameStateID: gameStateID,
			Event: &event.Event{
				Kind:     event.KindEnemyDefeated,
				EntityID: "wolf_01",
			},
			EnqueuedAt: time.Now(),
		},
		{
			RequestID:   uuid.New().String(),
			Type:        queue.RequestTypeCommand,
			GameStateID: gameStateID,
			CommandLine: `STATE_CHANGE {"attribute": "flag", "key": "met_the_warden", "value": true}`,
			EnqueuedAt:  time.Now(),
		},
		{
			RequestID:   uuid.New().String(),
			Type:        queue.RequestTypeTimeAdvance,
			GameStateID: gameStateID,
			TimeDelta:   120,
			EnqueuedAt:  time.Now(),
		},
	}

	for _, req := range requests {
		data, err := json.Marshal(req)
		if err != nil {
			log.Fatal("Failed to marshal request:", err)
		}
		if err := client.RPush(ctx, "requests", data).Err(); err != nil {
			log.Fatal("Failed to enqueue request:", err)
		}
		fmt.Printf("Enqueued %s request: %s\n", req.Type, req.RequestID)
	}

	depth, err := client.LLen(ctx, "requests").Result()
	if err != nil {
		log.Fatal("Failed to get queue depth:", err)
	}

	fmt.Printf("\nQueue depth: %d requests\n", depth)
	fmt.Println("\nNow start the worker to see it process these requests!")
	fmt.Println("   Run: go run cmd/worker/main.go")
}
