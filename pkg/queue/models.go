package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/pkg/event"
)

// RequestType identifies the type of request in the queue
type RequestType string

const (
	// RequestTypeCommand is an LLM-issued command line to dispatch
	RequestTypeCommand RequestType = "command"

	// RequestTypeEvent is a gameplay fact to record and evaluate
	RequestTypeEvent RequestType = "event"

	// RequestTypeTimeAdvance moves the game clock and sweeps time limits
	RequestTypeTimeAdvance RequestType = "time_advance"
)

// Request represents a unified request in the queue
type Request struct {
	RequestID   string      `json:"request_id"`
	Type        RequestType `json:"type"`
	GameStateID uuid.UUID   `json:"game_state_id"`

	// Command-specific fields
	CommandLine string `json:"command_line,omitempty"`

	// Event-specific fields
	Event *event.Event `json:"event,omitempty"`

	// Time advance-specific fields
	TimeDelta float64 `json:"time_delta,omitempty"`

	EnqueuedAt time.Time `json:"enqueued_at"`
}

// MarshalJSON serializes the request to JSON for Redis storage
func (r *Request) MarshalJSON() ([]byte, error) {
	type Alias Request
	return json.Marshal(&struct {
		GameStateID string `json:"game_state_id"`
		*Alias
	}{
		GameStateID: r.GameStateID.String(),
		Alias:       (*Alias)(r),
	})
}

// UnmarshalJSON deserializes the request from JSON in Redis
func (r *Request) UnmarshalJSON(data []byte) error {
	type Alias Request
	aux := &struct {
		GameStateID string `json:"game_state_id"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	gameStateID, err := uuid.Parse(aux.GameStateID)
	if err != nil {
		return err
	}

	r.GameStateID = gameStateID
	return nil
}

// ToJSON converts the request to JSON bytes for Redis
func (r *Request) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// FromJSON parses a request from JSON bytes
func FromJSON(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
