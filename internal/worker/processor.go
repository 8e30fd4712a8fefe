package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/quest-engine/internal/services"
	queuePkg "github.com/jwebster45206/quest-engine/pkg/queue"
)

// Processor applies dequeued requests through the same game service the
// API handlers use, so queued and synchronous paths share one code path.
type Processor struct {
	svc    *services.GameService
	logger *slog.Logger
}

// NewProcessor creates a request processor.
func NewProcessor(svc *services.GameService, logger *slog.Logger) *Processor {
	return &Processor{
		svc:    svc,
		logger: logger,
	}
}

// Process applies one request. Unknown games are logged and dropped, not
// retried: the game may have expired while the request sat in the queue.
func (p *Processor) Process(ctx context.Context, req *queuePkg.Request) error {
	switch req.Type {
	case queuePkg.RequestTypeCommand:
		result, gs, err := p.svc.ApplyCommand(ctx, req.GameStateID, req.CommandLine)
		if err != nil {
			return fmt.Errorf("failed to apply command: %w", err)
		}
		if gs == nil {
			p.logger.Warn("Dropping command for unknown game",
				"request_id", req.RequestID,
				"game_state_id", req.GameStateID.String())
			return nil
		}
		p.logger.Info("Applied command",
			"request_id", req.RequestID,
			"game_state_id", req.GameStateID.String(),
			"type", result.Type,
			"applied", result.Applied,
			"message", result.Message)
		return nil

	case queuePkg.RequestTypeEvent:
		if req.Event == nil {
			return fmt.Errorf("event request %s carries no event", req.RequestID)
		}
		gs, err := p.svc.RecordEvent(ctx, req.GameStateID, *req.Event)
		if err != nil {
			return fmt.Errorf("failed to record event: %w", err)
		}
		if gs == nil {
			p.logger.Warn("Dropping event for unknown game",
				"request_id", req.RequestID,
				"game_state_id", req.GameStateID.String())
			return nil
		}
		p.logger.Info("Recorded event",
			"request_id", req.RequestID,
			"game_state_id", req.GameStateID.String(),
			"kind", req.Event.Kind)
		return nil

	case queuePkg.RequestTypeTimeAdvance:
		gs, err := p.svc.AdvanceTime(ctx, req.GameStateID, req.TimeDelta)
		if err != nil {
			return fmt.Errorf("failed to advance time: %w", err)
		}
		if gs == nil {
			p.logger.Warn("Dropping time advance for unknown game",
				"request_id", req.RequestID,
				"game_state_id", req.GameStateID.String())
			return nil
		}
		p.logger.Info("Advanced game time",
			"request_id", req.RequestID,
			"game_state_id", req.GameStateID.String(),
			"delta", req.TimeDelta)
		return nil

	default:
		return fmt.Errorf("unknown request type: %s", req.Type)
	}
}
