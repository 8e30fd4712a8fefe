package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/pkg/chat"
	"github.com/jwebster45206/quest-engine/pkg/command"
	"github.com/jwebster45206/quest-engine/pkg/event"
	"github.com/jwebster45206/quest-engine/pkg/prompts"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// GameService is the shared application core behind the API handlers and
// the queue worker: it loads a game, wires the quest engine for that
// game's pack, applies one fact or command, and persists the result.
type GameService struct {
	storage      storage.Storage
	messages     quest.MessageSink
	confirmer    quest.Confirmer
	logger       *slog.Logger
	verbose      bool
	killFallback bool
}

// NewGameService creates a game service on top of the given storage.
func NewGameService(st storage.Storage, logger *slog.Logger) *GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameService{
		storage: st,
		logger:  logger,
	}
}

// WithMessageSink sets the system message sink passed to the quest engine.
// Returns the service for chaining.
func (s *GameService) WithMessageSink(sink quest.MessageSink) *GameService {
	s.messages = sink
	return s
}

// WithConfirmer sets the LLM collaborator for the kill fallback.
func (s *GameService) WithConfirmer(c quest.Confirmer) *GameService {
	s.confirmer = c
	return s
}

// WithVerbose enables per-evaluation debug logging.
func (s *GameService) WithVerbose(v bool) *GameService {
	s.verbose = v
	return s
}

// WithKillFallback enables the LLM confirmation fallback for kill
// objectives.
func (s *GameService) WithKillFallback(enabled bool) *GameService {
	s.killFallback = enabled
	return s
}

// CreateGame instantiates a new session from a quest pack filename and
// persists it.
func (s *GameService) CreateGame(ctx context.Context, packFilename string) (*state.GameState, error) {
	pack, err := s.storage.GetQuestPack(ctx, packFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to load quest pack: %w", err)
	}

	journal, err := pack.NewJournal()
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate journal: %w", err)
	}

	gs := state.NewGameState(packFilename)
	gs.Journal = journal
	gs.World.Context = pack.OpeningContext

	if err := s.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save new gamestate: %w", err)
	}

	s.logger.Info("Created game", "game_id", gs.ID, "quest_pack", packFilename)
	return gs, nil
}

// LoadGame returns a stored game, or nil when no game has that id.
func (s *GameService) LoadGame(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	return s.storage.LoadGameState(ctx, id)
}

// DeleteGame removes a stored game.
func (s *GameService) DeleteGame(ctx context.Context, id uuid.UUID) error {
	return s.storage.DeleteGameState(ctx, id)
}

// engineFor builds a quest engine for the game's pack and attaches it to
// the game's event log.
func (s *GameService) engineFor(ctx context.Context, gs *state.GameState) (*quest.Engine, error) {
	pack, err := s.storage.GetQuestPack(ctx, gs.QuestPack)
	if err != nil {
		return nil, fmt.Errorf("failed to load quest pack for game: %w", err)
	}

	eng := quest.NewEngine(pack.NewResolver(), s.logger).
		WithMessageSink(s.messages).
		WithConfirmer(s.confirmer).
		WithVerbose(s.verbose).
		WithKillFallback(s.killFallback)

	if gs.Events == nil {
		gs.Events = &event.Log{}
	}
	gs.Events.SetLogger(s.logger)
	gs.AttachEngine(ctx, eng)
	return eng, nil
}

// RecordEvent applies one gameplay fact to a game. Evaluation runs
// synchronously on the attached engine before the game is saved. Returns
// nil game when the id is unknown.
func (s *GameService) RecordEvent(ctx context.Context, id uuid.UUID, ev event.Event) (*state.GameState, error) {
	gs, err := s.storage.LoadGameState(ctx, id)
	if err != nil || gs == nil {
		return gs, err
	}
	if _, err := s.engineFor(ctx, gs); err != nil {
		return nil, err
	}

	switch ev.Kind {
	case event.KindEnemyDefeated:
		gs.RecordEnemyDefeated(ev.EntityID, ev.TemplateID, ev.Tags)

	case event.KindItemDelta:
		if err := s.applyItemDelta(gs, ev); err != nil {
			return nil, err
		}

	case event.KindLocationVisited:
		gs.RecordLocationVisited(ev.LocationID)

	case event.KindDialogueCompleted:
		gs.RecordDialogueCompleted(ev.TargetID)

	case event.KindInteractionCompleted:
		gs.RecordInteractionCompleted(ev.TargetID)

	case event.KindFlagSet:
		value := ev.Value
		if value == nil {
			value = true
		}
		gs.SetFlag(ev.Key, value)

	default:
		return nil, fmt.Errorf("unsupported event kind: %s", ev.Kind)
	}

	if err := s.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save gamestate: %w", err)
	}
	return gs, nil
}

// applyItemDelta keeps the inventory and the event log consistent for an
// externally reported item change.
func (s *GameService) applyItemDelta(gs *state.GameState, ev event.Event) error {
	if ev.ItemID == "" {
		return fmt.Errorf("item_delta event has no item_id")
	}
	switch {
	case ev.Delta > 0:
		gs.AddItem(state.Item{TemplateID: ev.ItemID}, ev.Delta)
	case ev.Delta < 0:
		if stacks := gs.Inventory.FindByTemplate(ev.ItemID); len(stacks) > 0 {
			gs.RemoveItem(stacks[0].ID, -ev.Delta)
		} else {
			// Nothing held; still record the loss as a fact.
			gs.Record(ev)
		}
	default:
		return fmt.Errorf("item_delta event has zero delta")
	}
	return nil
}

// ApplyCommand dispatches one LLM command line against a game and saves
// the result. Returns nil game when the id is unknown.
func (s *GameService) ApplyCommand(ctx context.Context, id uuid.UUID, line string) (*command.Result, *state.GameState, error) {
	gs, err := s.storage.LoadGameState(ctx, id)
	if err != nil || gs == nil {
		return nil, gs, err
	}
	eng, err := s.engineFor(ctx, gs)
	if err != nil {
		return nil, nil, err
	}

	dispatcher := command.NewDispatcher(eng, s.logger)
	result := dispatcher.Dispatch(ctx, gs, line)

	if err := s.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, nil, fmt.Errorf("failed to save gamestate: %w", err)
	}
	return &result, gs, nil
}

// NarratorPrompt builds the message array for one narrator LLM turn:
// system prompt for the game's pack, current session snapshot, and the
// player's latest input. Returns nil messages when the id is unknown.
func (s *GameService) NarratorPrompt(ctx context.Context, id uuid.UUID, userMessage string) ([]chat.ChatMessage, error) {
	gs, err := s.storage.LoadGameState(ctx, id)
	if err != nil || gs == nil {
		return nil, err
	}
	pack, err := s.storage.GetQuestPack(ctx, gs.QuestPack)
	if err != nil {
		return nil, fmt.Errorf("failed to load quest pack for game: %w", err)
	}
	return prompts.BuildMessages(gs, pack, userMessage, chat.ChatRoleUser)
}

// AdvanceTime moves a game's clock forward and sweeps objective time
// limits. Returns nil game when the id is unknown.
func (s *GameService) AdvanceTime(ctx context.Context, id uuid.UUID, delta float64) (*state.GameState, error) {
	gs, err := s.storage.LoadGameState(ctx, id)
	if err != nil || gs == nil {
		return gs, err
	}
	eng, err := s.engineFor(ctx, gs)
	if err != nil {
		return nil, err
	}

	gs.AdvanceTime(delta)
	eng.ProcessTime(ctx, gs)

	if err := s.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save gamestate: %w", err)
	}
	return gs, nil
}
