package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/pkg/event"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// World holds ambient session facts that live outside the quest journal.
type World struct {
	GameTime float64 `json:"game_time"`
	Location string  `json:"location,omitempty"`
	Mode     string  `json:"mode,omitempty"` // narrative mode, e.g. "exploration", "combat"
	Music    string  `json:"music,omitempty"`
	Context  string  `json:"context,omitempty"` // freeform scene context for the narrator
}

// GameState is the full state of one game session: quest journal,
// append-only event log, inventory, flags and world facts. Gameplay facts
// enter through the Record* methods, never by appending to the log or
// flipping journal fields directly, so the quest engine always observes a
// consistent state.
type GameState struct {
	ID        uuid.UUID      `json:"id"`
	QuestPack string         `json:"quest_pack,omitempty"` // filename of the pack this session was created from
	World     World          `json:"world"`
	Flags     map[string]any `json:"flags,omitempty"`
	Journal   *quest.Journal `json:"journal,omitempty"`
	Events    *event.Log     `json:"event_log,omitempty"`
	Inventory *Inventory     `json:"inventory,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
	UpdatedAt time.Time      `json:"updated_at,omitempty"`
}

// NewGameState creates an empty session for the given quest pack filename.
func NewGameState(questPack string) *GameState {
	now := time.Now().UTC()
	return &GameState{
		ID:        uuid.New(),
		QuestPack: questPack,
		Flags:     make(map[string]any),
		Journal:   &quest.Journal{},
		Events:    &event.Log{},
		Inventory: &Inventory{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AttachEngine wires the event log so every appended fact is handed to the
// quest engine on the caller's goroutine, in append order. The context is
// held for the lifetime of the attachment.
func (gs *GameState) AttachEngine(ctx context.Context, eng *quest.Engine) {
	gs.eventLog().SetObserver(func(ev event.Event) {
		eng.ProcessEvent(ctx, gs, ev)
	})
}

// GameID implements quest.GameView.
func (gs *GameState) GameID() uuid.UUID {
	return gs.ID
}

// QuestJournal implements quest.GameView.
func (gs *GameState) QuestJournal() *quest.Journal {
	if gs.Journal == nil {
		gs.Journal = &quest.Journal{}
	}
	return gs.Journal
}

// EventLog implements quest.GameView.
func (gs *GameState) EventLog() []event.Event {
	if gs.Events == nil {
		return nil
	}
	return gs.Events.Entries
}

// GameTime implements quest.GameView.
func (gs *GameState) GameTime() float64 {
	return gs.World.GameTime
}

// FlagValues implements quest.GameView.
func (gs *GameState) FlagValues() map[string]any {
	return gs.Flags
}

// InventoryItems implements quest.GameView.
func (gs *GameState) InventoryItems() []quest.Item {
	if gs.Inventory == nil {
		return nil
	}
	items := make([]quest.Item, 0, len(gs.Inventory.Items))
	for _, it := range gs.Inventory.Items {
		if it == nil {
			continue
		}
		items = append(items, quest.Item{
			ID:         it.ID,
			TemplateID: it.TemplateID,
			Name:       it.Name,
			Quantity:   it.Quantity,
		})
	}
	return items
}

// Record appends a fact to the event log, stamped with the current game
// time. Implements quest.GameView; it never fails.
func (gs *GameState) Record(ev event.Event) {
	ev.GameTime = gs.World.GameTime
	gs.eventLog().Append(ev)
	gs.touch()
}

// AdvanceTime moves the game clock forward. Time never runs backwards;
// non-positive deltas are ignored. Time-limit sweeps are the caller's
// responsibility via the engine's ProcessTime.
func (gs *GameState) AdvanceTime(delta float64) {
	if delta <= 0 {
		return
	}
	gs.World.GameTime += delta
	gs.touch()
}

// RecordEnemyDefeated records a defeat fact.
func (gs *GameState) RecordEnemyDefeated(entityID, templateID string, tags map[string]string) {
	gs.Record(event.Event{
		Kind:       event.KindEnemyDefeated,
		EntityID:   entityID,
		TemplateID: templateID,
		Tags:       tags,
	})
}

// RecordLocationVisited records a visit and moves the session to that
// location.
func (gs *GameState) RecordLocationVisited(locationID string) {
	gs.World.Location = locationID
	gs.Record(event.Event{
		Kind:       event.KindLocationVisited,
		LocationID: locationID,
	})
}

// RecordDialogueCompleted records a finished conversation with an NPC.
func (gs *GameState) RecordDialogueCompleted(targetID string) {
	gs.Record(event.Event{
		Kind:     event.KindDialogueCompleted,
		TargetID: targetID,
	})
}

// RecordInteractionCompleted records a finished world interaction.
func (gs *GameState) RecordInteractionCompleted(targetID string) {
	gs.Record(event.Event{
		Kind:     event.KindInteractionCompleted,
		TargetID: targetID,
	})
}

// SetMode changes the narrative mode.
func (gs *GameState) SetMode(mode string) {
	gs.World.Mode = mode
	gs.touch()
}

// SetMusic changes the current music cue.
func (gs *GameState) SetMusic(cue string) {
	gs.World.Music = cue
	gs.touch()
}

// SetContext replaces the freeform scene context.
func (gs *GameState) SetContext(text string) {
	gs.World.Context = text
	gs.touch()
}

// SetFlag sets a world flag and records the change.
func (gs *GameState) SetFlag(key string, value any) {
	if gs.Flags == nil {
		gs.Flags = make(map[string]any)
	}
	gs.Flags[key] = value
	gs.Record(event.Event{
		Kind:  event.KindFlagSet,
		Key:   key,
		Value: value,
	})
}

// AddItem adds qty of an item to the inventory and records the gain.
// Returns the stack that was added to.
func (gs *GameState) AddItem(item Item, qty int) *Item {
	if gs.Inventory == nil {
		gs.Inventory = &Inventory{}
	}
	if qty <= 0 {
		qty = 1
	}
	stack := gs.Inventory.Add(item, qty)
	gs.Record(event.Event{
		Kind:   event.KindItemDelta,
		ItemID: stack.TemplateOrName(),
		Delta:  qty,
	})
	return stack
}

// RemoveItem deducts qty from the stack with the given unique id and
// records the loss. Returns the quantity actually removed.
func (gs *GameState) RemoveItem(id string, qty int) int {
	stack := gs.Inventory.GetItem(id)
	if stack == nil {
		return 0
	}
	canonical := stack.TemplateOrName()
	removed := gs.Inventory.Remove(id, qty)
	if removed > 0 {
		gs.Record(event.Event{
			Kind:   event.KindItemDelta,
			ItemID: canonical,
			Delta:  -removed,
		})
	}
	return removed
}

// DeepCopy returns an independent copy of the state via a JSON round trip.
// The event log observer is not carried over; reattach the engine on the
// copy if evaluation is needed.
func (gs *GameState) DeepCopy() (*GameState, error) {
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state: %w", err)
	}
	var out GameState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &out, nil
}

func (gs *GameState) eventLog() *event.Log {
	if gs.Events == nil {
		gs.Events = &event.Log{}
	}
	return gs.Events
}

func (gs *GameState) touch() {
	gs.UpdatedAt = time.Now().UTC()
}
