package quest

import (
	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/pkg/event"
)

// Item is the engine's read-only view of one inventory stack.
type Item struct {
	ID         string
	TemplateID string
	Name       string
	Quantity   int
}

// GameView is the minimal view of a game session the quest engine needs.
// The surrounding game state owns the journal, event log and inventory;
// the engine holds the view only for the duration of one call. This
// interface also keeps the state package from importing the engine.
type GameView interface {
	GameID() uuid.UUID
	QuestJournal() *Journal
	EventLog() []event.Event
	GameTime() float64
	FlagValues() map[string]any
	InventoryItems() []Item

	// Record appends a fact to the event log, stamped with the current
	// game time. It must never fail.
	Record(ev event.Event)
}
