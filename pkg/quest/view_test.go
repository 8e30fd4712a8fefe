package quest

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/pkg/event"
)

// mockView implements GameView for engine tests without pulling in the
// state package.
type mockView struct {
	id      uuid.UUID
	journal *Journal
	events  []event.Event
	time    float64
	flags   map[string]any
	items   []Item
}

func newMockView() *mockView {
	return &mockView{
		id:      uuid.New(),
		journal: &Journal{},
		flags:   make(map[string]any),
	}
}

func (v *mockView) GameID() uuid.UUID          { return v.id }
func (v *mockView) QuestJournal() *Journal     { return v.journal }
func (v *mockView) EventLog() []event.Event    { return v.events }
func (v *mockView) GameTime() float64          { return v.time }
func (v *mockView) FlagValues() map[string]any { return v.flags }
func (v *mockView) InventoryItems() []Item     { return v.items }

func (v *mockView) Record(ev event.Event) {
	ev.GameTime = v.time
	v.events = append(v.events, ev)
}

// recordDefeat appends a defeat fact the way the state package would.
func (v *mockView) recordDefeat(entityID, templateID string, tags map[string]string) event.Event {
	ev := event.Event{
		Kind:       event.KindEnemyDefeated,
		EntityID:   entityID,
		TemplateID: templateID,
		Tags:       tags,
	}
	v.Record(ev)
	return ev
}

// mockSink collects system messages.
type mockSink struct {
	messages []string
	err      error
}

func (s *mockSink) SystemMessage(ctx context.Context, gameID uuid.UUID, text string) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, text)
	return nil
}

// mockConfirmer replays a scripted yes/no reply.
type mockConfirmer struct {
	reply   string
	err     error
	prompts []string
}

func (c *mockConfirmer) Ask(ctx context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}
