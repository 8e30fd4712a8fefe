package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/state"
)

func TestToPromptState(t *testing.T) {
	pack := promptPack()
	gs := promptGameState(t, pack)
	gs.World.Location = "varn"
	gs.World.Mode = "exploration"
	gs.AdvanceTime(30)
	gs.AddItem(state.Item{TemplateID: "kingsfoil"}, 2)
	gs.AddItem(state.Item{Name: "Rusty Key"}, 1)
	gs.SetFlag("gate_open", true)
	gs.RecordEnemyDefeated("varn_alpha_1", "varn_alpha", nil)

	ps := ToPromptState(gs)

	assert.Equal(t, "varn", ps.Location)
	assert.Equal(t, 30.0, ps.GameTime)
	assert.Equal(t, "exploration", ps.Mode)
	assert.Equal(t, map[string]int{"kingsfoil": 2, "Rusty Key": 1}, ps.Inventory)
	assert.Equal(t, true, ps.Flags["gate_open"])

	require.Contains(t, ps.Quests, "hunt")
	q := ps.Quests["hunt"]
	assert.Equal(t, "The Hunt", q.Title)
	assert.Equal(t, "active", q.Status)
	require.Len(t, q.Objectives, 1)
	assert.Equal(t, "kill_alpha", q.Objectives[0].ID)
	assert.Equal(t, "pending", q.Objectives[0].Status)
	assert.False(t, q.Objectives[0].Optional)

	assert.Equal(t, []string{
		"gained 2 kingsfoil",
		"gained 1 Rusty Key",
		"flag gate_open = true",
		"defeated varn_alpha",
	}, ps.RecentEvents)
}

func TestToPromptStateWindowsEvents(t *testing.T) {
	pack := promptPack()
	gs := promptGameState(t, pack)

	for i := 0; i < recentEventWindow+5; i++ {
		gs.RecordLocationVisited("varn")
	}

	ps := ToPromptState(gs)
	assert.Len(t, ps.RecentEvents, recentEventWindow)
}

func TestToPromptStateEmptySession(t *testing.T) {
	gs := state.NewGameState("p.json")
	ps := ToPromptState(gs)

	assert.Empty(t, ps.Inventory)
	assert.Empty(t, ps.Quests)
	assert.Empty(t, ps.RecentEvents)
}

func TestJournalText(t *testing.T) {
	pack := promptPack()
	gs := promptGameState(t, pack)
	gs.Journal.Quest("hunt").Objectives[0].Completed = true

	text := JournalText(ToPromptState(gs))
	assert.Contains(t, text, "The Hunt [active]")
	assert.Contains(t, text, "✓ Slay the pack leader")

	assert.Empty(t, JournalText(nil))
}
