package command

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// huntState builds a session with one active quest: kill varn_alpha,
// then report to the warden.
func huntState(t *testing.T) *state.GameState {
	t.Helper()
	pack := quest.Pack{
		Name: "Hunt",
		Quests: map[string]*quest.Quest{
			"hunt": {
				Title: "The Hunt",
				Objectives: []*quest.Objective{
					{
					ID:        "kill_alpha",
					Type:      quest.ObjectiveKill,
					TargetID:  "varn_alpha",
					Condition: &quest.Condition{Kind: quest.CondDefeated, Label: "varn_alpha"},
				},
					{ID: "report_back", Type: quest.ObjectiveInteract, TargetID: "warden_edda"},
				},
			},
		},
	}
	journal, err := pack.NewJournal()
	require.NoError(t, err)

	gs := state.NewGameState("hunt.json")
	gs.Journal = journal
	return gs
}

func newTestDispatcher() *Dispatcher {
	eng := quest.NewEngine(nil, testLogger())
	return NewDispatcher(eng, testLogger())
}

func TestDispatchMalformedLine(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)

	res := d.Dispatch(context.Background(), gs, "TELEPORT varn")
	assert.False(t, res.Applied)
	assert.Contains(t, res.Message, "unknown command type")

	res = d.Dispatch(context.Background(), gs, "")
	assert.False(t, res.Applied)
	assert.Equal(t, "empty command line", res.Message)
}

func TestDispatchQuestUpdateJSON(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)
	gs.RecordEnemyDefeated("varn_alpha_1", "varn_alpha", nil)

	res := d.Dispatch(context.Background(), gs,
		`QUEST_UPDATE {"quest_id": "hunt", "objective_id": "kill_alpha", "new_status": "completed", "confidence": 0.97}`)

	assert.Equal(t, TypeQuestUpdate, res.Type)
	assert.True(t, res.Applied, res.Message)
	assert.True(t, gs.Journal.Quest("hunt").Objective("kill_alpha").Completed)
}

func TestDispatchQuestUpdateLegacy(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)
	gs.RecordEnemyDefeated("varn_alpha_1", "varn_alpha", nil)

	res := d.Dispatch(context.Background(), gs, "QUEST_UPDATE: hunt:kill_alpha:completed:0.97")
	assert.True(t, res.Applied, res.Message)
}

func TestDispatchQuestUpdateRejections(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)

	res := d.Dispatch(context.Background(), gs,
		`QUEST_UPDATE {"quest_id": "ghost", "objective_id": "kill_alpha", "new_status": "completed"}`)
	assert.False(t, res.Applied)
	assert.Equal(t, "Unknown quest id: ghost", res.Message)

	// Completing a kill objective whose target was never defeated
	// contradicts the derived condition.
	res = d.Dispatch(context.Background(), gs,
		`QUEST_UPDATE {"quest_id": "hunt", "objective_id": "kill_alpha", "new_status": "completed", "confidence": 0.97}`)
	assert.False(t, res.Applied)
	assert.Equal(t, "Contradicts DSL (not satisfied)", res.Message)

	res = d.Dispatch(context.Background(), gs, "QUEST_UPDATE: hunt:kill_alpha")
	assert.False(t, res.Applied)
	assert.NotEmpty(t, res.Message)
}

func TestDispatchQuestStatus(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)

	res := d.Dispatch(context.Background(), gs,
		`QUEST_STATUS {"quest_id": "hunt", "new_status": "completed", "confidence": 0.99}`)
	assert.Equal(t, TypeQuestStatus, res.Type)
	// Mandatory objectives are still open, so the engine recomputes.
	assert.True(t, res.Applied)
	assert.Equal(t, "Quest status recomputed: active", res.Message)
	assert.Equal(t, quest.StatusActive, gs.Journal.Quest("hunt").Status)
}

func TestDispatchInventoryAdd(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)

	res := d.Dispatch(context.Background(), gs,
		`STATE_CHANGE {"attribute": "inventory", "op": "add", "template_id": "kingsfoil", "name": "Kingsfoil", "quantity": 2}`)
	assert.True(t, res.Applied)
	assert.Equal(t, "Added 2 kingsfoil", res.Message)
	assert.Equal(t, 2, gs.Inventory.Count("kingsfoil"))

	// A second add with only the display name resolves to the existing
	// stack and merges into it.
	res = d.Dispatch(context.Background(), gs,
		`STATE_CHANGE {"attribute": "inventory", "op": "add", "name": "Kingsfoil"}`)
	assert.True(t, res.Applied)
	assert.Equal(t, 3, gs.Inventory.Count("kingsfoil"))
	assert.Len(t, gs.Inventory.Items, 1)
}

func TestDispatchInventoryRemove(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)
	gs.AddItem(state.Item{TemplateID: "kingsfoil", Name: "Kingsfoil"}, 3)

	res := d.Dispatch(context.Background(), gs,
		`STATE_CHANGE {"attribute": "inventory", "op": "remove", "name": "kingsfoil", "quantity": 2}`)
	assert.True(t, res.Applied)
	assert.Equal(t, "Removed 2 kingsfoil", res.Message)
	assert.Equal(t, 1, gs.Inventory.Count("kingsfoil"))

	res = d.Dispatch(context.Background(), gs,
		`STATE_CHANGE {"attribute": "inventory", "op": "remove", "template_id": "herb_blue"}`)
	assert.False(t, res.Applied)
	assert.Equal(t, "Item not found in inventory", res.Message)
}

func TestDispatchFlagDefaultsTrue(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)

	res := d.Dispatch(context.Background(), gs,
		`STATE_CHANGE {"attribute": "flag", "key": "met_the_warden"}`)
	assert.True(t, res.Applied)
	assert.Equal(t, true, gs.Flags["met_the_warden"])

	res = d.Dispatch(context.Background(), gs,
		`STATE_CHANGE {"attribute": "flag", "key": "coins", "value": 7}`)
	assert.True(t, res.Applied)
	assert.Equal(t, 7.0, gs.Flags["coins"])
}

func TestDispatchLocation(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)

	res := d.Dispatch(context.Background(), gs,
		`STATE_CHANGE {"attribute": "location", "location_id": "varn"}`)
	assert.True(t, res.Applied)
	assert.Equal(t, "Moved to varn", res.Message)
	assert.Equal(t, "varn", gs.World.Location)
	require.Equal(t, 1, gs.Events.Len())
}

func TestDispatchTimeSweepsLimits(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)

	limit := 60.0
	start := 0.0
	q := gs.Journal.Quest("hunt")
	q.Objectives[0].TimeLimitS = &limit
	q.Objectives[0].ActivationTime = &start

	res := d.Dispatch(context.Background(), gs,
		`STATE_CHANGE {"attribute": "time", "delta": 120}`)
	assert.True(t, res.Applied)
	assert.Equal(t, "Advanced time by 120.0", res.Message)
	assert.Equal(t, 120.0, gs.World.GameTime)
	assert.True(t, q.Objective("kill_alpha").Failed)
}

func TestDispatchModeMusicContext(t *testing.T) {
	d := newTestDispatcher()
	gs := huntState(t)

	res := d.Dispatch(context.Background(), gs, `MODE_TRANSITION combat`)
	assert.True(t, res.Applied)
	assert.Equal(t, "combat", gs.World.Mode)

	res = d.Dispatch(context.Background(), gs, `MUSIC {"cue": "wolf_theme"}`)
	assert.True(t, res.Applied)
	assert.Equal(t, "wolf_theme", gs.World.Music)

	res = d.Dispatch(context.Background(), gs, `SET_CONTEXT {"context": "Night falls over Varn."}`)
	assert.True(t, res.Applied)
	assert.Equal(t, "Night falls over Varn.", gs.World.Context)

	res = d.Dispatch(context.Background(), gs, `MODE_TRANSITION`)
	assert.False(t, res.Applied)
	assert.Equal(t, "mode transition names no mode", res.Message)
}

type modeRecorder struct{ modes []string }

func (m *modeRecorder) SetMode(mode string) { m.modes = append(m.modes, mode) }

func TestDispatchModeCollaboratorOverride(t *testing.T) {
	rec := &modeRecorder{}
	d := newTestDispatcher().WithModeSetter(rec)
	gs := huntState(t)

	res := d.Dispatch(context.Background(), gs, `MODE_TRANSITION {"mode": "dialogue"}`)
	assert.True(t, res.Applied)
	assert.Equal(t, []string{"dialogue"}, rec.modes)
	// The override receives the transition instead of the game state.
	assert.Empty(t, gs.World.Mode)
}
