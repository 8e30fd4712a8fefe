package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/internal/services"
	"github.com/jwebster45206/quest-engine/internal/storage"
	"github.com/jwebster45206/quest-engine/pkg/event"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	queuePkg "github.com/jwebster45206/quest-engine/pkg/queue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProcessor(t *testing.T) (*Processor, *services.GameService, *storage.MockStorage) {
	t.Helper()
	st := storage.NewMockStorage()
	st.AddQuestPack("wolves_of_varn.json", &quest.Pack{
		Name: "Wolves of Varn",
		Quests: map[string]*quest.Quest{
			"hunt": {
				Title: "The Hunt",
				Objectives: []*quest.Objective{
					{ID: "kill_alpha", Type: quest.ObjectiveKill, TargetID: "varn_alpha"},
				},
			},
		},
	})
	svc := services.NewGameService(st, testLogger())
	return NewProcessor(svc, testLogger()), svc, st
}

func TestProcessEventRequest(t *testing.T) {
	p, svc, _ := testProcessor(t)
	ctx := context.Background()

	gs, err := svc.CreateGame(ctx, "wolves_of_varn.json")
	require.NoError(t, err)

	err = p.Process(ctx, &queuePkg.Request{
		RequestID:   uuid.NewString(),
		Type:        queuePkg.RequestTypeEvent,
		GameStateID: gs.ID,
		Event: &event.Event{
			Kind:       event.KindEnemyDefeated,
			EntityID:   "varn_alpha_1",
			TemplateID: "varn_alpha",
		},
	})
	require.NoError(t, err)

	stored, err := svc.LoadGame(ctx, gs.ID)
	require.NoError(t, err)
	assert.True(t, stored.Journal.Quest("hunt").Objective("kill_alpha").Completed)
}

func TestProcessEventRequestWithoutEvent(t *testing.T) {
	p, svc, _ := testProcessor(t)
	ctx := context.Background()

	gs, err := svc.CreateGame(ctx, "wolves_of_varn.json")
	require.NoError(t, err)

	err = p.Process(ctx, &queuePkg.Request{
		RequestID:   "req-1",
		Type:        queuePkg.RequestTypeEvent,
		GameStateID: gs.ID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carries no event")
}

func TestProcessCommandRequest(t *testing.T) {
	p, svc, _ := testProcessor(t)
	ctx := context.Background()

	gs, err := svc.CreateGame(ctx, "wolves_of_varn.json")
	require.NoError(t, err)

	err = p.Process(ctx, &queuePkg.Request{
		RequestID:   uuid.NewString(),
		Type:        queuePkg.RequestTypeCommand,
		GameStateID: gs.ID,
		CommandLine: `STATE_CHANGE {"attribute": "flag", "key": "met_the_warden"}`,
	})
	require.NoError(t, err)

	stored, err := svc.LoadGame(ctx, gs.ID)
	require.NoError(t, err)
	assert.Equal(t, true, stored.Flags["met_the_warden"])
}

func TestProcessTimeAdvanceRequest(t *testing.T) {
	p, svc, _ := testProcessor(t)
	ctx := context.Background()

	gs, err := svc.CreateGame(ctx, "wolves_of_varn.json")
	require.NoError(t, err)

	err = p.Process(ctx, &queuePkg.Request{
		RequestID:   uuid.NewString(),
		Type:        queuePkg.RequestTypeTimeAdvance,
		GameStateID: gs.ID,
		TimeDelta:   120,
	})
	require.NoError(t, err)

	stored, err := svc.LoadGame(ctx, gs.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, stored.World.GameTime)
}

func TestProcessUnknownGameIsDropped(t *testing.T) {
	p, _, _ := testProcessor(t)
	ctx := context.Background()

	// The game may have expired while the request sat in the queue:
	// every request type drops silently instead of erroring.
	for _, req := range []*queuePkg.Request{
		{RequestID: "r1", Type: queuePkg.RequestTypeCommand, GameStateID: uuid.New(), CommandLine: "MUSIC theme"},
		{RequestID: "r2", Type: queuePkg.RequestTypeEvent, GameStateID: uuid.New(), Event: &event.Event{Kind: event.KindFlagSet, Key: "x"}},
		{RequestID: "r3", Type: queuePkg.RequestTypeTimeAdvance, GameStateID: uuid.New(), TimeDelta: 10},
	} {
		assert.NoError(t, p.Process(ctx, req), req.RequestID)
	}
}

func TestProcessUnknownRequestType(t *testing.T) {
	p, _, _ := testProcessor(t)

	err := p.Process(context.Background(), &queuePkg.Request{
		RequestID: "r1",
		Type:      "replay",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown request type")
}
