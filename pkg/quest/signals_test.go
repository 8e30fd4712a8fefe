package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/quest-engine/pkg/event"
)

func TestBuildSignalsInventory(t *testing.T) {
	v := newMockView()
	v.items = []Item{
		{ID: "a", TemplateID: "herb_red", Name: "Red Herb", Quantity: 2},
		{ID: "b", TemplateID: "herb_red", Name: "Red Herb", Quantity: 3},
		{ID: "c", Name: "Rusty Key", Quantity: 0}, // no template: keyed by name, qty defaults to 1
		{ID: "d"},                                 // no identity at all: skipped
	}

	sig := BuildSignals(v)
	assert.Equal(t, 5, sig.InventoryCount("herb_red"))
	assert.Equal(t, 1, sig.InventoryCount("Rusty Key"))
	assert.Equal(t, 0, sig.InventoryCount("missing"))
}

func TestBuildSignalsDefeated(t *testing.T) {
	v := newMockView()
	v.recordDefeat("bandit_07", "Bandit", map[string]string{"combat_name": "Bandit_Leader_3"})

	sig := BuildSignals(v)
	assert.True(t, sig.WasDefeated("bandit"))
	assert.True(t, sig.WasDefeated("bandit_07"))
	assert.True(t, sig.WasDefeated("bandit_leader_3"))
	// Trailing instance counter is stripped so rules match the base name.
	assert.True(t, sig.WasDefeated("bandit_leader"))
	assert.True(t, sig.WasDefeated("BANDIT_LEADER"))
	assert.False(t, sig.WasDefeated("dragon"))
}

func TestBuildSignalsVisitedAndFlags(t *testing.T) {
	v := newMockView()
	v.time = 42.5
	v.flags["gate_open"] = true
	v.Record(event.Event{Kind: event.KindLocationVisited, LocationID: "Old_Mill"})

	sig := BuildSignals(v)
	assert.True(t, sig.WasVisited("old_mill"))
	assert.True(t, sig.WasVisited("Old_Mill"))
	assert.False(t, sig.WasVisited("castle"))
	assert.Equal(t, 42.5, sig.Time)
	assert.Equal(t, true, sig.Flags["gate_open"])

	// The snapshot is a copy: mutating it does not touch the view.
	sig.Flags["gate_open"] = false
	assert.Equal(t, true, v.flags["gate_open"])
}

func TestStripInstanceSuffix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"wolf_alpha_3", "wolf_alpha"},
		{"wolf_alpha_12", "wolf_alpha"},
		{"wolf_alpha", "wolf_alpha"},
		{"wolf_3a", "wolf_3a"},
		{"wolf_", "wolf_"},
		{"_3", "_3"},
		{"wolf", "wolf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stripInstanceSuffix(tt.in), tt.in)
	}
}
