package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		typ     Type
		payload string
		wantErr string
	}{
		{
			name:    "json payload",
			line:    `QUEST_UPDATE {"quest_id": "q1"}`,
			typ:     TypeQuestUpdate,
			payload: `{"quest_id": "q1"}`,
		},
		{
			name:    "legacy trailing colon",
			line:    "QUEST_UPDATE: wolves:cull_the_pack:completed",
			typ:     TypeQuestUpdate,
			payload: "wolves:cull_the_pack:completed",
		},
		{
			name:    "case insensitive type",
			line:    "quest_status q1:completed:0.97",
			typ:     TypeQuestStatus,
			payload: "q1:completed:0.97",
		},
		{
			name:    "surrounding whitespace",
			line:    "  MUSIC   tavern_theme  ",
			typ:     TypeMusic,
			payload: "tavern_theme",
		},
		{
			name:    "type without payload",
			line:    "SET_CONTEXT",
			typ:     TypeSetContext,
			payload: "",
		},
		{
			name:    "empty line",
			line:    "   ",
			wantErr: "empty command line",
		},
		{
			name:    "unknown type",
			line:    "TELEPORT somewhere",
			wantErr: `unknown command type "TELEPORT"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typ, payload, err := Parse(tt.line)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.typ, typ)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestParseStateChange(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    StateChange
		wantErr string
	}{
		{
			name:    "inventory add",
			payload: `{"attribute": "inventory", "op": "add", "template_id": "kingsfoil", "quantity": 2}`,
			want:    InventoryChange{Op: "add", TemplateID: "kingsfoil", Quantity: 2},
		},
		{
			name:    "inventory remove by name",
			payload: `{"attribute": "inventory", "op": "remove", "name": "Rusty Key"}`,
			want:    InventoryChange{Op: "remove", Name: "Rusty Key"},
		},
		{
			name:    "inventory bad op",
			payload: `{"attribute": "inventory", "op": "steal", "name": "coin"}`,
			wantErr: `invalid inventory op "steal"`,
		},
		{
			name:    "inventory names no item",
			payload: `{"attribute": "inventory", "op": "add"}`,
			wantErr: "inventory change names no item",
		},
		{
			name:    "flag with value",
			payload: `{"attribute": "flag", "key": "gate_open", "value": false}`,
			want:    FlagChange{Key: "gate_open", Value: false},
		},
		{
			name:    "flag without key",
			payload: `{"attribute": "flag", "value": true}`,
			wantErr: "flag change has no key",
		},
		{
			name:    "location",
			payload: `{"attribute": "location", "location_id": "varn"}`,
			want:    LocationChange{LocationID: "varn"},
		},
		{
			name:    "location without id",
			payload: `{"attribute": "location"}`,
			wantErr: "location change has no location_id",
		},
		{
			name:    "time",
			payload: `{"attribute": "time", "delta": 120}`,
			want:    TimeChange{Delta: 120},
		},
		{
			name:    "time zero delta",
			payload: `{"attribute": "time", "delta": 0}`,
			wantErr: "time change delta must be positive",
		},
		{
			name:    "time negative delta",
			payload: `{"attribute": "time", "delta": -5}`,
			wantErr: "time change delta must be positive",
		},
		{
			name:    "missing attribute",
			payload: `{"op": "add", "name": "coin"}`,
			wantErr: "STATE_CHANGE payload has no attribute",
		},
		{
			name:    "unknown attribute",
			payload: `{"attribute": "weather"}`,
			wantErr: `unknown STATE_CHANGE attribute "weather"`,
		},
		{
			name:    "not json",
			payload: `inventory add rope`,
			wantErr: "invalid STATE_CHANGE payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStateChange(tt.payload)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnwrapField(t *testing.T) {
	assert.Equal(t, "tavern_theme", unwrapField("tavern_theme", "cue"))
	assert.Equal(t, "tavern_theme", unwrapField(`{"cue": "tavern_theme"}`, "cue"))
	assert.Equal(t, "", unwrapField(`{"mode": "combat"}`, "cue"))
	assert.Equal(t, "", unwrapField(`{broken`, "cue"))
	assert.Equal(t, "combat", unwrapField("  combat  ", "mode"))
}
