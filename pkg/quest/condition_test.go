package quest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParseCondition(t *testing.T, raw string) *Condition {
	t.Helper()
	var c Condition
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	return &c
}

func TestConditionUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind CondKind
	}{
		{"bool literal true", `true`, CondLiteral},
		{"bool literal false", `false`, CondLiteral},
		{"all", `{"all": [true, false]}`, CondAll},
		{"any", `{"any": [true]}`, CondAny},
		{"none", `{"none": [false]}`, CondNone},
		{"inventory_has", `{"inventory_has": {"item_id": "rope", "count": 2}}`, CondInventoryHas},
		{"inventory_has no count", `{"inventory_has": {"item_id": "rope"}}`, CondInventoryHas},
		{"defeated", `{"defeated": "wolf_alpha"}`, CondDefeated},
		{"visited", `{"visited": "old_mill"}`, CondVisited},
		{"flag", `{"flag": {"key": "gate_open", "value": true}}`, CondFlag},
		{"flag no value", `{"flag": {"key": "gate_open"}}`, CondFlag},
		{"time_before", `{"time_before": 500}`, CondTimeBefore},
		{"time_after", `{"time_after": 500}`, CondTimeAfter},
		{"unknown key", `{"wibble": 1}`, CondInvalid},
		{"multi-key object", `{"defeated": "a", "visited": "b"}`, CondInvalid},
		{"empty defeated label", `{"defeated": ""}`, CondInvalid},
		{"missing item_id", `{"inventory_has": {"count": 2}}`, CondInvalid},
		{"flag without key", `{"flag": {"value": true}}`, CondInvalid},
		{"bare number", `42`, CondInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustParseCondition(t, tt.raw)
			assert.Equal(t, tt.kind, c.Kind)
		})
	}
}

func TestConditionFlagDefaultsTrue(t *testing.T) {
	c := mustParseCondition(t, `{"flag": {"key": "gate_open"}}`)
	assert.Equal(t, true, c.Value)
}

func TestConditionMarshalRoundTrip(t *testing.T) {
	raws := []string{
		`true`,
		`{"all":[{"defeated":"wolf_alpha"},{"visited":"old_mill"}]}`,
		`{"inventory_has":{"count":2,"item_id":"rope"}}`,
		`{"flag":{"key":"gate_open","value":7}}`,
		`{"time_before":500}`,
	}
	for _, raw := range raws {
		c := mustParseCondition(t, raw)
		out, err := json.Marshal(c)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}
}

func TestConditionInvalidKeepsRawBytes(t *testing.T) {
	raw := `{"wibble": {"deeply": ["nested"]}}`
	c := mustParseCondition(t, raw)
	require.Equal(t, CondInvalid, c.Kind)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestConditionEvaluate(t *testing.T) {
	sig := &Signals{
		Inventory: map[string]int{"rope": 2, "torch": 1},
		Defeated:  []string{"wolf_alpha", "bandit_3"},
		Visited:   []string{"old_mill"},
		Flags:     map[string]any{"gate_open": true, "coins": float64(7)},
		Time:      100,
	}

	tests := []struct {
		name string
		raw  string
		want Tri
	}{
		{"literal true", `true`, TriTrue},
		{"literal false", `false`, TriFalse},

		{"all satisfied", `{"all": [{"defeated": "wolf_alpha"}, {"visited": "old_mill"}]}`, TriTrue},
		{"all with false child", `{"all": [{"defeated": "wolf_alpha"}, false]}`, TriFalse},
		{"all with unknown child is false", `{"all": [true, {"wibble": 1}]}`, TriFalse},
		{"all empty", `{"all": []}`, TriTrue},

		{"any hit", `{"any": [false, {"visited": "old_mill"}]}`, TriTrue},
		{"any miss", `{"any": [false, {"visited": "nowhere"}]}`, TriFalse},
		{"any with only unknown", `{"any": [{"wibble": 1}]}`, TriFalse},
		{"any empty", `{"any": []}`, TriFalse},

		{"none satisfied", `{"none": [{"defeated": "dragon"}, false]}`, TriTrue},
		{"none with true child", `{"none": [{"defeated": "wolf_alpha"}]}`, TriFalse},
		{"none with unknown child is false", `{"none": [{"wibble": 1}]}`, TriFalse},
		{"none empty", `{"none": []}`, TriTrue},

		{"inventory enough", `{"inventory_has": {"item_id": "rope", "count": 2}}`, TriTrue},
		{"inventory short", `{"inventory_has": {"item_id": "rope", "count": 3}}`, TriFalse},
		{"inventory count defaults to one", `{"inventory_has": {"item_id": "torch"}}`, TriTrue},
		{"inventory zero count means one", `{"inventory_has": {"item_id": "torch", "count": 0}}`, TriTrue},
		{"inventory missing item", `{"inventory_has": {"item_id": "gem"}}`, TriFalse},

		{"defeated hit", `{"defeated": "wolf_alpha"}`, TriTrue},
		{"defeated case-insensitive", `{"defeated": "Wolf_Alpha"}`, TriTrue},
		{"defeated miss", `{"defeated": "dragon"}`, TriFalse},

		{"visited hit", `{"visited": "old_mill"}`, TriTrue},
		{"visited miss", `{"visited": "castle"}`, TriFalse},

		{"flag exact", `{"flag": {"key": "gate_open", "value": true}}`, TriTrue},
		{"flag default true", `{"flag": {"key": "gate_open"}}`, TriTrue},
		{"flag value mismatch", `{"flag": {"key": "gate_open", "value": false}}`, TriFalse},
		{"flag missing key", `{"flag": {"key": "unset"}}`, TriFalse},
		{"flag numeric equality", `{"flag": {"key": "coins", "value": 7}}`, TriTrue},

		{"time_before strict", `{"time_before": 100}`, TriFalse},
		{"time_before ok", `{"time_before": 101}`, TriTrue},
		{"time_after strict", `{"time_after": 100}`, TriFalse},
		{"time_after ok", `{"time_after": 99}`, TriTrue},

		{"invalid node is unknown", `{"wibble": 1}`, TriUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := mustParseCondition(t, tt.raw)
			assert.Equal(t, tt.want, c.Evaluate(sig, IdentityResolve))
		})
	}
}

func TestConditionEvaluateIsPure(t *testing.T) {
	sig := &Signals{
		Inventory: map[string]int{"rope": 2},
		Flags:     map[string]any{},
	}
	c := mustParseCondition(t, `{"inventory_has": {"item_id": "rope", "count": 2}}`)

	first := c.Evaluate(sig, IdentityResolve)
	second := c.Evaluate(sig, IdentityResolve)
	assert.Equal(t, first, second)
	assert.Equal(t, TriTrue, first)
}

func TestConditionEvaluateWithAliases(t *testing.T) {
	sig := &Signals{
		Inventory: map[string]int{"herb_red": 2, "herb_white": 1},
		Defeated:  []string{"wolf_pack_leader"},
		Flags:     map[string]any{},
	}
	resolver := NewResolver(map[string]map[string][]string{
		"items":    {"healing herbs": {"herb_red", "herb_white"}},
		"entities": {"the alpha": {"wolf_pack_leader"}},
	}, nil)

	// Counts sum across every id the label resolves to.
	c := mustParseCondition(t, `{"inventory_has": {"item_id": "healing herbs", "count": 3}}`)
	assert.Equal(t, TriTrue, c.Evaluate(sig, resolver.Base()))

	c = mustParseCondition(t, `{"defeated": "the alpha"}`)
	assert.Equal(t, TriTrue, c.Evaluate(sig, resolver.Base()))
}

func TestConditionEvaluateNilInputs(t *testing.T) {
	c := mustParseCondition(t, `true`)
	assert.Equal(t, TriUnknown, c.Evaluate(nil, IdentityResolve))

	var nilCond *Condition
	assert.Equal(t, TriUnknown, nilCond.Evaluate(&Signals{}, IdentityResolve))

	// nil resolver falls back to identity
	sig := &Signals{Defeated: []string{"wolf"}, Flags: map[string]any{}}
	c = mustParseCondition(t, `{"defeated": "wolf"}`)
	assert.Equal(t, TriTrue, c.Evaluate(sig, nil))
}

func TestConditionString(t *testing.T) {
	c := mustParseCondition(t, `{"all": [{"defeated": "wolf"}, {"flag": {"key": "done"}}]}`)
	assert.Equal(t, "all(defeated(wolf), flag(done))", c.String())
}
