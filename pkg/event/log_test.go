package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAppendAndObserver(t *testing.T) {
	l := &Log{}
	var seen []Event
	l.SetObserver(func(ev Event) {
		seen = append(seen, ev)
	})

	l.Append(Event{Kind: KindEnemyDefeated, EntityID: "wolf_01"})
	l.Append(Event{Kind: KindLocationVisited, LocationID: "den"})

	require.Equal(t, 2, l.Len())
	require.Len(t, seen, 2)
	assert.Equal(t, KindEnemyDefeated, seen[0].Kind)
	assert.Equal(t, KindLocationVisited, seen[1].Kind)
	// Observer sees events in append order.
	assert.Equal(t, l.Entries[0], seen[0])
}

func TestLogAppendWithoutObserver(t *testing.T) {
	l := &Log{}
	l.Append(Event{Kind: KindFlagSet, Key: "x", Value: true})
	assert.Equal(t, 1, l.Len())
}

func TestLogObserverPanicContained(t *testing.T) {
	l := &Log{}
	l.SetObserver(func(Event) {
		panic("bad quest rule")
	})

	assert.NotPanics(t, func() {
		l.Append(Event{Kind: KindItemDelta, ItemID: "rope", Delta: 1})
	})
	// The append itself still landed.
	assert.Equal(t, 1, l.Len())

	assert.NotPanics(t, func() {
		l.Append(Event{Kind: KindItemDelta, ItemID: "rope", Delta: 1})
	})
	assert.Equal(t, 2, l.Len())
}

func TestLogNilReceiver(t *testing.T) {
	var l *Log
	assert.NotPanics(t, func() {
		l.Append(Event{Kind: KindFlagSet})
	})
	assert.Equal(t, 0, l.Len())
}
