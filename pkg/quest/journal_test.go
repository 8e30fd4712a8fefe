package quest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectiveTerminalStates(t *testing.T) {
	o := &Objective{ID: "x"}
	assert.False(t, o.Terminal())

	assert.True(t, o.MarkCompleted())
	assert.True(t, o.Terminal())
	assert.True(t, o.Completed)
	assert.False(t, o.Failed)

	// Terminal states are sticky: no further transition mutates.
	assert.False(t, o.MarkFailed())
	assert.False(t, o.MarkCompleted())
	assert.True(t, o.Completed)
	assert.False(t, o.Failed)

	o2 := &Objective{ID: "y"}
	assert.True(t, o2.MarkFailed())
	assert.False(t, o2.MarkCompleted())
	assert.False(t, o2.Completed)
	assert.True(t, o2.Failed)
}

func TestObjectiveIsMandatory(t *testing.T) {
	assert.True(t, (&Objective{}).IsMandatory())
	assert.True(t, (&Objective{Mandatory: boolPtr(true)}).IsMandatory())
	assert.False(t, (&Objective{Mandatory: boolPtr(false)}).IsMandatory())
}

func TestJournalLookups(t *testing.T) {
	var nilJournal *Journal
	assert.Nil(t, nilJournal.Quest("x"))
	assert.Equal(t, 0, nilJournal.Len())

	j := &Journal{}
	assert.Equal(t, 0, j.Len())

	q := &Quest{Objectives: []*Objective{{ID: "a"}, nil, {ID: "b"}}}
	j.Add("hunt", q)
	assert.Equal(t, 1, j.Len())
	assert.Same(t, q, j.Quest("hunt"))
	assert.Nil(t, j.Quest("missing"))

	assert.Equal(t, "b", q.Objective("b").ID)
	assert.Nil(t, q.Objective("missing"))
}
