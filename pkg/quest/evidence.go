package quest

import (
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/event"
)

// Evidence is one LLM-supplied corroborating reference attached to a
// proposed update. Evidence is checked against the event log, inventory
// and flags; it is never persisted on its own.
type Evidence struct {
	Type  string `json:"type"` // defeated | item | visited | flag | dialogue | interaction
	ID    string `json:"id,omitempty"`
	Key   string `json:"key,omitempty"`
	Count int    `json:"count,omitempty"`
	Value any    `json:"value,omitempty"`
}

// VerifyEvidence cross-checks an evidence list against the game view. The
// policy is "at least one corroborating fact": the first entry that
// verifies wins. It fails closed on a missing or empty list.
func VerifyEvidence(view GameView, evidence []Evidence) (bool, string) {
	if len(evidence) == 0 {
		return false, "No evidence provided"
	}

	for _, ev := range evidence {
		if ok, reason := verifyOne(view, ev); ok {
			return true, reason
		}
	}
	return false, "No verifying evidence found"
}

func verifyOne(view GameView, ev Evidence) (bool, string) {
	switch ev.Type {
	case "defeated":
		for _, entry := range view.EventLog() {
			if entry.Kind != event.KindEnemyDefeated {
				continue
			}
			if entry.EntityID == ev.ID || entry.TemplateID == ev.ID {
				return true, fmt.Sprintf("defeat of %s is on record", ev.ID)
			}
		}

	case "item":
		need := ev.Count
		if need <= 0 {
			need = 1
		}
		have := 0
		for _, item := range view.InventoryItems() {
			if item.TemplateID == ev.ID || (item.TemplateID == "" && item.Name == ev.ID) {
				qty := item.Quantity
				if qty == 0 {
					qty = 1
				}
				have += qty
			}
		}
		if have >= need {
			return true, fmt.Sprintf("inventory holds %d of %s", have, ev.ID)
		}
		// Current inventory may have consumed the item; fall back to
		// positive deltas in the log.
		gained := 0
		for _, entry := range view.EventLog() {
			if entry.Kind == event.KindItemDelta && entry.ItemID == ev.ID && entry.Delta > 0 {
				gained += entry.Delta
			}
		}
		if gained >= need {
			return true, fmt.Sprintf("item log shows %d of %s acquired", gained, ev.ID)
		}

	case "visited":
		for _, entry := range view.EventLog() {
			if entry.Kind == event.KindLocationVisited && entry.LocationID == ev.ID {
				return true, fmt.Sprintf("visit to %s is on record", ev.ID)
			}
		}

	case "flag":
		want := ev.Value
		if want == nil {
			want = true
		}
		if got, ok := view.FlagValues()[ev.Key]; ok && flagEquals(got, want) {
			return true, fmt.Sprintf("flag %s matches", ev.Key)
		}
		for _, entry := range view.EventLog() {
			if entry.Kind == event.KindFlagSet && entry.Key == ev.Key && flagEquals(entry.Value, want) {
				return true, fmt.Sprintf("flag %s was set", ev.Key)
			}
		}

	case "dialogue":
		for _, entry := range view.EventLog() {
			if entry.Kind == event.KindDialogueCompleted && entry.TargetID == ev.ID {
				return true, fmt.Sprintf("dialogue %s is on record", ev.ID)
			}
		}

	case "interaction":
		for _, entry := range view.EventLog() {
			if entry.Kind == event.KindInteractionCompleted && entry.TargetID == ev.ID {
				return true, fmt.Sprintf("interaction %s is on record", ev.ID)
			}
		}
	}

	return false, ""
}
