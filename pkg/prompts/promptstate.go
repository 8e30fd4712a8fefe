package prompts

import (
	"fmt"
	"sort"

	"github.com/jwebster45206/quest-engine/pkg/event"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// recentEventWindow bounds how much of the event log is replayed into the
// prompt. The journal already reflects everything older.
const recentEventWindow = 10

// PromptState is the reduced session snapshot handed to the narrator LLM.
// It carries canonical ids only; the full event log and timestamps stay
// server-side.
type PromptState struct {
	Location string         `json:"location,omitempty"`
	GameTime float64        `json:"game_time"`
	Mode     string         `json:"mode,omitempty"`
	Context  string         `json:"context,omitempty"`
	Flags    map[string]any `json:"flags,omitempty"`

	// Inventory maps item template id (or display name for untyped items)
	// to held quantity.
	Inventory map[string]int `json:"inventory,omitempty"`

	Quests map[string]PromptQuest `json:"quests,omitempty"`

	// RecentEvents are short summaries of the newest log entries, oldest
	// first.
	RecentEvents []string `json:"recent_events,omitempty"`
}

// PromptQuest is one journal entry in prompt form.
type PromptQuest struct {
	Title      string            `json:"title,omitempty"`
	Status     string            `json:"status"`
	Abandoned  bool              `json:"abandoned,omitempty"`
	Objectives []PromptObjective `json:"objectives,omitempty"`
}

// PromptObjective is one objective in prompt form.
type PromptObjective struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"` // pending | completed | failed
	Optional    bool   `json:"optional,omitempty"`
}

// ToPromptState reduces a game state to its prompt form.
func ToPromptState(gs *state.GameState) *PromptState {
	ps := &PromptState{
		Location: gs.World.Location,
		GameTime: gs.World.GameTime,
		Mode:     gs.World.Mode,
		Context:  gs.World.Context,
		Flags:    gs.Flags,
	}

	if items := gs.InventoryItems(); len(items) > 0 {
		ps.Inventory = make(map[string]int, len(items))
		for _, it := range items {
			key := it.TemplateID
			if key == "" {
				key = it.Name
			}
			if key == "" {
				continue
			}
			qty := it.Quantity
			if qty <= 0 {
				qty = 1
			}
			ps.Inventory[key] += qty
		}
	}

	if gs.Journal != nil && len(gs.Journal.Quests) > 0 {
		ps.Quests = make(map[string]PromptQuest, len(gs.Journal.Quests))
		for id, q := range gs.Journal.Quests {
			if q == nil {
				continue
			}
			pq := PromptQuest{
				Title:     q.Title,
				Status:    string(q.Status),
				Abandoned: q.Abandoned,
			}
			for _, o := range q.Objectives {
				if o == nil {
					continue
				}
				pq.Objectives = append(pq.Objectives, PromptObjective{
					ID:          o.ID,
					Description: o.Description,
					Status:      objectiveStatus(o.Completed, o.Failed),
					Optional:    !o.IsMandatory(),
				})
			}
			ps.Quests[id] = pq
		}
	}

	entries := gs.EventLog()
	start := len(entries) - recentEventWindow
	if start < 0 {
		start = 0
	}
	for _, ev := range entries[start:] {
		ps.RecentEvents = append(ps.RecentEvents, summarizeEvent(ev))
	}

	return ps
}

func objectiveStatus(completed, failed bool) string {
	switch {
	case completed:
		return "completed"
	case failed:
		return "failed"
	default:
		return "pending"
	}
}

// summarizeEvent renders one log entry as a short line for the prompt.
func summarizeEvent(ev event.Event) string {
	switch ev.Kind {
	case event.KindEnemyDefeated:
		name := ev.TemplateID
		if name == "" {
			name = ev.EntityID
		}
		return "defeated " + name
	case event.KindItemDelta:
		if ev.Delta < 0 {
			return fmt.Sprintf("lost %d %s", -ev.Delta, ev.ItemID)
		}
		return fmt.Sprintf("gained %d %s", ev.Delta, ev.ItemID)
	case event.KindLocationVisited:
		return "visited " + ev.LocationID
	case event.KindDialogueCompleted:
		return "spoke with " + ev.TargetID
	case event.KindInteractionCompleted:
		return "interacted with " + ev.TargetID
	case event.KindFlagSet:
		return fmt.Sprintf("flag %s = %v", ev.Key, ev.Value)
	case event.KindObjectiveStatusChange:
		return fmt.Sprintf("objective %s:%s %s", ev.QuestID, ev.ObjectiveID, ev.Status)
	case event.KindQuestStatusChange:
		return fmt.Sprintf("quest %s %s", ev.QuestID, ev.Status)
	default:
		return string(ev.Kind)
	}
}

// sortedQuestIDs returns journal quest ids in stable order, for callers
// that render quests as text.
func sortedQuestIDs(ps *PromptState) []string {
	ids := make([]string, 0, len(ps.Quests))
	for id := range ps.Quests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
