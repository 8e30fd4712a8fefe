package quest

import (
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/event"
)

// Signals is the derived, read-only snapshot of game state that the DSL
// evaluates against. It is rebuilt from scratch on every evaluation and is
// never persisted.
type Signals struct {
	Inventory map[string]int
	Defeated  []string // lower-cased candidate labels
	Visited   []string // lower-cased location ids
	Flags     map[string]any
	Time      float64
}

// InventoryCount returns the held count for a canonical item id.
func (s *Signals) InventoryCount(id string) int {
	return s.Inventory[id]
}

// WasDefeated reports whether id matches any defeated candidate,
// case-insensitively.
func (s *Signals) WasDefeated(id string) bool {
	return containsFold(s.Defeated, id)
}

// WasVisited reports whether id matches any visited location,
// case-insensitively.
func (s *Signals) WasVisited(id string) bool {
	return containsFold(s.Visited, id)
}

func containsFold(list []string, id string) bool {
	id = strings.ToLower(id)
	for _, have := range list {
		if have == id {
			return true
		}
	}
	return false
}

// BuildSignals derives a snapshot from the current inventory and the full
// event log. The log is rescanned on every call; correctness over
// performance, since logs stay small within one session.
func BuildSignals(view GameView) *Signals {
	sig := &Signals{
		Inventory: make(map[string]int),
		Flags:     make(map[string]any),
		Time:      view.GameTime(),
	}

	for _, item := range view.InventoryItems() {
		key := item.TemplateID
		if key == "" {
			key = item.Name
		}
		if key == "" {
			continue
		}
		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		sig.Inventory[key] += qty
	}

	for _, ev := range view.EventLog() {
		switch ev.Kind {
		case event.KindEnemyDefeated:
			sig.addDefeated(ev.TemplateID)
			sig.addDefeated(ev.EntityID)
			if name := ev.Tags["combat_name"]; name != "" {
				sig.addDefeated(name)
				sig.addDefeated(stripInstanceSuffix(name))
			}
		case event.KindLocationVisited:
			if ev.LocationID != "" {
				sig.Visited = append(sig.Visited, strings.ToLower(ev.LocationID))
			}
		}
	}

	for k, v := range view.FlagValues() {
		sig.Flags[k] = v
	}

	return sig
}

func (s *Signals) addDefeated(label string) {
	if label == "" {
		return
	}
	s.Defeated = append(s.Defeated, strings.ToLower(label))
}

// stripInstanceSuffix removes a trailing _<digits> instance counter so that
// spawns like "wolf_alpha_3" match a rule written for "wolf_alpha".
func stripInstanceSuffix(name string) string {
	i := strings.LastIndex(name, "_")
	if i <= 0 || i == len(name)-1 {
		return name
	}
	for _, r := range name[i+1:] {
		if r < '0' || r > '9' {
			return name
		}
	}
	return name[:i]
}
