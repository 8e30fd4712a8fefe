package command

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// ModeSetter receives narrative mode transitions (exploration, combat,
// dialogue). The game state satisfies this by default.
type ModeSetter interface {
	SetMode(mode string)
}

// MusicDirector receives music cue changes.
type MusicDirector interface {
	SetMusic(cue string)
}

// ContextSetter receives freeform scene context for the narrator.
type ContextSetter interface {
	SetContext(text string)
}

// Dispatcher routes LLM-issued command lines to the quest engine and to
// the state collaborators. Dispatch never panics and never returns a Go
// error for malformed LLM output; bad input yields a rejection Result.
type Dispatcher struct {
	engine *quest.Engine
	logger *slog.Logger

	mode    ModeSetter
	music   MusicDirector
	context ContextSetter
}

// NewDispatcher creates a dispatcher backed by the given quest engine.
func NewDispatcher(engine *quest.Engine, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		engine: engine,
		logger: logger,
	}
}

// WithModeSetter overrides the mode collaborator. Returns the dispatcher
// for chaining.
func (d *Dispatcher) WithModeSetter(m ModeSetter) *Dispatcher {
	d.mode = m
	return d
}

// WithMusicDirector overrides the music collaborator.
func (d *Dispatcher) WithMusicDirector(m MusicDirector) *Dispatcher {
	d.music = m
	return d
}

// WithContextSetter overrides the scene context collaborator.
func (d *Dispatcher) WithContextSetter(c ContextSetter) *Dispatcher {
	d.context = c
	return d
}

// Dispatch parses and applies one command line against a game state.
func (d *Dispatcher) Dispatch(ctx context.Context, gs *state.GameState, line string) Result {
	typ, payload, err := Parse(line)
	if err != nil {
		d.logger.Debug("Rejected command line", "error", err)
		return Result{Applied: false, Message: err.Error()}
	}

	switch typ {
	case TypeQuestUpdate:
		return d.questUpdate(ctx, gs, payload)
	case TypeQuestStatus:
		return d.questStatus(ctx, gs, payload)
	case TypeStateChange:
		return d.stateChange(ctx, gs, payload)
	case TypeModeTransition:
		return d.modeTransition(gs, payload)
	case TypeMusic:
		return d.musicCue(gs, payload)
	case TypeSetContext:
		return d.setContext(gs, payload)
	default:
		return Result{Type: typ, Applied: false, Message: fmt.Sprintf("unhandled command type %s", typ)}
	}
}

func (d *Dispatcher) questUpdate(ctx context.Context, gs *state.GameState, payload string) Result {
	var (
		upd quest.ObjectiveUpdate
		err error
	)
	if strings.HasPrefix(payload, "{") {
		upd, err = quest.ParseObjectiveUpdate([]byte(payload))
	} else {
		upd, err = quest.ParseObjectiveUpdateLegacy(payload)
	}
	if err != nil {
		return Result{Type: TypeQuestUpdate, Applied: false, Message: err.Error()}
	}
	ok, msg := d.engine.ApplyObjectiveUpdate(ctx, gs, upd)
	return Result{Type: TypeQuestUpdate, Applied: ok, Message: msg}
}

func (d *Dispatcher) questStatus(ctx context.Context, gs *state.GameState, payload string) Result {
	var (
		upd quest.QuestStatusUpdate
		err error
	)
	if strings.HasPrefix(payload, "{") {
		upd, err = quest.ParseQuestStatusUpdate([]byte(payload))
	} else {
		upd, err = quest.ParseQuestStatusUpdateLegacy(payload)
	}
	if err != nil {
		return Result{Type: TypeQuestStatus, Applied: false, Message: err.Error()}
	}
	ok, msg := d.engine.ApplyQuestStatus(ctx, gs, upd)
	return Result{Type: TypeQuestStatus, Applied: ok, Message: msg}
}

func (d *Dispatcher) stateChange(ctx context.Context, gs *state.GameState, payload string) Result {
	chg, err := ParseStateChange(payload)
	if err != nil {
		return Result{Type: TypeStateChange, Applied: false, Message: err.Error()}
	}

	switch chg := chg.(type) {
	case InventoryChange:
		return d.inventoryChange(gs, chg)

	case FlagChange:
		value := chg.Value
		if value == nil {
			value = true
		}
		gs.SetFlag(chg.Key, value)
		return Result{Type: TypeStateChange, Applied: true, Message: fmt.Sprintf("Flag %s set", chg.Key)}

	case LocationChange:
		gs.RecordLocationVisited(chg.LocationID)
		return Result{Type: TypeStateChange, Applied: true, Message: "Moved to " + chg.LocationID}

	case TimeChange:
		gs.AdvanceTime(chg.Delta)
		if d.engine != nil {
			d.engine.ProcessTime(ctx, gs)
		}
		return Result{Type: TypeStateChange, Applied: true, Message: fmt.Sprintf("Advanced time by %.1f", chg.Delta)}

	default:
		return Result{Type: TypeStateChange, Applied: false, Message: "unsupported state change"}
	}
}

// inventoryChange resolves the target item by explicit stack id, then
// template id, then an existing stack with a matching name, then name
// alone, and mutates through the game state so the item delta is recorded.
func (d *Dispatcher) inventoryChange(gs *state.GameState, chg InventoryChange) Result {
	qty := chg.Quantity
	if qty <= 0 {
		qty = 1
	}

	stack := d.resolveStack(gs, chg)

	switch chg.Op {
	case "add":
		item := state.Item{
			TemplateID: chg.TemplateID,
			Name:       chg.Name,
		}
		if stack != nil {
			item.TemplateID = stack.TemplateID
			if item.Name == "" {
				item.Name = stack.Name
			}
		}
		added := gs.AddItem(item, qty)
		return Result{
			Type:    TypeStateChange,
			Applied: true,
			Message: fmt.Sprintf("Added %d %s", qty, added.TemplateOrName()),
		}

	case "remove":
		if stack == nil {
			return Result{Type: TypeStateChange, Applied: false, Message: "Item not found in inventory"}
		}
		removed := gs.RemoveItem(stack.ID, qty)
		if removed == 0 {
			return Result{Type: TypeStateChange, Applied: false, Message: "Item not found in inventory"}
		}
		return Result{
			Type:    TypeStateChange,
			Applied: true,
			Message: fmt.Sprintf("Removed %d %s", removed, stack.TemplateOrName()),
		}

	default:
		return Result{Type: TypeStateChange, Applied: false, Message: fmt.Sprintf("invalid inventory op %q", chg.Op)}
	}
}

func (d *Dispatcher) resolveStack(gs *state.GameState, chg InventoryChange) *state.Item {
	inv := gs.Inventory
	if inv == nil {
		return nil
	}
	if chg.ItemID != "" {
		if it := inv.GetItem(chg.ItemID); it != nil {
			return it
		}
	}
	if chg.TemplateID != "" {
		if found := inv.FindByTemplate(chg.TemplateID); len(found) > 0 {
			return found[0]
		}
	}
	if chg.Name != "" {
		if found := inv.FindByName(chg.Name); len(found) > 0 {
			return found[0]
		}
	}
	return nil
}

func (d *Dispatcher) modeTransition(gs *state.GameState, payload string) Result {
	mode := unwrapField(payload, "mode")
	if mode == "" {
		return Result{Type: TypeModeTransition, Applied: false, Message: "mode transition names no mode"}
	}
	target := d.mode
	if target == nil {
		target = gs
	}
	target.SetMode(mode)
	return Result{Type: TypeModeTransition, Applied: true, Message: "Mode: " + mode}
}

func (d *Dispatcher) musicCue(gs *state.GameState, payload string) Result {
	cue := unwrapField(payload, "cue")
	if cue == "" {
		return Result{Type: TypeMusic, Applied: false, Message: "music command names no cue"}
	}
	target := d.music
	if target == nil {
		target = gs
	}
	target.SetMusic(cue)
	return Result{Type: TypeMusic, Applied: true, Message: "Music: " + cue}
}

func (d *Dispatcher) setContext(gs *state.GameState, payload string) Result {
	text := unwrapField(payload, "context")
	if text == "" {
		return Result{Type: TypeSetContext, Applied: false, Message: "context command carries no text"}
	}
	target := d.context
	if target == nil {
		target = gs
	}
	target.SetContext(text)
	return Result{Type: TypeSetContext, Applied: true, Message: "Context updated"}
}

// unwrapField accepts either a bare string payload or a single-field JSON
// object, so both `MUSIC tavern_theme` and `MUSIC {"cue":"tavern_theme"}`
// work.
func unwrapField(payload, field string) string {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return ""
	}
	if v, ok := obj[field].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
