package command

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type identifies an LLM-issued structured command.
type Type string

const (
	TypeQuestUpdate    Type = "QUEST_UPDATE"
	TypeQuestStatus    Type = "QUEST_STATUS"
	TypeStateChange    Type = "STATE_CHANGE"
	TypeModeTransition Type = "MODE_TRANSITION"
	TypeMusic          Type = "MUSIC"
	TypeSetContext     Type = "SET_CONTEXT"
)

// Result is the outcome of one dispatched command. Applied is false for
// both rejections and malformed input; Message carries the exact reason.
type Result struct {
	Type    Type   `json:"type"`
	Applied bool   `json:"applied"`
	Message string `json:"message,omitempty"`
}

// Parse splits a raw command line into its type and payload. The envelope
// is `TYPE payload`, where the type token may carry a trailing colon in
// the legacy format (`QUEST_UPDATE: q1:o1:completed`).
func Parse(line string) (Type, string, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", "", fmt.Errorf("empty command line")
	}

	head, payload, _ := strings.Cut(trimmed, " ")
	head = strings.TrimSuffix(head, ":")

	switch t := Type(strings.ToUpper(head)); t {
	case TypeQuestUpdate, TypeQuestStatus, TypeStateChange,
		TypeModeTransition, TypeMusic, TypeSetContext:
		return t, strings.TrimSpace(payload), nil
	default:
		return "", "", fmt.Errorf("unknown command type %q", head)
	}
}

// StateChange is a decoded STATE_CHANGE payload. Exactly one concrete
// variant is produced per payload, selected by the attribute tag.
type StateChange interface {
	isStateChange()
}

// InventoryChange adds or removes items. The item is resolved by explicit
// stack id, then template id, then display name.
type InventoryChange struct {
	Op         string `json:"op"` // add | remove
	ItemID     string `json:"item_id,omitempty"`
	TemplateID string `json:"template_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"quantity,omitempty"`
}

// FlagChange sets a world flag.
type FlagChange struct {
	Key   string `json:"key"`
	Value any    `json:"value,omitempty"`
}

// LocationChange moves the session to a location.
type LocationChange struct {
	LocationID string `json:"location_id"`
}

// TimeChange advances the game clock.
type TimeChange struct {
	Delta float64 `json:"delta"`
}

func (InventoryChange) isStateChange() {}
func (FlagChange) isStateChange()      {}
func (LocationChange) isStateChange()  {}
func (TimeChange) isStateChange()      {}

// ParseStateChange decodes a STATE_CHANGE payload into its tagged variant.
func ParseStateChange(payload string) (StateChange, error) {
	var tag struct {
		Attribute string `json:"attribute"`
	}
	data := []byte(payload)
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("invalid STATE_CHANGE payload: %w", err)
	}

	switch tag.Attribute {
	case "inventory":
		var chg InventoryChange
		if err := json.Unmarshal(data, &chg); err != nil {
			return nil, fmt.Errorf("invalid inventory change: %w", err)
		}
		if chg.Op != "add" && chg.Op != "remove" {
			return nil, fmt.Errorf("invalid inventory op %q", chg.Op)
		}
		if chg.ItemID == "" && chg.TemplateID == "" && chg.Name == "" {
			return nil, fmt.Errorf("inventory change names no item")
		}
		return chg, nil

	case "flag":
		var chg FlagChange
		if err := json.Unmarshal(data, &chg); err != nil {
			return nil, fmt.Errorf("invalid flag change: %w", err)
		}
		if chg.Key == "" {
			return nil, fmt.Errorf("flag change has no key")
		}
		return chg, nil

	case "location":
		var chg LocationChange
		if err := json.Unmarshal(data, &chg); err != nil {
			return nil, fmt.Errorf("invalid location change: %w", err)
		}
		if chg.LocationID == "" {
			return nil, fmt.Errorf("location change has no location_id")
		}
		return chg, nil

	case "time":
		var chg TimeChange
		if err := json.Unmarshal(data, &chg); err != nil {
			return nil, fmt.Errorf("invalid time change: %w", err)
		}
		if chg.Delta <= 0 {
			return nil, fmt.Errorf("time change delta must be positive")
		}
		return chg, nil

	case "":
		return nil, fmt.Errorf("STATE_CHANGE payload has no attribute")
	default:
		return nil, fmt.Errorf("unknown STATE_CHANGE attribute %q", tag.Attribute)
	}
}
