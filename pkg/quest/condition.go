package quest

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Tri is the three-valued result of condition evaluation. Unknown means the
// node could not be decided (malformed input, unresolvable data); ambiguity
// never triggers completion.
type Tri int

const (
	TriFalse Tri = iota
	TriTrue
	TriUnknown
)

// CondKind discriminates the condition sum type.
type CondKind string

const (
	CondLiteral      CondKind = "literal"
	CondAll          CondKind = "all"
	CondAny          CondKind = "any"
	CondNone         CondKind = "none"
	CondInventoryHas CondKind = "inventory_has"
	CondDefeated     CondKind = "defeated"
	CondVisited      CondKind = "visited"
	CondFlag         CondKind = "flag"
	CondTimeBefore   CondKind = "time_before"
	CondTimeAfter    CondKind = "time_after"
	CondInvalid      CondKind = "invalid"
)

// Condition is one node of the boolean condition DSL. The JSON wire format
// is produced by an external LLM and by authored quest packs, so parsing is
// defensive: nodes that cannot be interpreted become CondInvalid and
// evaluate to Unknown rather than failing the whole document.
type Condition struct {
	Kind     CondKind
	Literal  bool
	Children []*Condition

	// inventory_has
	ItemID string
	Count  int

	// defeated / visited
	Label string

	// flag
	Key   string
	Value any

	// time_before / time_after
	Time float64

	raw json.RawMessage // original bytes of nodes we could not interpret
}

// ResolveFunc maps a narrative label within a domain ("entities", "items",
// "locations") to one or more canonical ids. Implementations never return
// an empty slice; the label itself is the identity fallback.
type ResolveFunc func(domain, label string) []string

// IdentityResolve is the no-alias ResolveFunc.
func IdentityResolve(domain, label string) []string {
	return []string{label}
}

// UnmarshalJSON parses a DSL node. Accepted forms are a bare bool and a
// single-key object; anything else yields a CondInvalid node that keeps the
// raw bytes for round-tripping.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		c.Kind = CondLiteral
		c.Literal = b
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || len(obj) != 1 {
		c.Kind = CondInvalid
		c.raw = append(json.RawMessage(nil), data...)
		return nil
	}

	for key, val := range obj {
		c.parseNode(key, val, data)
	}
	return nil
}

func (c *Condition) parseNode(key string, val json.RawMessage, data []byte) {
	invalid := func() {
		c.Kind = CondInvalid
		c.raw = append(json.RawMessage(nil), data...)
	}

	switch key {
	case "all", "any", "none":
		var children []*Condition
		if err := json.Unmarshal(val, &children); err != nil {
			invalid()
			return
		}
		c.Kind = CondKind(key)
		c.Children = children

	case "inventory_has":
		var body struct {
			ItemID string `json:"item_id"`
			Count  *int   `json:"count"`
		}
		if err := json.Unmarshal(val, &body); err != nil || body.ItemID == "" {
			invalid()
			return
		}
		c.Kind = CondInventoryHas
		c.ItemID = body.ItemID
		if body.Count != nil {
			c.Count = *body.Count
		}

	case "defeated", "visited":
		var label string
		if err := json.Unmarshal(val, &label); err != nil || label == "" {
			invalid()
			return
		}
		c.Kind = CondKind(key)
		c.Label = label

	case "flag":
		var body struct {
			Key   string          `json:"key"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(val, &body); err != nil || body.Key == "" {
			invalid()
			return
		}
		c.Kind = CondFlag
		c.Key = body.Key
		if body.Value == nil {
			c.Value = true
		} else if err := json.Unmarshal(body.Value, &c.Value); err != nil {
			invalid()
			return
		}

	case "time_before", "time_after":
		var t float64
		if err := json.Unmarshal(val, &t); err != nil {
			invalid()
			return
		}
		c.Kind = CondKind(key)
		c.Time = t

	default:
		invalid()
	}
}

// MarshalJSON writes the node back in its wire form.
func (c *Condition) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CondLiteral:
		return json.Marshal(c.Literal)
	case CondAll, CondAny, CondNone:
		return json.Marshal(map[string][]*Condition{string(c.Kind): c.Children})
	case CondInventoryHas:
		body := map[string]any{"item_id": c.ItemID}
		if c.Count != 0 {
			body["count"] = c.Count
		}
		return json.Marshal(map[string]any{"inventory_has": body})
	case CondDefeated, CondVisited:
		return json.Marshal(map[string]string{string(c.Kind): c.Label})
	case CondFlag:
		return json.Marshal(map[string]any{"flag": map[string]any{"key": c.Key, "value": c.Value}})
	case CondTimeBefore, CondTimeAfter:
		return json.Marshal(map[string]float64{string(c.Kind): c.Time})
	default:
		if c.raw != nil {
			return c.raw, nil
		}
		return []byte("null"), nil
	}
}

// Evaluate walks the condition tree against a signals snapshot. The resolve
// func supplies alias expansion; pass IdentityResolve for quest-unaware
// evaluation. Evaluation is a pure function of its inputs.
func (c *Condition) Evaluate(sig *Signals, resolve ResolveFunc) Tri {
	if c == nil || sig == nil {
		return TriUnknown
	}
	if resolve == nil {
		resolve = IdentityResolve
	}

	switch c.Kind {
	case CondLiteral:
		return triOf(c.Literal)

	case CondAll:
		// Every child must be exactly True; Unknown children make the
		// aggregate False, not Unknown.
		for _, child := range c.Children {
			if child.Evaluate(sig, resolve) != TriTrue {
				return TriFalse
			}
		}
		return TriTrue

	case CondAny:
		for _, child := range c.Children {
			if child.Evaluate(sig, resolve) == TriTrue {
				return TriTrue
			}
		}
		return TriFalse

	case CondNone:
		for _, child := range c.Children {
			if child.Evaluate(sig, resolve) != TriFalse {
				return TriFalse
			}
		}
		return TriTrue

	case CondInventoryHas:
		need := c.Count
		if need <= 0 {
			need = 1
		}
		have := 0
		for _, id := range resolve("items", c.ItemID) {
			have += sig.InventoryCount(id)
		}
		return triOf(have >= need)

	case CondDefeated:
		for _, id := range resolve("entities", c.Label) {
			if sig.WasDefeated(id) {
				return TriTrue
			}
		}
		return TriFalse

	case CondVisited:
		for _, id := range resolve("locations", c.Label) {
			if sig.WasVisited(id) {
				return TriTrue
			}
		}
		return TriFalse

	case CondFlag:
		got, ok := sig.Flags[c.Key]
		if !ok {
			return TriFalse
		}
		return triOf(flagEquals(got, c.Value))

	case CondTimeBefore:
		return triOf(sig.Time < c.Time)

	case CondTimeAfter:
		return triOf(sig.Time > c.Time)

	default:
		return TriUnknown
	}
}

func triOf(b bool) Tri {
	if b {
		return TriTrue
	}
	return TriFalse
}

// flagEquals compares flag values loosely enough to survive JSON decoding:
// all numeric types compare by value, everything else by equality.
func flagEquals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, ok := toFloat64(a); ok {
		bf, bok := toFloat64(b)
		return bok && af == bf
	}
	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if ra.Type().Comparable() && rb.Type().Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// String renders a compact description of the node for log output.
func (c *Condition) String() string {
	if c == nil {
		return "<nil>"
	}
	switch c.Kind {
	case CondLiteral:
		if c.Literal {
			return "true"
		}
		return "false"
	case CondAll, CondAny, CondNone:
		parts := make([]string, 0, len(c.Children))
		for _, child := range c.Children {
			parts = append(parts, child.String())
		}
		return string(c.Kind) + "(" + strings.Join(parts, ", ") + ")"
	case CondInventoryHas:
		return "inventory_has(" + c.ItemID + ")"
	case CondDefeated, CondVisited:
		return string(c.Kind) + "(" + c.Label + ")"
	case CondFlag:
		return "flag(" + c.Key + ")"
	case CondTimeBefore, CondTimeAfter:
		return string(c.Kind)
	default:
		return "invalid"
	}
}
