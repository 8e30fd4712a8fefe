package state

import (
	"strings"

	"github.com/google/uuid"
)

// Item is one inventory stack. TemplateID is the canonical item id shared
// by all instances of the same kind; ID is unique per stack.
type Item struct {
	ID         string `json:"id"`
	TemplateID string `json:"template_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Quantity   int    `json:"quantity"`
}

// TemplateOrName returns the canonical id used for quest evaluation and
// event recording: the template id, or the name when no template is set.
func (it *Item) TemplateOrName() string {
	if it.TemplateID != "" {
		return it.TemplateID
	}
	return it.Name
}

// Inventory is the set of item stacks a session holds.
type Inventory struct {
	Items []*Item `json:"items,omitempty"`
}

// GetItem returns the stack with the given unique id, or nil.
func (inv *Inventory) GetItem(id string) *Item {
	if inv == nil {
		return nil
	}
	for _, it := range inv.Items {
		if it != nil && it.ID == id {
			return it
		}
	}
	return nil
}

// FindByTemplate returns all stacks of the given template id.
func (inv *Inventory) FindByTemplate(templateID string) []*Item {
	if inv == nil {
		return nil
	}
	var found []*Item
	for _, it := range inv.Items {
		if it != nil && it.TemplateID == templateID {
			found = append(found, it)
		}
	}
	return found
}

// FindByName returns all stacks whose display name matches,
// case-insensitively.
func (inv *Inventory) FindByName(name string) []*Item {
	if inv == nil {
		return nil
	}
	var found []*Item
	for _, it := range inv.Items {
		if it != nil && strings.EqualFold(it.Name, name) {
			found = append(found, it)
		}
	}
	return found
}

// Count returns the total quantity held across all stacks of the given
// template id. Stacks with a zero quantity count as one.
func (inv *Inventory) Count(templateID string) int {
	total := 0
	for _, it := range inv.FindByTemplate(templateID) {
		qty := it.Quantity
		if qty == 0 {
			qty = 1
		}
		total += qty
	}
	return total
}

// Add merges qty into an existing stack of the same template id, or
// creates a new stack. New stacks get a generated unique id. Returns the
// stack that was added to.
func (inv *Inventory) Add(item Item, qty int) *Item {
	if qty <= 0 {
		qty = 1
	}
	if item.TemplateID != "" {
		for _, it := range inv.Items {
			if it != nil && it.TemplateID == item.TemplateID {
				it.Quantity += qty
				return it
			}
		}
	}
	stack := &Item{
		ID:         item.ID,
		TemplateID: item.TemplateID,
		Name:       item.Name,
		Quantity:   qty,
	}
	if stack.ID == "" {
		stack.ID = uuid.NewString()
	}
	inv.Items = append(inv.Items, stack)
	return stack
}

// Remove deducts qty from the stack with the given unique id, deleting the
// stack when it runs empty. Returns the quantity actually removed.
func (inv *Inventory) Remove(id string, qty int) int {
	if inv == nil || qty <= 0 {
		return 0
	}
	for i, it := range inv.Items {
		if it == nil || it.ID != id {
			continue
		}
		have := it.Quantity
		if have == 0 {
			have = 1
		}
		removed := qty
		if removed > have {
			removed = have
		}
		it.Quantity = have - removed
		if it.Quantity <= 0 {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
		}
		return removed
	}
	return 0
}
