package quest

import (
	"encoding/json"
	"fmt"
)

// Pack is an authored quest collection: quest definitions plus the global
// alias tables used to resolve narrative labels. Packs are loaded from
// JSON files and are immutable at runtime; sessions get their own journal
// instantiated from the pack.
type Pack struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	OpeningContext string `json:"opening_context,omitempty"`

	Quests map[string]*Quest `json:"quests"`

	// Aliases maps domain ("entities", "items", "locations") to narrative
	// label to canonical ids.
	Aliases map[string]map[string][]string `json:"aliases,omitempty"`

	// NPCAliases maps NPC display names to canonical entity ids. Merged
	// into the entities domain at resolution time.
	NPCAliases map[string][]string `json:"npc_aliases,omitempty"`
}

// NewResolver builds the global resolver from the pack's alias tables.
func (p *Pack) NewResolver() *Resolver {
	return NewResolver(p.Aliases, p.NPCAliases)
}

// NewJournal instantiates a fresh journal from the pack's quest
// definitions. Authored progress fields are reset: quests start active,
// objectives pending with no activation time.
func (p *Pack) NewJournal() (*Journal, error) {
	data, err := json.Marshal(p.Quests)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pack quests: %w", err)
	}
	var quests map[string]*Quest
	if err := json.Unmarshal(data, &quests); err != nil {
		return nil, fmt.Errorf("failed to copy pack quests: %w", err)
	}

	for _, q := range quests {
		if q == nil {
			continue
		}
		q.Status = StatusActive
		q.Abandoned = false
		for _, o := range q.Objectives {
			if o == nil {
				continue
			}
			o.Completed = false
			o.Failed = false
			o.ActivationTime = nil
		}
	}

	return &Journal{Quests: quests}, nil
}

// Validate checks pack integrity and returns human-readable findings. An
// empty slice means the pack is usable.
func (p *Pack) Validate() []string {
	var findings []string

	if p.Name == "" {
		findings = append(findings, "pack has no name")
	}
	if len(p.Quests) == 0 {
		findings = append(findings, "pack defines no quests")
	}

	for questID, q := range p.Quests {
		if questID == "" {
			findings = append(findings, "pack contains a quest with an empty id")
			continue
		}
		if q == nil {
			findings = append(findings, fmt.Sprintf("quest %s is null", questID))
			continue
		}
		if q.Title == "" {
			findings = append(findings, fmt.Sprintf("quest %s has no title", questID))
		}
		if q.Status != "" && q.Status != StatusActive && q.Status != StatusCompleted && q.Status != StatusFailed {
			findings = append(findings, fmt.Sprintf("quest %s has unknown status %q", questID, q.Status))
		}

		seen := make(map[string]bool)
		for i, o := range q.Objectives {
			if o == nil {
				findings = append(findings, fmt.Sprintf("quest %s objective %d is null", questID, i))
				continue
			}
			if o.ID == "" {
				findings = append(findings, fmt.Sprintf("quest %s objective %d has no id", questID, i))
				continue
			}
			if seen[o.ID] {
				findings = append(findings, fmt.Sprintf("quest %s has duplicate objective id %s", questID, o.ID))
			}
			seen[o.ID] = true

			if o.Condition != nil {
				findings = append(findings, validateCondition(questID, o.ID, o.Condition)...)
			}
			if o.TimeLimitS != nil && *o.TimeLimitS <= 0 {
				findings = append(findings, fmt.Sprintf("quest %s objective %s has a non-positive time limit", questID, o.ID))
			}
		}
	}

	return findings
}

func validateCondition(questID, objectiveID string, c *Condition) []string {
	if c == nil {
		return nil
	}
	if c.Kind == CondInvalid {
		return []string{fmt.Sprintf("quest %s objective %s has an uninterpretable condition node", questID, objectiveID)}
	}
	var findings []string
	for _, child := range c.Children {
		findings = append(findings, validateCondition(questID, objectiveID, child)...)
	}
	return findings
}
