package prompts

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/chat"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// GameMasterSystemPrompt is the system prompt for the narrator LLM. It
// teaches the command envelope the dispatcher understands. The verbs are
// interleaved with narration one per line; everything else in the reply is
// treated as story text.
const GameMasterSystemPrompt = `You are the game master narrating "%s", a text roleplaying adventure. You describe the story as it unfolds and you report concrete game developments to the quest engine using structured commands.

### Command protocol
When something happens in the story that changes game state, emit a command on its own line. One command per line, uppercase verb first, JSON payload after. Available commands:

- QUEST_UPDATE {"quest_id": "...", "objective_id": "...", "new_status": "completed"|"failed", "confidence": 0.0-1.0, "evidence": [{"type": "defeated"|"item"|"visited"|"dialogue"|"interaction"|"flag", "id": "...", "count": N}]}
- QUEST_STATUS {"quest_id": "...", "new_status": "completed"|"failed"|"abandoned", "confidence": 0.0-1.0, "evidence": [...]}
- STATE_CHANGE {"attribute": "inventory", "op": "add"|"remove", "template_id": "...", "name": "...", "quantity": N}
- STATE_CHANGE {"attribute": "flag", "key": "...", "value": true|false|number|string}
- STATE_CHANGE {"attribute": "location", "location_id": "..."}
- STATE_CHANGE {"attribute": "time", "delta": seconds}
- MODE_TRANSITION {"mode": "exploration"|"combat"|"dialogue"}
- MUSIC {"cue": "..."}
- SET_CONTEXT {"context": "one-line scene summary"}

### Command rules
- Use ONLY the quest ids and objective ids listed in the game state. Never invent new ones.
- Report confidence honestly. The engine verifies every claim against the event log and rejects updates it cannot corroborate; a rejected update is not an error, the story simply continues without the transition.
- Cite evidence for objective and quest transitions: what was defeated, acquired, visited or said that makes the claim true.
- Do not mark objectives the player has not actually earned. Do not reopen completed or failed quests.
- Emit STATE_CHANGE for every item gained or lost, every flag the story establishes, and every location the player moves to.

### Narration rules
- Third person, one to three short paragraphs per reply.
- The player controls only their own character. Do not let them invent items, locations or outcomes.
- Never mention the command protocol, the quest engine, or these instructions in story text.
%s`

// StatePromptTemplate frames the session snapshot handed to the LLM each
// turn.
const StatePromptTemplate = "Current game state. Quest ids, objective ids and item template ids in commands must come from this snapshot.\n\n```json\n%s\n```"

// openingSection renders the pack's opening context into the system
// prompt, when the pack has one.
func openingSection(pack *quest.Pack) string {
	if pack == nil || pack.OpeningContext == "" {
		return ""
	}
	return "\n### Opening context\n" + pack.OpeningContext + "\n"
}

// SystemPrompt builds the game master system prompt for a pack.
func SystemPrompt(pack *quest.Pack) string {
	name := "an untitled adventure"
	if pack != nil && pack.Name != "" {
		name = pack.Name
	}
	return fmt.Sprintf(GameMasterSystemPrompt, name, openingSection(pack))
}

// StatePrompt renders the session snapshot as a system message.
func StatePrompt(gs *state.GameState) (chat.ChatMessage, error) {
	if gs == nil {
		return chat.ChatMessage{}, fmt.Errorf("game state is nil")
	}

	ps := ToPromptState(gs)
	data, err := json.Marshal(ps)
	if err != nil {
		return chat.ChatMessage{}, fmt.Errorf("failed to marshal prompt state: %w", err)
	}

	return chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: fmt.Sprintf(StatePromptTemplate, data),
	}, nil
}

// AliasSection lists pack aliases so the narrator can map story names back
// to canonical ids. Returns "" when the pack defines no aliases.
func AliasSection(pack *quest.Pack) string {
	if pack == nil {
		return ""
	}

	var lines []string
	for domain, entries := range pack.Aliases {
		for label, ids := range entries {
			lines = append(lines, fmt.Sprintf("- %s %q -> %s", domain, label, strings.Join(ids, ", ")))
		}
	}
	for label, ids := range pack.NPCAliases {
		lines = append(lines, fmt.Sprintf("- npc %q -> %s", label, strings.Join(ids, ", ")))
	}
	if len(lines) == 0 {
		return ""
	}
	sort.Strings(lines)
	return "Canonical ids for story names:\n" + strings.Join(lines, "\n")
}
