package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/chat"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// Builder assembles the message array for one narrator turn: the game
// master system prompt, the session snapshot, and optionally the player's
// latest input.
type Builder struct {
	gs          *state.GameState
	pack        *quest.Pack
	userMessage string
	userRole    string
}

// New creates an empty prompt builder.
func New() *Builder {
	return &Builder{}
}

// WithGameState sets the session to snapshot.
func (b *Builder) WithGameState(gs *state.GameState) *Builder {
	b.gs = gs
	return b
}

// WithPack sets the quest pack the session was created from.
func (b *Builder) WithPack(pack *quest.Pack) *Builder {
	b.pack = pack
	return b
}

// WithUserMessage sets the player's latest input. Empty means a
// narration-only turn.
func (b *Builder) WithUserMessage(message, role string) *Builder {
	b.userMessage = message
	b.userRole = role
	return b
}

// Build constructs the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.gs == nil {
		return nil, fmt.Errorf("gamestate is required")
	}
	if b.pack == nil {
		return nil, fmt.Errorf("quest pack is required")
	}

	messages := make([]chat.ChatMessage, 0, 4)

	var sb strings.Builder
	sb.WriteString(SystemPrompt(b.pack))
	if aliases := AliasSection(b.pack); aliases != "" {
		sb.WriteString("\n")
		sb.WriteString(aliases)
	}
	messages = append(messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: sb.String(),
	})

	statePrompt, err := StatePrompt(b.gs)
	if err != nil {
		return nil, fmt.Errorf("error building state prompt: %w", err)
	}
	messages = append(messages, statePrompt)

	if b.userMessage != "" {
		role := b.userRole
		if role == "" {
			role = chat.ChatRoleUser
		}
		messages = append(messages, chat.ChatMessage{
			Role:    role,
			Content: b.userMessage,
		})
	}

	return messages, nil
}

// BuildMessages is a convenience wrapper for the common case.
func BuildMessages(gs *state.GameState, pack *quest.Pack, message, role string) ([]chat.ChatMessage, error) {
	return New().
		WithGameState(gs).
		WithPack(pack).
		WithUserMessage(message, role).
		Build()
}

// JournalText renders the journal section of a prompt state as plain text,
// one quest per block. Used by clients that show the LLM a textual journal
// instead of JSON.
func JournalText(ps *PromptState) string {
	if ps == nil || len(ps.Quests) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, id := range sortedQuestIDs(ps) {
		q := ps.Quests[id]
		title := q.Title
		if title == "" {
			title = id
		}
		fmt.Fprintf(&sb, "%s [%s]\n", title, q.Status)
		for _, o := range q.Objectives {
			label := o.Description
			if label == "" {
				label = o.ID
			}
			marker := "·"
			switch o.Status {
			case "completed":
				marker = "✓"
			case "failed":
				marker = "✗"
			}
			fmt.Fprintf(&sb, "  %s %s", marker, label)
			if o.Optional {
				sb.WriteString(" (optional)")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
