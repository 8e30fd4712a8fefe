package event

// Kind identifies the type of a recorded game fact.
type Kind string

const (
	KindEnemyDefeated         Kind = "enemy_defeated"
	KindItemDelta             Kind = "item_delta"
	KindLocationVisited       Kind = "location_visited"
	KindDialogueCompleted     Kind = "dialogue_completed"
	KindInteractionCompleted  Kind = "interaction_completed"
	KindFlagSet               Kind = "flag_set"
	KindObjectiveStatusChange Kind = "objective_status_change"
	KindQuestStatusChange     Kind = "quest_status_change"
)

// Event is a single immutable game-time fact. It is a tagged record: Kind
// selects which of the optional fields are meaningful. Events are appended
// once and never mutated or removed.
type Event struct {
	Kind     Kind    `json:"kind"`
	GameTime float64 `json:"game_time"`

	// EnemyDefeated
	EntityID   string            `json:"entity_id,omitempty"`
	TemplateID string            `json:"template_id,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`

	// EnemyDefeated, LocationVisited
	LocationID string `json:"location_id,omitempty"`

	// ItemDelta
	ItemID string `json:"item_id,omitempty"`
	Delta  int    `json:"delta,omitempty"`

	// DialogueCompleted, InteractionCompleted
	TargetID string `json:"target_id,omitempty"`

	// FlagSet
	Key   string `json:"key,omitempty"`
	Value any    `json:"value,omitempty"`

	// ObjectiveStatusChange, QuestStatusChange
	QuestID     string `json:"quest_id,omitempty"`
	ObjectiveID string `json:"objective_id,omitempty"`
	Status      string `json:"status,omitempty"`
}
