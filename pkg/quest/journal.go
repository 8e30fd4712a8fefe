package quest

// Status is the lifecycle state of a quest. Abandonment is represented as
// StatusFailed plus the Abandoned flag, not as a distinct status.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ObjectiveType drives condition derivation for objectives that carry no
// explicit DSL. Types outside this set are semantic-only and are never
// auto-evaluated.
type ObjectiveType string

const (
	ObjectiveKill     ObjectiveType = "kill"
	ObjectiveFetch    ObjectiveType = "fetch"
	ObjectiveExplore  ObjectiveType = "explore"
	ObjectiveVisit    ObjectiveType = "visit"
	ObjectiveInteract ObjectiveType = "interact"
	ObjectiveFlag     ObjectiveType = "flag"
)

// Objective is a single trackable sub-goal of a quest.
type Objective struct {
	ID          string        `json:"id"`
	Description string        `json:"description,omitempty"`
	Type        ObjectiveType `json:"type,omitempty"`
	TargetID    string        `json:"target_id,omitempty"`
	Count       int           `json:"count,omitempty"`
	Mandatory   *bool         `json:"mandatory,omitempty"` // nil means mandatory
	Completed   bool          `json:"completed,omitempty"`
	Failed      bool          `json:"failed,omitempty"`
	Condition   *Condition    `json:"condition_dsl,omitempty"`

	// Time limit in game seconds, measured from ActivationTime.
	// ActivationTime is stamped lazily on first evaluation.
	TimeLimitS     *float64 `json:"time_limit_s,omitempty"`
	ActivationTime *float64 `json:"activation_time,omitempty"`
}

// IsMandatory reports whether the objective counts toward quest completion.
// Objectives are mandatory unless explicitly marked otherwise.
func (o *Objective) IsMandatory() bool {
	return o.Mandatory == nil || *o.Mandatory
}

// Terminal reports whether the objective has reached a final state.
func (o *Objective) Terminal() bool {
	return o.Completed || o.Failed
}

// MarkCompleted moves the objective from pending to completed. Returns false
// without mutating if the objective is already terminal.
func (o *Objective) MarkCompleted() bool {
	if o.Terminal() {
		return false
	}
	o.Completed = true
	return true
}

// MarkFailed moves the objective from pending to failed. Returns false
// without mutating if the objective is already terminal.
func (o *Objective) MarkFailed() bool {
	if o.Terminal() {
		return false
	}
	o.Failed = true
	return true
}

// Quest is one journal entry: a titled goal with objectives and optional
// quest-local alias tables keyed by domain ("entities", "items",
// "locations") then by narrative label.
type Quest struct {
	Title       string                         `json:"title,omitempty"`
	Description string                         `json:"description,omitempty"`
	Status      Status                         `json:"status,omitempty"`
	Abandoned   bool                           `json:"abandoned,omitempty"`
	Objectives  []*Objective                   `json:"objectives,omitempty"`
	Aliases     map[string]map[string][]string `json:"aliases,omitempty"`
}

// Objective returns the objective with the given id, or nil.
func (q *Quest) Objective(id string) *Objective {
	for _, o := range q.Objectives {
		if o != nil && o.ID == id {
			return o
		}
	}
	return nil
}

// Journal is the per-session collection of quests, keyed by quest id.
type Journal struct {
	Quests map[string]*Quest `json:"quests,omitempty"`
}

// Quest returns the quest with the given id, or nil.
func (j *Journal) Quest(id string) *Quest {
	if j == nil {
		return nil
	}
	return j.Quests[id]
}

// Len returns the number of quests in the journal.
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	return len(j.Quests)
}

// Add inserts a quest under the given id, creating the map on first use.
func (j *Journal) Add(id string, q *Quest) {
	if j.Quests == nil {
		j.Quests = make(map[string]*Quest)
	}
	j.Quests[id] = q
}
