package quest

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ObjectiveUpdate is a validated QUEST_UPDATE payload: an LLM-proposed
// transition for one objective.
type ObjectiveUpdate struct {
	QuestID     string     `json:"quest_id"`
	ObjectiveID string     `json:"objective_id"`
	NewStatus   string     `json:"new_status"`
	Confidence  float64    `json:"confidence"`
	Evidence    []Evidence `json:"evidence,omitempty"`
}

// QuestStatusUpdate is a validated QUEST_STATUS payload: an LLM-proposed
// transition for a whole quest.
type QuestStatusUpdate struct {
	QuestID    string     `json:"quest_id"`
	NewStatus  string     `json:"new_status"`
	Confidence float64    `json:"confidence"`
	Evidence   []Evidence `json:"evidence,omitempty"`
}

// ParseObjectiveUpdate decodes a QUEST_UPDATE payload. LLM output is
// untrusted: malformed JSON or missing required fields yield an error, not
// a partially-filled payload.
func ParseObjectiveUpdate(data []byte) (ObjectiveUpdate, error) {
	var upd ObjectiveUpdate
	if err := json.Unmarshal(data, &upd); err != nil {
		return ObjectiveUpdate{}, &ParseError{Reason: "invalid JSON payload"}
	}
	if upd.QuestID == "" || upd.ObjectiveID == "" || upd.NewStatus == "" {
		return ObjectiveUpdate{}, &ParseError{Reason: "missing quest_id, objective_id or new_status"}
	}
	return upd, nil
}

// ParseQuestStatusUpdate decodes a QUEST_STATUS payload.
func ParseQuestStatusUpdate(data []byte) (QuestStatusUpdate, error) {
	var upd QuestStatusUpdate
	if err := json.Unmarshal(data, &upd); err != nil {
		return QuestStatusUpdate{}, &ParseError{Reason: "invalid JSON payload"}
	}
	if upd.QuestID == "" || upd.NewStatus == "" {
		return QuestStatusUpdate{}, &ParseError{Reason: "missing quest_id or new_status"}
	}
	return upd, nil
}

// ParseObjectiveUpdateLegacy decodes the colon-delimited fallback format
// quest_id:objective_id:new_status[:confidence]. The legacy format carries
// no evidence.
func ParseObjectiveUpdateLegacy(s string) (ObjectiveUpdate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 3 {
		return ObjectiveUpdate{}, &ParseError{Reason: "legacy payload needs quest_id:objective_id:new_status"}
	}
	upd := ObjectiveUpdate{
		QuestID:     strings.TrimSpace(parts[0]),
		ObjectiveID: strings.TrimSpace(parts[1]),
		NewStatus:   strings.TrimSpace(parts[2]),
	}
	if upd.QuestID == "" || upd.ObjectiveID == "" || upd.NewStatus == "" {
		return ObjectiveUpdate{}, &ParseError{Reason: "legacy payload has empty fields"}
	}
	if len(parts) > 3 {
		conf, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return ObjectiveUpdate{}, &ParseError{Reason: "legacy payload has invalid confidence"}
		}
		upd.Confidence = conf
	}
	return upd, nil
}

// ParseQuestStatusUpdateLegacy decodes quest_id:new_status[:confidence].
func ParseQuestStatusUpdateLegacy(s string) (QuestStatusUpdate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return QuestStatusUpdate{}, &ParseError{Reason: "legacy payload needs quest_id:new_status"}
	}
	upd := QuestStatusUpdate{
		QuestID:   strings.TrimSpace(parts[0]),
		NewStatus: strings.TrimSpace(parts[1]),
	}
	if upd.QuestID == "" || upd.NewStatus == "" {
		return QuestStatusUpdate{}, &ParseError{Reason: "legacy payload has empty fields"}
	}
	if len(parts) > 2 {
		conf, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return QuestStatusUpdate{}, &ParseError{Reason: "legacy payload has invalid confidence"}
		}
		upd.Confidence = conf
	}
	return upd, nil
}

// ParseError describes why a payload could not be decoded. It surfaces to
// callers as a rejection reason, never as a panic.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "invalid payload: " + e.Reason
}
