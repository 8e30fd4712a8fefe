package quest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/pkg/event"
)

// Confidence thresholds for LLM-proposed transitions. Objective updates on
// semantic objectives are gated lower than whole-quest failure.
const (
	objectiveConfidenceThreshold = 0.9
	questConfidenceThreshold     = 0.95
)

// MessageSink receives user-facing system messages ("Objective completed:
// ..."). The engine never blocks on delivery; sink errors are logged and
// dropped.
type MessageSink interface {
	SystemMessage(ctx context.Context, gameID uuid.UUID, text string) error
}

// Confirmer asks an LLM collaborator a single yes/no question. Used only by
// the kill-objective fallback.
type Confirmer interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Engine reconciles recorded game facts and LLM-proposed updates with the
// quest journal: it applies objective transitions, recomputes derived quest
// status, enforces non-regression, and fails objectives whose time limit
// expired. All methods run synchronously on the caller's goroutine; the
// engine defines no thread-safety guarantees for concurrent calls against
// the same game state.
type Engine struct {
	resolver     *Resolver
	logger       *slog.Logger
	messages     MessageSink
	confirmer    Confirmer
	verbose      bool
	killFallback bool
}

// NewEngine creates a quest engine with the given alias resolver.
func NewEngine(resolver *Resolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		resolver: resolver,
		logger:   logger,
	}
}

// WithMessageSink sets the system message sink. Returns the engine for
// chaining.
func (e *Engine) WithMessageSink(sink MessageSink) *Engine {
	e.messages = sink
	return e
}

// WithConfirmer sets the LLM collaborator used by the kill fallback.
func (e *Engine) WithConfirmer(c Confirmer) *Engine {
	e.confirmer = c
	return e
}

// WithVerbose enables per-evaluation debug logging.
func (e *Engine) WithVerbose(v bool) *Engine {
	e.verbose = v
	return e
}

// WithKillFallback enables the LLM confirmation fallback for kill
// objectives whose deterministic match did not fire.
func (e *Engine) WithKillFallback(enabled bool) *Engine {
	e.killFallback = enabled
	return e
}

// bucketFor maps an event kind to the objective types it can affect.
// Status-change events have no bucket: they are recorded but never trigger
// re-evaluation, which also keeps engine-emitted events from recursing.
func bucketFor(kind event.Kind) ([]ObjectiveType, bool) {
	switch kind {
	case event.KindEnemyDefeated:
		return []ObjectiveType{ObjectiveKill}, true
	case event.KindItemDelta:
		return []ObjectiveType{ObjectiveFetch}, true
	case event.KindLocationVisited:
		return []ObjectiveType{ObjectiveExplore, ObjectiveVisit}, true
	case event.KindDialogueCompleted, event.KindInteractionCompleted:
		return []ObjectiveType{ObjectiveInteract}, true
	case event.KindFlagSet:
		return []ObjectiveType{ObjectiveFlag}, true
	default:
		return nil, false
	}
}

// ProcessEvent is the event-log-triggered entry point. It is a no-op for an
// empty journal, so early game setup produces no evaluation noise.
func (e *Engine) ProcessEvent(ctx context.Context, view GameView, ev event.Event) {
	if view.QuestJournal().Len() == 0 {
		return
	}
	filter, ok := bucketFor(ev.Kind)
	if !ok {
		return
	}

	e.devf(view, "Processing event for quests", "kind", ev.Kind)
	e.evaluateAndUpdateAll(ctx, view, filter)

	if e.killFallback && ev.Kind == event.KindEnemyDefeated {
		e.attemptKillFallback(ctx, view, ev)
	}
}

// ProcessTime is the tick-driven entry point: it sweeps non-terminal
// objectives for time-limit expiry, independent of events.
func (e *Engine) ProcessTime(ctx context.Context, view GameView) {
	journal := view.QuestJournal()
	if journal.Len() == 0 {
		return
	}
	now := view.GameTime()

	for questID, q := range journal.Quests {
		if q == nil {
			continue
		}
		changed := false
		for _, o := range q.Objectives {
			if o.Terminal() {
				continue
			}
			if e.expireIfOverdue(ctx, view, questID, o, now) {
				changed = true
			}
		}
		if changed {
			e.recomputeQuestStatus(ctx, view, questID, q)
		}
	}
}

// evaluateAndUpdateAll evaluates every non-terminal objective, optionally
// restricted to the given objective types, and batches one quest status
// recompute per changed quest. A panic while evaluating one quest is
// contained so the rest of the pass still runs.
func (e *Engine) evaluateAndUpdateAll(ctx context.Context, view GameView, types []ObjectiveType) {
	sig := BuildSignals(view)

	for questID, q := range view.QuestJournal().Quests {
		if q == nil {
			continue
		}
		e.evaluateQuest(ctx, view, sig, questID, q, types)
	}
}

func (e *Engine) evaluateQuest(ctx context.Context, view GameView, sig *Signals, questID string, q *Quest, types []ObjectiveType) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Quest evaluation panicked",
				"quest_id", questID,
				"panic", r)
		}
	}()

	resolve := e.resolver.ForQuest(q)
	changed := false

	for _, o := range q.Objectives {
		if o.Terminal() {
			continue
		}
		if types != nil && !typeMatches(types, o.Type) {
			continue
		}

		// Time-limit expiry short-circuits evaluation for this
		// objective this pass.
		if e.expireIfOverdue(ctx, view, questID, o, sig.Time) {
			changed = true
			continue
		}

		cond := o.Condition
		if cond == nil {
			cond = deriveCondition(o)
		}
		if cond == nil {
			continue // semantic-only, never auto-evaluated
		}

		result := cond.Evaluate(sig, resolve)
		e.devf(view, "Objective evaluated",
			"quest_id", questID,
			"objective_id", o.ID,
			"condition", cond.String(),
			"result", result)

		if result == TriTrue && o.MarkCompleted() {
			changed = true
			e.recordObjectiveStatus(view, questID, o, "completed")
			e.system(ctx, view, "Objective completed: "+objectiveLabel(o))
		}
	}

	if changed {
		e.recomputeQuestStatus(ctx, view, questID, q)
	}
}

// expireIfOverdue stamps the activation time on first sight and fails the
// objective when its time limit has run out. The boundary is inclusive:
// now >= activation + limit fails.
func (e *Engine) expireIfOverdue(ctx context.Context, view GameView, questID string, o *Objective, now float64) bool {
	if o.ActivationTime == nil {
		t := now
		o.ActivationTime = &t
	}
	if o.TimeLimitS == nil {
		return false
	}
	if now < *o.ActivationTime+*o.TimeLimitS {
		return false
	}
	if !o.MarkFailed() {
		return false
	}
	e.recordObjectiveStatus(view, questID, o, "failed")
	e.system(ctx, view, "Objective failed: "+objectiveLabel(o))
	return true
}

// deriveCondition synthesizes a DSL condition from the objective type and
// target when no explicit condition is authored. Types outside the derived
// set stay semantic-only.
func deriveCondition(o *Objective) *Condition {
	if o.TargetID == "" {
		return nil
	}
	switch o.Type {
	case ObjectiveKill:
		return &Condition{Kind: CondDefeated, Label: o.TargetID}
	case ObjectiveFetch:
		count := o.Count
		if count <= 0 {
			count = 1
		}
		return &Condition{Kind: CondInventoryHas, ItemID: o.TargetID, Count: count}
	case ObjectiveExplore, ObjectiveVisit:
		return &Condition{Kind: CondVisited, Label: o.TargetID}
	default:
		return nil
	}
}

// ApplyObjectiveUpdate applies an LLM-proposed objective transition. The
// proposal must name an existing quest and objective, request a legal
// pending -> completed|failed transition, and pass either the DSL
// contradiction check (condition-backed objectives) or the confidence and
// evidence gate (semantic objectives and failure proposals).
func (e *Engine) ApplyObjectiveUpdate(ctx context.Context, view GameView, upd ObjectiveUpdate) (bool, string) {
	q := view.QuestJournal().Quest(upd.QuestID)
	if q == nil {
		return false, "Unknown quest id: " + upd.QuestID
	}
	o := q.Objective(upd.ObjectiveID)
	if o == nil {
		return false, "Unknown objective id: " + upd.ObjectiveID
	}
	if upd.NewStatus != "completed" && upd.NewStatus != "failed" {
		return false, "Invalid new_status: " + upd.NewStatus
	}
	if o.Terminal() {
		return false, "Illegal transition: objective is already " + terminalName(o)
	}

	if o.Condition != nil && upd.NewStatus == "completed" {
		// Deterministic rule exists: the narrative claim must not
		// contradict it.
		sig := BuildSignals(view)
		if o.Condition.Evaluate(sig, e.resolver.ForQuest(q)) == TriFalse {
			return false, "Contradicts DSL (not satisfied)"
		}
	} else {
		if upd.Confidence < objectiveConfidenceThreshold {
			return false, fmt.Sprintf("Confidence %.2f below threshold", upd.Confidence)
		}
		if ok, reason := VerifyEvidence(view, upd.Evidence); !ok {
			return false, "Evidence check failed: " + reason
		}
	}

	if upd.NewStatus == "completed" {
		o.MarkCompleted()
		e.system(ctx, view, "Objective completed: "+objectiveLabel(o))
	} else {
		o.MarkFailed()
		e.system(ctx, view, "Objective failed: "+objectiveLabel(o))
	}
	e.recordObjectiveStatus(view, upd.QuestID, o, upd.NewStatus)
	e.recomputeQuestStatus(ctx, view, upd.QuestID, q)

	return true, fmt.Sprintf("Objective %s marked %s", upd.ObjectiveID, upd.NewStatus)
}

// ApplyQuestStatus applies an LLM-proposed quest transition. "completed" is
// never accepted directly: it is converted into a recompute, and the result
// message reports the recomputed status so the caller knows the assertion
// was overridden. Failure and abandonment need high confidence plus
// verified evidence; reopening is rejected by policy.
func (e *Engine) ApplyQuestStatus(ctx context.Context, view GameView, upd QuestStatusUpdate) (bool, string) {
	q := view.QuestJournal().Quest(upd.QuestID)
	if q == nil {
		return false, "Unknown quest id: " + upd.QuestID
	}

	switch upd.NewStatus {
	case "completed":
		e.recomputeQuestStatus(ctx, view, upd.QuestID, q)
		return true, fmt.Sprintf("Quest status recomputed: %s", q.Status)

	case "failed", "abandoned":
		if q.Status == StatusCompleted {
			return false, "Illegal transition: quest is already completed"
		}
		if upd.Confidence < questConfidenceThreshold {
			return false, fmt.Sprintf("Confidence %.2f below threshold", upd.Confidence)
		}
		if ok, reason := VerifyEvidence(view, upd.Evidence); !ok {
			return false, "Evidence check failed: " + reason
		}
		if upd.NewStatus == "abandoned" {
			q.Abandoned = true
			e.system(ctx, view, "Quest abandoned: "+questLabel(upd.QuestID, q))
		} else {
			e.system(ctx, view, "Quest failed: "+questLabel(upd.QuestID, q))
		}
		if q.Status != StatusFailed {
			q.Status = StatusFailed
			e.recordQuestStatus(view, upd.QuestID, string(StatusFailed))
		}
		return true, fmt.Sprintf("Quest %s marked %s", upd.QuestID, upd.NewStatus)

	case "active":
		return false, "Reopening quests is not permitted"

	default:
		return false, "Invalid new_status: " + upd.NewStatus
	}
}

// recomputeQuestStatus derives quest status from mandatory objectives.
// Completed is monotone: once reached, recompute never reverts it.
func (e *Engine) recomputeQuestStatus(ctx context.Context, view GameView, questID string, q *Quest) {
	if q.Abandoned {
		if q.Status != StatusFailed {
			q.Status = StatusFailed
			e.recordQuestStatus(view, questID, string(StatusFailed))
		}
		return
	}

	mandatoryTotal := 0
	mandatoryCompleted := 0
	anyFailed := false
	for _, o := range q.Objectives {
		if !o.IsMandatory() {
			continue
		}
		mandatoryTotal++
		if o.Completed {
			mandatoryCompleted++
		}
		if o.Failed {
			anyFailed = true
		}
	}

	if mandatoryTotal > 0 && mandatoryCompleted == mandatoryTotal && !anyFailed {
		if q.Status != StatusCompleted {
			q.Status = StatusCompleted
			e.recordQuestStatus(view, questID, string(StatusCompleted))
			e.system(ctx, view, "Quest Completed: "+questLabel(questID, q))
		}
		return
	}

	if q.Status == StatusCompleted {
		return // non-regression
	}
	if q.Status != StatusFailed && q.Status != StatusActive {
		q.Status = StatusActive
	}
}

// attemptKillFallback is the last-resort fuzzy matcher for kill objectives:
// when a defeat event's names match an objective target but the
// deterministic evaluation did not fire, ask the LLM collaborator once per
// matching objective. Errors and timeouts mean "not confirmed"; there is no
// retry.
func (e *Engine) attemptKillFallback(ctx context.Context, view GameView, ev event.Event) {
	if e.confirmer == nil {
		return
	}

	combatName := ev.Tags["combat_name"]
	candidates := map[string]bool{}
	for _, name := range []string{ev.TemplateID, combatName, stripInstanceSuffix(combatName)} {
		if name != "" {
			candidates[strings.ToLower(name)] = true
		}
	}
	if len(candidates) == 0 {
		return
	}

	for questID, q := range view.QuestJournal().Quests {
		if q == nil {
			continue
		}
		changed := false
		for _, o := range q.Objectives {
			if o.Terminal() || o.Type != ObjectiveKill || o.TargetID == "" {
				continue
			}
			if !candidates[strings.ToLower(o.TargetID)] {
				continue
			}

			prompt := fmt.Sprintf(
				"An enemy was just defeated (template %q, name %q). Does this defeat satisfy the quest objective %q? Answer yes or no.",
				ev.TemplateID, combatName, objectiveLabel(o))
			reply, err := e.confirmer.Ask(ctx, prompt)
			if err != nil {
				e.logger.Debug("Kill fallback confirmation failed",
					"quest_id", questID,
					"objective_id", o.ID,
					"error", err)
				continue
			}
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(reply)), "yes") {
				continue
			}
			if o.MarkCompleted() {
				changed = true
				e.recordObjectiveStatus(view, questID, o, "completed")
				e.system(ctx, view, "Objective completed: "+objectiveLabel(o))
			}
		}
		if changed {
			e.recomputeQuestStatus(ctx, view, questID, q)
		}
	}
}

func (e *Engine) recordObjectiveStatus(view GameView, questID string, o *Objective, status string) {
	view.Record(event.Event{
		Kind:        event.KindObjectiveStatusChange,
		QuestID:     questID,
		ObjectiveID: o.ID,
		Status:      status,
	})
}

func (e *Engine) recordQuestStatus(view GameView, questID, status string) {
	view.Record(event.Event{
		Kind:    event.KindQuestStatusChange,
		QuestID: questID,
		Status:  status,
	})
}

// system queues a user-facing message. Delivery is best effort: failures
// are logged and must never affect gameplay.
func (e *Engine) system(ctx context.Context, view GameView, text string) {
	if e.messages == nil {
		return
	}
	if err := e.messages.SystemMessage(ctx, view.GameID(), text); err != nil {
		e.logger.Error("Failed to queue system message",
			"game_id", view.GameID().String(),
			"error", err)
	}
}

// devf emits verbose evaluation diagnostics. Best effort, debug level only.
func (e *Engine) devf(view GameView, msg string, args ...any) {
	if !e.verbose {
		return
	}
	args = append(args, "game_id", view.GameID().String())
	e.logger.Debug(msg, args...)
}

func typeMatches(types []ObjectiveType, t ObjectiveType) bool {
	for _, want := range types {
		if want == t {
			return true
		}
	}
	return false
}

func terminalName(o *Objective) string {
	if o.Completed {
		return "completed"
	}
	return "failed"
}

func objectiveLabel(o *Objective) string {
	if o.Description != "" {
		return o.Description
	}
	return o.ID
}

func questLabel(id string, q *Quest) string {
	if q.Title != "" {
		return q.Title
	}
	return id
}
