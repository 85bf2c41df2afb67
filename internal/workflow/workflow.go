package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/memodraft/internal/classify"
	"github.com/ppiankov/memodraft/internal/evidence"
	"github.com/ppiankov/memodraft/internal/model"
	"github.com/ppiankov/memodraft/internal/preference"
)

// Retriever looks up evidence for a query, skipping excluded case ids
type Retriever interface {
	Retrieve(query string, exclude map[string]bool) []model.EvidencePoint
}

// Drafter produces the memo for one cycle
type Drafter interface {
	Draft(ctx context.Context, req model.DraftRequest) (model.DraftResult, error)
}

// Reviewer blocks until a human decides on a draft
type Reviewer interface {
	Decide(ctx context.Context, draft model.DraftResult) (model.Decision, error)
}

// Classifier tells content requests from style requests
type Classifier interface {
	Classify(text string) classify.Kind
}

// Preferences serves learned preferences and records style feedback
type Preferences interface {
	Snapshot(ctx context.Context) (model.PreferenceSnapshot, error)
	AppendFeedback(ctx context.Context, rec model.FeedbackRecord) error
}

// RunLogger persists one outcome per finished run
type RunLogger interface {
	AppendOutcome(ctx context.Context, outcome model.RunOutcome) error
}

// Deps are the collaborators of a workflow. Retriever, Drafter, Reviewer,
// Preferences and RunLogger are required.
type Deps struct {
	Retriever   Retriever
	Drafter     Drafter
	Reviewer    Reviewer
	Classifier  Classifier // Defaults to classify.NewClassifier()
	Preferences Preferences
	RunLogger   RunLogger
	Logger      *zap.Logger
	Observer    Observer
	Now         func() time.Time
	NewRunID    func() string
}

// Config bounds the revision loop
type Config struct {
	MaxCycles          int
	RequeryLimit       int
	DefaultEditRequest string
}

// ConfigFromModel extracts the workflow settings from the app config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		MaxCycles:          cfg.Workflow.MaxCycles,
		RequeryLimit:       cfg.Evidence.RequeryLimit,
		DefaultEditRequest: cfg.Workflow.DefaultEditRequest,
	}
}

// Workflow drives draft, review and revise cycles for one topic at a time.
// A Workflow may run several topics sequentially; each Run owns its own
// evidence set.
type Workflow struct {
	deps Deps
	cfg  Config
}

// New creates a workflow, filling optional dependencies and zero config
// values with defaults
func New(deps Deps, cfg Config) *Workflow {
	defaults := model.DefaultConfig()

	if deps.Classifier == nil {
		deps.Classifier = classify.NewClassifier()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewRunID == nil {
		deps.NewRunID = uuid.NewString
	}
	if cfg.MaxCycles <= 0 {
		cfg.MaxCycles = defaults.Workflow.MaxCycles
	}
	if cfg.RequeryLimit <= 0 {
		cfg.RequeryLimit = defaults.Evidence.RequeryLimit
	}
	if strings.TrimSpace(cfg.DefaultEditRequest) == "" {
		cfg.DefaultEditRequest = defaults.Workflow.DefaultEditRequest
	}

	return &Workflow{deps: deps, cfg: cfg}
}

// run is the mutable state of a single Run
type run struct {
	id       string
	topic    string
	cycles   int // Edit-request transitions so far
	editText string
	evidence model.EvidenceSet
	logger   *zap.Logger
}

// Run drafts a memo for topic until it is approved, the cycle cap is hit or
// the reviewer gives an unusable answer. Exactly one outcome is appended
// when the run reaches a terminal state. A generator failure aborts the run
// without an outcome. If appending the outcome fails the outcome is still
// returned together with the error.
func (w *Workflow) Run(ctx context.Context, topic string) (model.RunOutcome, error) {
	r := &run{
		id:    w.deps.NewRunID(),
		topic: topic,
	}
	r.logger = w.deps.Logger.With(zap.String("run_id", r.id), zap.String("topic", topic))

	r.evidence = evidence.Merge(nil, w.deps.Retriever.Retrieve(topic, nil), 0)
	r.logger.Info("run started",
		zap.Int("evidence", len(r.evidence)),
		zap.Bool("grounded", r.evidence.Grounded()),
	)

	for {
		if r.cycles >= w.cfg.MaxCycles {
			r.logger.Info("cycle cap reached", zap.Int("max_cycles", w.cfg.MaxCycles))
			return w.finish(ctx, r, StateMaxCyclesReached, nil)
		}

		cycle := r.cycles + 1
		w.emit(r, Event{State: StateDrafting, Cycle: cycle})

		req := model.DraftRequest{
			Topic:       topic,
			Evidence:    r.evidence,
			EditRequest: r.editText,
			Cycle:       cycle,
			Grounded:    r.evidence.Grounded(),
			Preferences: w.preferences(ctx, r),
		}

		draft, err := w.deps.Drafter.Draft(ctx, req)
		if err != nil {
			return model.RunOutcome{}, fmt.Errorf("draft cycle %d: %w", cycle, err)
		}
		w.emit(r, Event{State: StateAwaitingDecision, Cycle: cycle, Draft: &draft})

		decision, err := w.deps.Reviewer.Decide(ctx, draft)
		if err != nil {
			r.logger.Warn("reviewer gave no decision", zap.Int("cycle", cycle), zap.Error(err))
			return w.finish(ctx, r, StateUnknown, nil)
		}

		switch decision.Kind {
		case model.DecisionApprove:
			return w.finish(ctx, r, StateApproved, &decision)

		case model.DecisionEditRequest:
			w.revise(ctx, r, decision)

		default:
			r.logger.Warn("unrecognized decision", zap.String("kind", string(decision.Kind)), zap.Int("cycle", cycle))
			return w.finish(ctx, r, StateUnknown, &decision)
		}
	}
}

// preferences returns the learned snapshot with edit-request overrides
// applied. A store read failure degrades to no learned preferences.
func (w *Workflow) preferences(ctx context.Context, r *run) model.PreferenceSnapshot {
	snap, err := w.deps.Preferences.Snapshot(ctx)
	if err != nil {
		r.logger.Warn("preferences unavailable", zap.Error(err))
		snap = model.PreferenceSnapshot{}
	}
	return preference.ApplyOverrides(snap, r.editText)
}

// revise applies an edit request: content requests widen the evidence set,
// style requests are recorded as feedback
func (w *Workflow) revise(ctx context.Context, r *run, decision model.Decision) {
	r.cycles++

	text := strings.TrimSpace(decision.EditText)
	if text == "" {
		text = w.cfg.DefaultEditRequest
	}
	r.editText = text

	kind := w.deps.Classifier.Classify(text)
	w.emit(r, Event{State: StateRevising, Cycle: r.cycles, Decision: &decision, EditKind: string(kind)})

	if kind == classify.ContentRequest {
		query := r.topic + " . User request: " + text
		fresh := w.deps.Retriever.Retrieve(query, r.evidence.Sources())
		before := len(r.evidence)
		r.evidence = evidence.Merge(r.evidence, fresh, w.cfg.RequeryLimit)
		r.logger.Info("re-queried evidence",
			zap.Int("cycle", r.cycles),
			zap.Int("retrieved", len(fresh)),
			zap.Int("added", len(r.evidence)-before),
		)
		return
	}

	rec := model.FeedbackRecord{
		Topic:     r.topic,
		Cycle:     r.cycles,
		Text:      text,
		Timestamp: w.deps.Now().UTC(),
	}
	if err := w.deps.Preferences.AppendFeedback(ctx, rec); err != nil {
		r.logger.Warn("style feedback not recorded", zap.Int("cycle", r.cycles), zap.Error(err))
	}
}

// finish emits the terminal transition and appends the outcome
func (w *Workflow) finish(ctx context.Context, r *run, state State, decision *model.Decision) (model.RunOutcome, error) {
	if !state.Terminal() {
		return model.RunOutcome{}, fmt.Errorf("finish run %s in non-terminal state %q", r.id, state)
	}
	outcome := model.RunOutcome{
		RunID:         r.id,
		Topic:         r.topic,
		CycleCount:    r.cycles,
		FinalDecision: finalDecision(state),
		Grounded:      r.evidence.Grounded(),
		Timestamp:     w.deps.Now().UTC(),
	}

	w.emit(r, Event{State: state, Cycle: r.cycles, Decision: decision})
	r.logger.Info("run finished",
		zap.String("final_decision", string(outcome.FinalDecision)),
		zap.Int("cycle_count", outcome.CycleCount),
	)

	// An interrupted review still records its outcome
	if err := w.deps.RunLogger.AppendOutcome(context.WithoutCancel(ctx), outcome); err != nil {
		return outcome, fmt.Errorf("append outcome: %w", err)
	}
	return outcome, nil
}

func (w *Workflow) emit(r *run, ev Event) {
	ev.RunID = r.id
	ev.Evidence = len(r.evidence)
	if w.deps.Observer != nil {
		w.deps.Observer(ev)
	}
}
