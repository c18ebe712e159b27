package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// ActionHandler executes one kind of action
type ActionHandler interface {
	Execute(ctx context.Context, params domain.ActionParams) (any, error)
}

// HandlerFunc adapts a function to ActionHandler
type HandlerFunc func(ctx context.Context, params domain.ActionParams) (any, error)

// Execute calls f
func (f HandlerFunc) Execute(ctx context.Context, params domain.ActionParams) (any, error) {
	return f(ctx, params)
}

// ActionHandlers maps each action kind to its handler
type ActionHandlers map[domain.ActionKind]ActionHandler

// ReasoningLoop drives the Thought -> Action -> Observation cycle.
// The loop itself holds no per-run state, so one instance can serve
// concurrent orchestrations; each run records into its own Trace.
type ReasoningLoop struct {
	now    func() time.Time
	logger *slog.Logger
}

// ReasoningLoopConfig holds dependencies for ReasoningLoop.
type ReasoningLoopConfig struct {
	Now    func() time.Time
	Logger *slog.Logger
}

// NewReasoningLoop creates a new ReasoningLoop.
func NewReasoningLoop(cfg ReasoningLoopConfig) *ReasoningLoop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &ReasoningLoop{
		now:    now,
		logger: logger.With("component", "reasoning_loop"),
	}
}

// Orchestrate runs the loop for query and returns its summary. It never
// fails: provider, extraction and storage errors are recorded on their
// actions and the result reports success=false when nothing good was found.
func (l *ReasoningLoop) Orchestrate(ctx context.Context, query string, lc domain.LoopContext, handlers ActionHandlers) *domain.OrchestrationResult {
	return l.Run(ctx, query, lc, handlers).Result()
}

// Run executes the loop and returns the full trace.
//
// Each iteration drains the actions that were pending when it started.
// Actions planned while evaluating are queued for the next iteration, so an
// executed action is never picked up again.
func (l *ReasoningLoop) Run(ctx context.Context, query string, lc domain.LoopContext, handlers ActionHandlers) *Trace {
	lc = lc.Normalized()
	if lc.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lc.Deadline)
		defer cancel()
	}

	t := newTrace(query, l.now)
	t.think(domain.ThoughtInitial, "Need to research: "+query, map[string]string{"query": query})

	t.state = domain.LoopPlanning
	t.plan(domain.ActionSearch, domain.ActionParams{
		Query:      query,
		Sources:    lc.Sources,
		MaxResults: lc.MaxResults,
	})

	for t.iterations < lc.MaxIterations {
		if err := ctx.Err(); err != nil {
			l.logger.Warn("research deadline reached", "query", query, "iterations", t.iterations, "error", err)
			break
		}
		t.iterations++

		batch := t.takePending()
		t.state = domain.LoopExecuting
		outcomes := l.executeBatch(ctx, batch, lc, handlers)

		t.state = domain.LoopEvaluating
		for i, a := range batch {
			l.observe(t, a, outcomes[i], lc)
		}

		good := t.goodCount(lc.MinQualityThreshold)
		if good >= lc.MinGoodResults {
			t.think(domain.ThoughtConclusion, fmt.Sprintf("Found %d good results, completing research", good), nil)
			t.state = domain.LoopConcludedSuccess
			break
		}
		if len(t.pending) == 0 {
			t.think(domain.ThoughtReasoning, "All planned actions complete, evaluating if more needed", nil)
			t.think(domain.ThoughtConclusion, "Unable to find good results after all attempts", nil)
			t.state = domain.LoopConcludedEmpty
			break
		}
		t.state = domain.LoopPlanning
	}

	if !t.state.IsTerminal() {
		good := t.goodCount(lc.MinQualityThreshold)
		t.think(domain.ThoughtConclusion,
			fmt.Sprintf("Stopped after %d iterations with %d good results", t.iterations, good), nil)
		if good >= lc.MinGoodResults {
			t.state = domain.LoopConcludedSuccess
		} else {
			t.state = domain.LoopConcludedEmpty
		}
	}

	t.finished = l.now()
	l.logger.Info("research concluded",
		"query", query,
		"state", t.state,
		"iterations", t.iterations,
		"actions", len(t.actions),
		"good_results", t.goodCount(lc.MinQualityThreshold),
	)
	return t
}

// outcome is the raw return of one handler call
type outcome struct {
	result any
	err    error
}

// executeBatch runs every action in batch. EXTRACT actions own disjoint
// URLs and run concurrently, at most MaxExtractions at a time; everything
// else runs sequentially in planned order. Outcomes are indexed like batch.
func (l *ReasoningLoop) executeBatch(ctx context.Context, batch []*domain.Action, lc domain.LoopContext, handlers ActionHandlers) []outcome {
	outcomes := make([]outcome, len(batch))

	var g errgroup.Group
	g.SetLimit(lc.MaxExtractions)
	for i, a := range batch {
		if a.Kind != domain.ActionExtract {
			continue
		}
		g.Go(func() error {
			outcomes[i] = l.execute(ctx, a, handlers)
			return nil
		})
	}
	for i, a := range batch {
		if a.Kind == domain.ActionExtract {
			continue
		}
		outcomes[i] = l.execute(ctx, a, handlers)
	}
	_ = g.Wait()

	return outcomes
}

func (l *ReasoningLoop) execute(ctx context.Context, a *domain.Action, handlers ActionHandlers) outcome {
	h, ok := handlers[a.Kind]
	if !ok || h == nil {
		return outcome{err: fmt.Errorf("%w for action %s", domain.ErrNoHandler, a.Kind)}
	}
	result, err := h.Execute(ctx, a.Params)
	if err != nil {
		l.logger.Warn("action failed", "action", a.Kind, "id", a.ID, "error", err)
	}
	return outcome{result: result, err: err}
}

// observe records the outcome of a, scores it and plans follow-ups
func (l *ReasoningLoop) observe(t *Trace, a *domain.Action, out outcome, lc domain.LoopContext) {
	if err := a.Complete(out.result, out.err); err != nil {
		l.logger.Error("action outcome recorded twice", "action", a.Kind, "id", a.ID)
		return
	}
	obs := domain.Observation{
		Action:    a,
		Summary:   SummarizeAction(a),
		Quality:   ScoreQuality(a),
		Timestamp: t.now(),
		HasError:  out.err != nil,
	}
	t.observations = append(t.observations, obs)
	// Results carry only output worth reporting: an empty search succeeds
	// as an action but adds nothing here.
	if out.err == nil && obs.Quality > 0 {
		t.results = append(t.results, out.result)
	}
	l.logger.Debug("observation", "action", a.Kind, "quality", obs.Quality, "text", obs.Summary)

	if obs.Quality < lc.MinQualityThreshold {
		t.think(domain.ThoughtEvaluation,
			fmt.Sprintf("Result quality is low (%.2f), need to try alternative approach", obs.Quality), nil)

		if a.Kind == domain.ActionSearch && lc.Fallback {
			sources := t.untriedSources(lc.FallbackChain)
			if len(sources) > 0 {
				params := a.Params
				params.Sources = sources
				t.think(domain.ThoughtPlanning, "Retrying search with "+joinProviders(sources), nil)
				t.plan(domain.ActionSearch, params)
			}
		}
		return
	}

	t.think(domain.ThoughtObservation, fmt.Sprintf("Good result from %s: %s", a.Kind, obs.Summary), nil)

	if a.Kind != domain.ActionSearch {
		return
	}
	resp := asSearchResponse(a.Result)
	if resp == nil || len(resp.Results) == 0 {
		return
	}
	n := min(domain.ExtractFanOut, lc.MaxExtractions, len(resp.Results))
	t.think(domain.ThoughtPlanning, fmt.Sprintf("Extracting content from top %d results", n), nil)
	for _, r := range resp.Results[:n] {
		t.plan(domain.ActionExtract, domain.ActionParams{
			URL:          r.URL,
			PreserveCode: lc.PreserveCode,
		})
	}
}

func joinProviders(ids []domain.ProviderID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

// Trace is the append-only record of one orchestration
type Trace struct {
	query        string
	thoughts     []domain.Thought
	actions      []*domain.Action
	observations []domain.Observation
	results      []any

	pending    []*domain.Action
	tried      map[domain.ProviderID]bool
	state      domain.LoopState
	iterations int
	started    time.Time
	finished   time.Time
	now        func() time.Time
}

func newTrace(query string, now func() time.Time) *Trace {
	return &Trace{
		query:   query,
		tried:   make(map[domain.ProviderID]bool),
		state:   domain.LoopStarted,
		started: now(),
		now:     now,
	}
}

func (t *Trace) think(kind domain.ThoughtKind, text string, tags map[string]string) {
	t.thoughts = append(t.thoughts, domain.Thought{
		Kind:      kind,
		Text:      text,
		Timestamp: t.now(),
		Tags:      tags,
	})
}

func (t *Trace) plan(kind domain.ActionKind, params domain.ActionParams) *domain.Action {
	a := domain.NewAction(len(t.actions)+1, kind, params, t.now())
	t.actions = append(t.actions, a)
	t.pending = append(t.pending, a)
	if kind == domain.ActionSearch {
		for _, s := range params.Sources {
			t.tried[s] = true
		}
	}
	return a
}

// takePending hands over the current pending queue and starts a new one
func (t *Trace) takePending() []*domain.Action {
	batch := t.pending
	t.pending = nil
	return batch
}

// untriedSources returns the chain minus every source any SEARCH has used
func (t *Trace) untriedSources(chain []domain.ProviderID) []domain.ProviderID {
	var out []domain.ProviderID
	for _, id := range chain {
		if !t.tried[id] {
			out = append(out, id)
		}
	}
	return out
}

func (t *Trace) goodCount(threshold float64) int {
	n := 0
	for _, o := range t.observations {
		if o.Quality >= threshold {
			n++
		}
	}
	return n
}

// Thoughts returns the recorded thoughts in order
func (t *Trace) Thoughts() []domain.Thought {
	return append([]domain.Thought(nil), t.thoughts...)
}

// Actions returns every planned action in planning order
func (t *Trace) Actions() []*domain.Action {
	return append([]*domain.Action(nil), t.actions...)
}

// Observations returns the recorded observations in order
func (t *Trace) Observations() []domain.Observation {
	return append([]domain.Observation(nil), t.observations...)
}

// State returns the final loop state
func (t *Trace) State() domain.LoopState {
	return t.state
}

// Iterations returns the number of outer cycles run
func (t *Trace) Iterations() int {
	return t.iterations
}

// Result renders the trace as an OrchestrationResult
func (t *Trace) Result() *domain.OrchestrationResult {
	res := &domain.OrchestrationResult{
		Query:        t.query,
		Thoughts:     make([]domain.ThoughtSummary, len(t.thoughts)),
		Actions:      make([]domain.ActionSummary, len(t.actions)),
		Observations: make([]domain.ObservationSummary, len(t.observations)),
		Results:      append([]any{}, t.results...),
		Iterations:   t.iterations,
		Success:      t.state == domain.LoopConcludedSuccess,
		State:        t.state,
	}
	for i, th := range t.thoughts {
		res.Thoughts[i] = domain.ThoughtSummary{Kind: th.Kind, Text: th.Text}
	}
	for i, a := range t.actions {
		res.Actions[i] = domain.ActionSummary{Kind: a.Kind, Success: a.Error == ""}
	}
	for i, o := range t.observations {
		res.Observations[i] = domain.ObservationSummary{Text: o.Summary, Quality: o.Quality}
	}
	end := t.finished
	if end.IsZero() {
		end = t.now()
	}
	res.DurationSeconds = end.Sub(t.started).Seconds()
	return res
}
