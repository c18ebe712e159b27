package domain

import (
	"time"
)

// ThoughtKind classifies an entry in the reasoning trace
type ThoughtKind string

const (
	ThoughtInitial     ThoughtKind = "initial"
	ThoughtObservation ThoughtKind = "observation"
	ThoughtReasoning   ThoughtKind = "reasoning"
	ThoughtPlanning    ThoughtKind = "planning"
	ThoughtEvaluation  ThoughtKind = "evaluation"
	ThoughtConclusion  ThoughtKind = "conclusion"
)

// ActionKind identifies the operation an action performs
type ActionKind string

const (
	ActionSearch   ActionKind = "search"
	ActionExtract  ActionKind = "extract"
	ActionChunk    ActionKind = "chunk"
	ActionMemorize ActionKind = "memorize"
	ActionCache    ActionKind = "cache"
	ActionFallback ActionKind = "fallback"
	ActionComplete ActionKind = "complete"
)

// Thought is an append-only trace entry
type Thought struct {
	Kind      ThoughtKind       `json:"kind"`
	Text      string            `json:"text"`
	Timestamp time.Time         `json:"timestamp"`
	Tags      map[string]string `json:"tags,omitempty"`
}

// ActionParams carries the inputs of an action. Only the fields relevant
// to the action kind are set.
type ActionParams struct {
	// SEARCH
	Query      string       `json:"query,omitempty"`
	Sources    []ProviderID `json:"sources,omitempty"`
	MaxResults int          `json:"max_results,omitempty"`

	// EXTRACT
	URL          string `json:"url,omitempty"`
	PreserveCode bool   `json:"preserve_code,omitempty"`

	// CHUNK
	Content      string        `json:"content,omitempty"`
	Strategy     ChunkStrategy `json:"strategy,omitempty"`
	ChunkSize    int           `json:"chunk_size,omitempty"`
	ChunkOverlap int           `json:"chunk_overlap,omitempty"`

	// MEMORIZE
	Record *MemoryRecord `json:"record,omitempty"`

	// CACHE
	Data any `json:"data,omitempty"`
	TTL  int `json:"ttl,omitempty"`
}

// Action is a planned operation. Its outcome is set exactly once.
type Action struct {
	ID        int          `json:"id"`
	Kind      ActionKind   `json:"kind"`
	Params    ActionParams `json:"params"`
	Timestamp time.Time    `json:"timestamp"`
	Result    any          `json:"result,omitempty"`
	Error     string       `json:"error,omitempty"`

	executed bool
}

// NewAction creates a pending action
func NewAction(id int, kind ActionKind, params ActionParams, now time.Time) *Action {
	return &Action{
		ID:        id,
		Kind:      kind,
		Params:    params,
		Timestamp: now,
	}
}

// Complete records the outcome of executing the action.
// Returns ErrActionAlreadyExecuted if an outcome was already recorded.
func (a *Action) Complete(result any, err error) error {
	if a.executed {
		return ErrActionAlreadyExecuted
	}
	a.executed = true
	if err != nil {
		a.Error = err.Error()
		return nil
	}
	a.Result = result
	return nil
}

// Executed reports whether an outcome has been recorded
func (a *Action) Executed() bool {
	return a.executed
}

// Succeeded reports whether the action executed without error
func (a *Action) Succeeded() bool {
	return a.executed && a.Error == ""
}

// Observation is the scored outcome of one executed action
type Observation struct {
	Action    *Action   `json:"-"`
	Summary   string    `json:"text"`
	Quality   float64   `json:"quality"`
	Timestamp time.Time `json:"timestamp"`
	HasError  bool      `json:"has_error"`
}

// LoopState is the reasoning loop's position in its state machine
type LoopState string

const (
	LoopStarted          LoopState = "started"
	LoopPlanning         LoopState = "planning"
	LoopExecuting        LoopState = "executing"
	LoopEvaluating       LoopState = "evaluating"
	LoopConcludedSuccess LoopState = "concluded_success"
	LoopConcludedEmpty   LoopState = "concluded_empty"
)

// IsTerminal reports whether the loop has stopped
func (s LoopState) IsTerminal() bool {
	return s == LoopConcludedSuccess || s == LoopConcludedEmpty
}

// Loop defaults
const (
	DefaultMaxResults          = 10
	DefaultMaxExtractions      = 3
	DefaultMinGoodResults      = 1
	DefaultMaxIterations       = 5
	DefaultMinQualityThreshold = 0.7

	// DefaultExtractMinGoodResults is the threshold extract and analyze research
	// runs use: the search plus at least one extracted page
	DefaultExtractMinGoodResults = 2

	// ExtractFanOut caps EXTRACT actions planned from one search
	ExtractFanOut = 3
)

// LoopContext configures one orchestration
type LoopContext struct {
	Sources             []ProviderID  `json:"sources"`
	FallbackChain       []ProviderID  `json:"fallback_chain"`
	MaxResults          int           `json:"max_results"`
	MaxExtractions      int           `json:"max_extractions"`
	ExtractMode         ExtractMode   `json:"extract_mode"`
	PreserveCode        bool          `json:"preserve_code"`
	Fallback            bool          `json:"fallback"`
	MinGoodResults      int           `json:"min_good_results"`
	MaxIterations       int           `json:"max_iterations"`
	MinQualityThreshold float64       `json:"min_quality_threshold"`
	Deadline            time.Duration `json:"deadline,omitempty"` // Zero means no overall deadline
}

// DefaultLoopContext returns sensible defaults
func DefaultLoopContext() LoopContext {
	return LoopContext{
		Sources:             []ProviderID{ProviderAuto},
		FallbackChain:       DefaultFallbackChain(),
		MaxResults:          DefaultMaxResults,
		MaxExtractions:      DefaultMaxExtractions,
		ExtractMode:         ExtractSmart,
		PreserveCode:        true,
		Fallback:            true,
		MinGoodResults:      DefaultMinGoodResults,
		MaxIterations:       DefaultMaxIterations,
		MinQualityThreshold: DefaultMinQualityThreshold,
	}
}

// Normalized fills unset fields with defaults. Booleans are taken as given.
func (c LoopContext) Normalized() LoopContext {
	d := DefaultLoopContext()
	if len(c.Sources) == 0 {
		c.Sources = d.Sources
	}
	if len(c.FallbackChain) == 0 {
		c.FallbackChain = d.FallbackChain
	}
	if c.MaxResults <= 0 {
		c.MaxResults = d.MaxResults
	}
	if c.MaxExtractions <= 0 {
		c.MaxExtractions = d.MaxExtractions
	}
	if c.ExtractMode == "" {
		c.ExtractMode = d.ExtractMode
	}
	if c.MinGoodResults <= 0 {
		c.MinGoodResults = d.MinGoodResults
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.MinQualityThreshold <= 0 || c.MinQualityThreshold > 1 {
		c.MinQualityThreshold = d.MinQualityThreshold
	}
	return c
}

// ThoughtSummary is the rendered form of a thought
type ThoughtSummary struct {
	Kind ThoughtKind `json:"type"`
	Text string      `json:"content"`
}

// ActionSummary is the rendered form of an action
type ActionSummary struct {
	Kind    ActionKind `json:"type"`
	Success bool       `json:"success"`
}

// ObservationSummary is the rendered form of an observation
type ObservationSummary struct {
	Text    string  `json:"content"`
	Quality float64 `json:"quality"`
}

// OrchestrationResult is the outcome of one reasoning loop run
type OrchestrationResult struct {
	Query           string               `json:"query"`
	Thoughts        []ThoughtSummary     `json:"thoughts"`
	Actions         []ActionSummary      `json:"actions"`
	Observations    []ObservationSummary `json:"observations"`
	Results         []any                `json:"results"`
	Iterations      int                  `json:"iterations"`
	DurationSeconds float64              `json:"duration_seconds"`
	Success         bool                 `json:"success"`
	State           LoopState            `json:"state"`
}
