package formula

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/model"
)

// State is the engine's coarse lifecycle: Idle until fields are watched,
// Watching between evaluations, Evaluating/Published during one.
type State string

const (
	StateIdle       State = "idle"
	StateWatching   State = "watching"
	StateEvaluating State = "evaluating"
	StatePublished  State = "published"
)

// ValueGraph is the slice of the control graph the engine needs: read a
// snapshot of current values and publish computed results. *controls.Graph
// satisfies it.
type ValueGraph interface {
	Snapshot() map[string]any
	SetValue(key string, value any) error
}

// Engine re-evaluates calculation fields when their dependencies change. Each
// computed field declares its dependency set once at watch time; a change
// only touches the computed fields that reference the changed slot. Failures
// publish the error sentinel and are terminal for that change.
type Engine struct {
	mu       sync.Mutex
	graph    ValueGraph
	computed map[string]Compiled
	byDep    map[string][]string
	inFlight map[string]bool
	pending  map[string]struct{}
	timer    *time.Timer
	debounce time.Duration
	state    State
	logger   *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDebounce collapses bursts of dependency changes into one evaluation
// scheduled after the supplied delay. Zero (the default) evaluates inline;
// evaluation is idempotent either way.
func WithDebounce(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.debounce = d
		}
	}
}

// WithEngineLogger injects a logger used for evaluation diagnostics.
func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine constructs an engine over the supplied value graph. Call Watch
// with the current definition list, then feed it value changes (typically by
// registering NotifyChange as a graph watcher).
func NewEngine(graph ValueGraph, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:    graph,
		computed: make(map[string]Compiled),
		byDep:    make(map[string][]string),
		inFlight: make(map[string]bool),
		pending:  make(map[string]struct{}),
		state:    StateIdle,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Watch replaces the watched set with the calculation fields of the supplied
// definition list (fields carrying a non-empty formula attribute). Formulas
// are compiled once here; stale watches from removed fields are dropped.
func (e *Engine) Watch(fields []model.FieldDefinition) {
	e.mu.Lock()
	e.computed = make(map[string]Compiled)
	e.byDep = make(map[string][]string)
	for _, def := range fields {
		compiled := Compile(def.Attribute(model.AttrFormula))
		if compiled.Empty() {
			continue
		}
		e.computed[def.FieldName] = compiled
		for _, dep := range compiled.refs {
			e.byDep[dep] = append(e.byDep[dep], def.FieldName)
		}
	}
	if len(e.computed) > 0 {
		e.state = StateWatching
	} else {
		e.state = StateIdle
	}
	e.mu.Unlock()
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// NotifyChange reacts to one slot change. Self-writes never re-enter
// evaluation for the same field, and fields already evaluating in the current
// cascade are skipped, which bounds mutually referencing formulas. The value
// argument exists to satisfy the graph watcher signature.
func (e *Engine) NotifyChange(key string, _ any) {
	e.mu.Lock()
	affected := e.affectedLocked(key)
	if len(affected) == 0 {
		e.mu.Unlock()
		return
	}
	if e.debounce > 0 {
		for _, name := range affected {
			e.pending[name] = struct{}{}
		}
		if e.timer != nil {
			e.timer.Stop()
		}
		e.timer = time.AfterFunc(e.debounce, e.Flush)
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	e.evaluate(affected)
}

func (e *Engine) affectedLocked(key string) []string {
	var out []string
	for _, name := range e.byDep[key] {
		if name == key {
			continue
		}
		if e.inFlight[name] {
			continue
		}
		out = append(out, name)
	}
	return out
}

// Flush evaluates any pending debounced work immediately.
func (e *Engine) Flush() {
	e.mu.Lock()
	if len(e.pending) == 0 {
		e.mu.Unlock()
		return
	}
	names := make([]string, 0, len(e.pending))
	for name := range e.pending {
		names = append(names, name)
	}
	e.pending = make(map[string]struct{})
	e.mu.Unlock()
	e.evaluate(names)
}

// Stop cancels any scheduled debounce timer. Pending work is dropped; the
// next dependency change reschedules.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.pending = make(map[string]struct{})
	e.mu.Unlock()
}

// EvaluateAll evaluates every watched calculation field against the current
// graph snapshot, for example to prime computed slots when a filling session
// opens.
func (e *Engine) EvaluateAll() {
	e.mu.Lock()
	names := make([]string, 0, len(e.computed))
	for name := range e.computed {
		names = append(names, name)
	}
	e.mu.Unlock()
	e.evaluate(names)
}

// evaluate runs the Evaluating→Published cycle for each named field. Publish
// happens through the graph, which re-notifies watchers: dependent computed
// fields cascade, while the in-flight set keeps the cascade finite.
func (e *Engine) evaluate(names []string) {
	for _, name := range names {
		e.mu.Lock()
		compiled, watched := e.computed[name]
		if !watched || e.inFlight[name] {
			e.mu.Unlock()
			continue
		}
		e.inFlight[name] = true
		e.state = StateEvaluating
		e.mu.Unlock()

		values := e.graph.Snapshot()
		var publish any
		result, err := compiled.Evaluate(values)
		if err != nil {
			e.logger.Debug("formula: evaluation failed",
				zap.String("field", name), zap.Error(err))
			publish = ErrorSentinel
		} else {
			publish = result
		}
		if err := e.graph.SetValue(name, publish); err != nil {
			e.logger.Warn("formula: publish failed",
				zap.String("field", name), zap.Error(err))
		}

		e.mu.Lock()
		delete(e.inFlight, name)
		e.state = StatePublished
		if len(e.inFlight) == 0 {
			e.state = StateWatching
		}
		e.mu.Unlock()
	}
}
