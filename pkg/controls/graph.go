package controls

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/model"
)

// slot is the live editable state behind one record key: the current value,
// the touched flag, and the validators derived from the owning definition.
type slot struct {
	key        string
	fieldType  string
	signature  string
	value      any
	touched    bool
	required   bool
	validators []Validator

	// umbrella slots carry the sibling keys of their composite parts for
	// cross-field checks.
	umbrella bool
	parts    []string
}

// Graph is the live value graph for one editing or filling session: one slot
// per field, composites expanded into suffixed siblings plus an umbrella
// slot. The graph is rebuilt on structural changes and discarded when the
// session ends. One writer per form instance is assumed; the mutex only
// makes observation from test goroutines safe.
type Graph struct {
	mu       sync.RWMutex
	slots    map[string]*slot
	order    []string
	watchers []func(key string, value any)
	logger   *zap.Logger
}

// Option configures graph construction.
type Option func(*Graph)

// WithLogger injects a logger for structural diagnostics. The default is a
// no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Build materializes a fresh graph from the definition list. Every field
// produces one slot (composites several) initialized from the type default
// table with validators derived from the definition.
func Build(fields []model.FieldDefinition, opts ...Option) *Graph {
	g := &Graph{
		slots:  make(map[string]*slot),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.populate(fields, nil)
	return g
}

// Rebuild regenerates the slot set for the supplied definition list while
// preserving the value and touched state of every slot whose field was not
// structurally changed. Rebuilding with an unchanged list is idempotent.
func (g *Graph) Rebuild(fields []model.FieldDefinition) {
	g.mu.Lock()
	previous := g.slots
	g.slots = make(map[string]*slot)
	g.order = nil
	g.populate(fields, previous)
	g.mu.Unlock()
}

// populate fills g.slots/g.order; callers hold the write lock (Build runs
// before the graph escapes).
func (g *Graph) populate(fields []model.FieldDefinition, previous map[string]*slot) {
	for _, def := range fields {
		if def.FieldName == "" || def.FieldName == model.MetadataKey {
			g.logger.Warn("controls: skipping slot with invalid field name",
				zap.String("fieldName", def.FieldName))
			continue
		}
		if _, dup := g.slots[def.FieldName]; dup {
			g.logger.Warn("controls: duplicate field name, keeping first slot",
				zap.String("fieldName", def.FieldName))
			continue
		}

		if parts := CompositeSlotNames(def); len(parts) > 0 {
			umbrella := &slot{
				key:       def.FieldName,
				fieldType: def.FieldType,
				signature: def.FieldType,
				value:     nil,
				required:  def.Required,
				umbrella:  true,
				parts:     parts,
			}
			g.adopt(umbrella, previous)
			for _, partKey := range parts {
				sibling := &slot{
					key:       partKey,
					fieldType: def.FieldType,
					signature: def.FieldType + "/part",
					value:     "",
				}
				g.adopt(sibling, previous)
			}
			continue
		}

		s := &slot{
			key:        def.FieldName,
			fieldType:  def.FieldType,
			signature:  def.FieldType,
			value:      DefaultValue(def.FieldType),
			required:   def.Required,
			validators: deriveValidators(def),
		}
		g.adopt(s, previous)
	}
}

// adopt installs a slot, carrying value and touched state over from a
// previous slot with the same key and structural signature.
func (g *Graph) adopt(s *slot, previous map[string]*slot) {
	if prev, ok := previous[s.key]; ok && prev.signature == s.signature {
		s.value = prev.value
		s.touched = prev.touched
	}
	g.slots[s.key] = s
	g.order = append(g.order, s.key)
}

// Keys returns every slot key in field order, composite siblings included.
func (g *Graph) Keys() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Has reports whether a slot exists for the supplied key.
func (g *Graph) Has(key string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.slots[key]
	return ok
}

// Value returns the current value of a slot.
func (g *Graph) Value(key string) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.slots[key]
	if !ok {
		return nil, false
	}
	return s.value, true
}

// SetValue updates a slot in place (no rebuild), marks it touched, and
// notifies change watchers. Unknown keys return an error so widget wiring
// bugs surface instead of silently dropping input.
func (g *Graph) SetValue(key string, value any) error {
	g.mu.Lock()
	s, ok := g.slots[key]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("controls: no slot for field %q", key)
	}
	s.value = value
	s.touched = true
	watchers := make([]func(string, any), len(g.watchers))
	copy(watchers, g.watchers)
	g.mu.Unlock()

	for _, watch := range watchers {
		watch(key, value)
	}
	return nil
}

// Touch marks a slot as visited without changing its value.
func (g *Graph) Touch(key string) {
	g.mu.Lock()
	if s, ok := g.slots[key]; ok {
		s.touched = true
	}
	g.mu.Unlock()
}

// Touched reports whether the slot has been interacted with.
func (g *Graph) Touched(key string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s, ok := g.slots[key]
	return ok && s.touched
}

// OnChange registers a watcher invoked after every SetValue. Watchers run on
// the writer's goroutine in registration order.
func (g *Graph) OnChange(fn func(key string, value any)) {
	if fn == nil {
		return
	}
	g.mu.Lock()
	g.watchers = append(g.watchers, fn)
	g.mu.Unlock()
}

// Snapshot copies the current slot values keyed by slot key.
func (g *Graph) Snapshot() map[string]any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]any, len(g.slots))
	for key, s := range g.slots {
		out[key] = s.value
	}
	return out
}

// Validate runs one slot's validators and returns the first failure.
func (g *Graph) Validate(key string) error {
	g.mu.RLock()
	s, ok := g.slots[key]
	g.mu.RUnlock()
	if !ok {
		return fmt.Errorf("controls: no slot for field %q", key)
	}
	return g.validateSlot(s)
}

func (g *Graph) validateSlot(s *slot) error {
	if s.umbrella {
		if !s.required {
			return nil
		}
		for _, partKey := range s.parts {
			if value, ok := g.Value(partKey); ok && !IsEmptyValue(s.fieldType, value) {
				return nil
			}
		}
		return &ValidationError{Field: s.key, Message: "value is required"}
	}
	for _, validate := range s.validators {
		if err := validate(s.value); err != nil {
			return err
		}
	}
	return nil
}

// Summary aggregates per-field validation results for the submit-time check.
type Summary struct {
	Errors map[string][]string
	Count  int
}

// Valid reports whether the submit action may proceed.
func (s Summary) Valid() bool { return s.Count == 0 }

// ValidateAll checks every slot and aggregates failures. Per-slot failures
// never stop the sweep; the summary is the only submit blocker.
func (g *Graph) ValidateAll() Summary {
	g.mu.RLock()
	keys := append([]string(nil), g.order...)
	g.mu.RUnlock()

	summary := Summary{Errors: make(map[string][]string)}
	for _, key := range keys {
		g.mu.RLock()
		s, ok := g.slots[key]
		g.mu.RUnlock()
		if !ok {
			continue
		}
		if err := g.validateSlot(s); err != nil {
			summary.Errors[key] = append(summary.Errors[key], err.Error())
			summary.Count++
		}
	}
	if len(summary.Errors) == 0 {
		summary.Errors = nil
	}
	return summary
}
