package builder

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

// EventKind identifies a structural change emitted to listeners. Outer
// screens use these to refresh counters and badges; the engine itself never
// consumes them.
type EventKind string

const (
	EventFieldAdded     EventKind = "fieldAdded"
	EventFieldRemoved   EventKind = "fieldRemoved"
	EventFieldReordered EventKind = "fieldReordered"
)

// Event describes one structural change. From/To are list indices; To is -1
// for removals and From is -1 for insertions.
type Event struct {
	Kind      EventKind
	FieldName string
	From      int
	To        int
}

// Rebuilder receives the full definition list after every structural change.
// *controls.Graph satisfies it.
type Rebuilder interface {
	Rebuild(fields []model.FieldDefinition)
}

// Builder owns the ordered FieldDefinition list for one form under edit. All
// mutations keep Order dense 0..N-1 and field names unique, and trigger a
// control graph rebuild.
type Builder struct {
	mu        sync.Mutex
	fields    []model.FieldDefinition
	rebuilder Rebuilder
	listeners []func(Event)
	counter   int
	logger    *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithRebuilder wires the control graph (or any rebuilder) to structural
// changes.
func WithRebuilder(r Rebuilder) Option {
	return func(b *Builder) { b.rebuilder = r }
}

// WithListener registers a structural event listener.
func WithListener(fn func(Event)) Option {
	return func(b *Builder) {
		if fn != nil {
			b.listeners = append(b.listeners, fn)
		}
	}
}

// WithLogger injects a logger for structural diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithFields seeds the builder with an existing definition list, for example
// a stored form opened for editing. The list is cloned, renumbered when its
// order is not dense (logged as a structural violation), and de-duplicated on
// field name.
func WithFields(fields []model.FieldDefinition) Option {
	return func(b *Builder) {
		seen := make(map[string]struct{}, len(fields))
		for _, field := range fields {
			def := field.Clone()
			if def.FieldName == "" {
				def.FieldName = model.UniqueFieldName(model.SlugifyFieldName(def.Label), seen)
			}
			if _, dup := seen[def.FieldName]; dup {
				def.FieldName = model.UniqueFieldName(def.FieldName, seen)
			}
			seen[def.FieldName] = struct{}{}
			b.fields = append(b.fields, def)
		}
	}
}

// New constructs a Builder. The seeded list, if any, is self-healed into a
// dense order before the first rebuild.
func New(opts ...Option) *Builder {
	b := &Builder{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	if err := model.CheckStructure(b.fields); err != nil {
		b.logger.Warn("builder: healing structural violation in seeded fields", zap.Error(err))
	}
	b.renumber()
	if b.rebuilder != nil {
		b.rebuilder.Rebuild(b.snapshot())
	}
	return b
}

// Len returns the number of fields.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.fields)
}

// Fields returns a deep copy of the current definition list in order.
func (b *Builder) Fields() []model.FieldDefinition {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot()
}

// InsertFromPalette creates a definition for the supplied palette type and
// inserts it at atIndex (clamped to the list bounds). Unknown types fall back
// to a minimal generic text definition instead of failing the operation. The
// created definition is returned.
func (b *Builder) InsertFromPalette(paletteType string, atIndex int) model.FieldDefinition {
	desc, known := fieldtype.Lookup(paletteType)
	if !known {
		b.logger.Warn("builder: unknown palette type, falling back to text",
			zap.String("type", paletteType))
		desc = fieldtype.Descriptor{Type: fieldtype.TypeText, Label: "Field"}
	}

	def := model.FieldDefinition{
		FieldType: desc.Type,
		Label:     desc.Label,
	}
	if desc.HasOptions {
		def.Options = []model.Option{
			{Label: "Option 1", Value: "option_1"},
			{Label: "Option 2", Value: "option_2"},
		}
	}
	return b.InsertDefinition(def, atIndex)
}

// InsertDefinition inserts a prebuilt definition (library template, import)
// at atIndex. Missing or colliding field names are replaced with a fresh
// unique name; two fields with the same name never coexist.
func (b *Builder) InsertDefinition(def model.FieldDefinition, atIndex int) model.FieldDefinition {
	b.mu.Lock()
	def = def.Clone()
	b.counter++

	taken := model.FieldNames(b.fields)
	base := def.FieldName
	if base == "" {
		base = fmt.Sprintf("%s_%d", model.SlugifyFieldName(def.Label), b.counter)
	}
	def.FieldName = model.UniqueFieldName(base, taken)

	if atIndex < 0 {
		atIndex = 0
	}
	if atIndex > len(b.fields) {
		atIndex = len(b.fields)
	}
	b.fields = append(b.fields, model.FieldDefinition{})
	copy(b.fields[atIndex+1:], b.fields[atIndex:])
	b.fields[atIndex] = def
	b.renumber()
	fields := b.snapshot()
	b.mu.Unlock()

	b.afterMutation(fields, Event{Kind: EventFieldAdded, FieldName: def.FieldName, From: -1, To: atIndex})
	return def
}

// Move relocates the field at from to position to, preserving the relative
// order of every other field.
func (b *Builder) Move(from, to int) error {
	b.mu.Lock()
	if from < 0 || from >= len(b.fields) {
		b.mu.Unlock()
		return fmt.Errorf("builder: move source %d out of range", from)
	}
	if to < 0 || to >= len(b.fields) {
		b.mu.Unlock()
		return fmt.Errorf("builder: move target %d out of range", to)
	}
	if from == to {
		b.mu.Unlock()
		return nil
	}

	moved := b.fields[from]
	b.fields = append(b.fields[:from], b.fields[from+1:]...)
	b.fields = append(b.fields, model.FieldDefinition{})
	copy(b.fields[to+1:], b.fields[to:])
	b.fields[to] = moved
	b.renumber()
	fields := b.snapshot()
	b.mu.Unlock()

	b.afterMutation(fields, Event{Kind: EventFieldReordered, FieldName: moved.FieldName, From: from, To: to})
	return nil
}

// Remove deletes the field at atIndex and returns it.
func (b *Builder) Remove(atIndex int) (model.FieldDefinition, error) {
	b.mu.Lock()
	if atIndex < 0 || atIndex >= len(b.fields) {
		b.mu.Unlock()
		return model.FieldDefinition{}, fmt.Errorf("builder: remove index %d out of range", atIndex)
	}
	removed := b.fields[atIndex]
	b.fields = append(b.fields[:atIndex], b.fields[atIndex+1:]...)
	b.renumber()
	fields := b.snapshot()
	b.mu.Unlock()

	b.afterMutation(fields, Event{Kind: EventFieldRemoved, FieldName: removed.FieldName, From: atIndex, To: -1})
	return removed, nil
}

// Update applies an edit to the field at atIndex. FieldName and Order are
// pinned: the name may already be referenced by submitted records and the
// order is owned by Move. Type or option edits still rebuild the graph so
// slots pick up new defaults and validators.
func (b *Builder) Update(atIndex int, edit func(*model.FieldDefinition)) error {
	if edit == nil {
		return nil
	}
	b.mu.Lock()
	if atIndex < 0 || atIndex >= len(b.fields) {
		b.mu.Unlock()
		return fmt.Errorf("builder: update index %d out of range", atIndex)
	}
	def := b.fields[atIndex].Clone()
	name, order := def.FieldName, def.Order
	edit(&def)
	def.FieldName = name
	def.Order = order
	b.fields[atIndex] = def
	fields := b.snapshot()
	rebuilder := b.rebuilder
	b.mu.Unlock()

	if rebuilder != nil {
		rebuilder.Rebuild(fields)
	}
	return nil
}

func (b *Builder) snapshot() []model.FieldDefinition {
	out := make([]model.FieldDefinition, 0, len(b.fields))
	for _, field := range b.fields {
		out = append(out, field.Clone())
	}
	return out
}

// renumber restores the dense 0..N-1 order; callers hold the lock.
func (b *Builder) renumber() {
	for i := range b.fields {
		b.fields[i].Order = i
	}
}

func (b *Builder) afterMutation(fields []model.FieldDefinition, event Event) {
	if b.rebuilder != nil {
		b.rebuilder.Rebuild(fields)
	}
	for _, listener := range b.listeners {
		listener(event)
	}
}
