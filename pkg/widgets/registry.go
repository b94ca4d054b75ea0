package widgets

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formkit/pkg/controls"
	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetSignaturePad = "signature-pad"
	WidgetDrawingPad   = "drawing-pad"
	WidgetTableEditor  = "table-editor"
	WidgetFileCapture  = "file-capture"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(def model.FieldDefinition) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects capture widgets for fields based on registered matchers.
// Higher priority wins; ties fall back to registration order. Fields no rule
// matches resolve to no widget: plain inputs bind straight to their slot.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widget matchers
// registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence. Callers should avoid duplicate names; the
// latest registration wins during resolution.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name handling the field, or false when the field
// binds directly to its slot without a capture widget.
func (r *Registry) Resolve(def model.FieldDefinition) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	candidates := make([]rule, len(r.rules))
	copy(candidates, r.rules)
	r.mu.RUnlock()

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].priority != candidates[j].priority {
			return candidates[i].priority > candidates[j].priority
		}
		return candidates[i].order > candidates[j].order
	})
	for _, candidate := range candidates {
		if candidate.match(def) {
			return candidate.name, true
		}
	}
	return "", false
}

// Names returns the registered widget names, sorted and deduplicated.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.rules))
	names := make([]string, 0, len(r.rules))
	for _, candidate := range r.rules {
		if _, dup := seen[candidate.name]; dup {
			continue
		}
		seen[candidate.name] = struct{}{}
		names = append(names, candidate.name)
	}
	sort.Strings(names)
	return names
}

// NewForField constructs the resolved widget bound to the field's graph slot.
// The concrete type depends on the widget: *Pad, *TableEditor or
// *FileCapture.
func (r *Registry) NewForField(def model.FieldDefinition, graph *controls.Graph) (any, error) {
	name, ok := r.Resolve(def)
	if !ok {
		return nil, fmt.Errorf("widgets: no widget registered for field type %q", def.FieldType)
	}
	publish := SlotPublisher(graph, def.FieldName)
	switch name {
	case WidgetSignaturePad:
		return NewSignaturePad(0, 0, publish), nil
	case WidgetDrawingPad:
		return NewDrawingPad(0, 0, publish), nil
	case WidgetTableEditor:
		return NewTableEditor(ParseColumns(def.Attribute(model.AttrTableColumns)), publish), nil
	case WidgetFileCapture:
		return NewFileCapture(0, publish), nil
	default:
		return nil, fmt.Errorf("widgets: no constructor for widget %q", name)
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetSignaturePad, 0, matchType(fieldtype.TypeSignature))
	r.Register(WidgetDrawingPad, 0, matchType(fieldtype.TypeDrawing))
	r.Register(WidgetTableEditor, 0, matchType(fieldtype.TypeTable))
	r.Register(WidgetFileCapture, 0, matchType(fieldtype.TypeFile))
}

func matchType(fieldType string) Matcher {
	return func(def model.FieldDefinition) bool {
		return def.FieldType == fieldType
	}
}
