// Package extlist is the external option list boundary. External-list fields
// reference a named list by id; a Provider resolves the id to options at
// render or fill time. The engine never bundles list data itself.
package extlist

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Provider resolves a list id to its options.
type Provider interface {
	ListItems(ctx context.Context, listID string) ([]model.Option, error)
}

// StaticProvider serves options from an in-memory table. It is the reference
// implementation used by tooling and tests; production providers typically
// wrap an HTTP client or database.
type StaticProvider struct {
	mu    sync.RWMutex
	lists map[string][]model.Option
}

// NewStaticProvider constructs an empty provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{lists: make(map[string][]model.Option)}
}

// SetList installs or replaces the options for a list id.
func (p *StaticProvider) SetList(listID string, options []model.Option) {
	listID = strings.TrimSpace(listID)
	if listID == "" {
		return
	}
	copied := make([]model.Option, len(options))
	copy(copied, options)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists[listID] = copied
}

// ListIDs returns the known list ids in sorted order.
func (p *StaticProvider) ListIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.lists))
	for id := range p.lists {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListItems returns a copy of the options for listID.
func (p *StaticProvider) ListItems(ctx context.Context, listID string) ([]model.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	options, ok := p.lists[strings.TrimSpace(listID)]
	if !ok {
		return nil, fmt.Errorf("extlist: unknown list %q", listID)
	}
	out := make([]model.Option, len(options))
	copy(out, options)
	return out, nil
}

// Resolve fetches the options referenced by an external-list field. The list
// id comes from the field's external list attribute.
func Resolve(ctx context.Context, provider Provider, def model.FieldDefinition) ([]model.Option, error) {
	if provider == nil {
		return nil, fmt.Errorf("extlist: provider is required")
	}
	listID := strings.TrimSpace(def.Attribute(model.AttrExternalList))
	if listID == "" {
		return nil, fmt.Errorf("extlist: field %q has no list reference", def.FieldName)
	}
	return provider.ListItems(ctx, listID)
}

// ResolveLabel maps a stored submission value back to its display label.
// Unknown values are returned unchanged so stale submissions stay readable.
func ResolveLabel(ctx context.Context, provider Provider, def model.FieldDefinition, value string) string {
	options, err := Resolve(ctx, provider, def)
	if err != nil {
		return value
	}
	for _, option := range options {
		if option.Value == value {
			return option.Label
		}
	}
	return value
}
