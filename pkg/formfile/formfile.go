// Package formfile serializes form definitions for storage and exchange and
// declares the persistence boundary the engine consumes. The engine never
// implements storage itself; FSStore exists as a reference implementation for
// tooling and tests.
package formfile

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/model"
)

// Document is one stored form: identity metadata plus the ordered field
// definition list.
type Document struct {
	ID      string                  `json:"id" yaml:"id"`
	Name    string                  `json:"name" yaml:"name"`
	Version string                  `json:"version,omitempty" yaml:"version,omitempty"`
	Fields  []model.FieldDefinition `json:"fields" yaml:"fields"`
}

// Parse decodes a document from JSON or YAML. Structural violations in the
// stored field list (non-dense order, duplicate names) are healed in place
// and logged rather than rejected: a stored form must always open.
func Parse(data []byte, logger *zap.Logger) (Document, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("formfile: empty document")
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("formfile: parse: invalid JSON or YAML")
		}
	}

	doc.Fields = heal(doc.Fields, logger)
	return doc, nil
}

// Encode serializes a document to YAML, the storage format used by form
// library templates.
func Encode(doc Document) ([]byte, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("formfile: encode: %w", err)
	}
	return out, nil
}

// EncodeJSON serializes a document to JSON, for API-facing exchange.
func EncodeJSON(doc Document) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("formfile: encode: %w", err)
	}
	return out, nil
}

// heal restores the dense-order and unique-name invariants on a stored field
// list. Fields are sorted by their stored order (stable for ties) and
// renumbered; colliding names get a unique suffix.
func heal(fields []model.FieldDefinition, logger *zap.Logger) []model.FieldDefinition {
	if len(fields) == 0 {
		return fields
	}
	if err := model.CheckStructure(fields); err != nil {
		logger.Warn("formfile: healing structural violation in stored form", zap.Error(err))
	}

	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Order < fields[j].Order
	})

	seen := make(map[string]struct{}, len(fields))
	for i := range fields {
		name := fields[i].FieldName
		if name == "" {
			name = model.SlugifyFieldName(fields[i].Label)
		}
		if _, dup := seen[name]; dup || name == model.MetadataKey {
			name = model.UniqueFieldName(name, seen)
		}
		seen[name] = struct{}{}
		fields[i].FieldName = name
		fields[i].Order = i
	}
	return fields
}
