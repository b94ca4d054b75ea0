package model

import "fmt"

// StructuralError reports a broken form-level invariant (duplicate field
// name, non-dense order). These must not occur by construction; observing one
// means a stored document or an external caller bypassed the builder. The
// policy is log plus best-effort self-healing, never a hard failure.
type StructuralError struct {
	Reason string
	Field  string
}

func (e *StructuralError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("model: structural invariant violated for %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("model: structural invariant violated: %s", e.Reason)
}

// CheckStructure verifies the dense-order and unique-name invariants over a
// definition list. It returns the first violation found, or nil.
func CheckStructure(fields []FieldDefinition) error {
	seen := make(map[string]struct{}, len(fields))
	orders := make(map[int]struct{}, len(fields))
	for _, field := range fields {
		if field.FieldName == "" {
			return &StructuralError{Reason: "empty field name"}
		}
		if field.FieldName == MetadataKey {
			return &StructuralError{Reason: "field name collides with reserved metadata key", Field: field.FieldName}
		}
		if _, dup := seen[field.FieldName]; dup {
			return &StructuralError{Reason: "duplicate field name", Field: field.FieldName}
		}
		seen[field.FieldName] = struct{}{}

		if field.Order < 0 || field.Order >= len(fields) {
			return &StructuralError{Reason: fmt.Sprintf("order %d out of range", field.Order), Field: field.FieldName}
		}
		if _, dup := orders[field.Order]; dup {
			return &StructuralError{Reason: fmt.Sprintf("duplicate order %d", field.Order), Field: field.FieldName}
		}
		orders[field.Order] = struct{}{}
	}
	return nil
}
