package controls

import (
	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

// DefaultValue returns the initial slot value for a field type. The table is
// the single source of truth for what "empty" means per type: list types get
// an empty list (never a scalar), numeric types zero, binary capture types
// nil, everything else the empty string. Unknown types follow the generic
// text contract.
func DefaultValue(fieldType string) any {
	switch fieldType {
	case fieldtype.TypeCheckbox, fieldtype.TypeMultiSelect:
		return []string{}
	case fieldtype.TypeNumber, fieldtype.TypeSlider, fieldtype.TypeRating:
		return float64(0)
	case fieldtype.TypeFile, fieldtype.TypeImage, fieldtype.TypeSignature, fieldtype.TypeDrawing:
		return nil
	case fieldtype.TypeGeolocation, fieldtype.TypeTable:
		return nil
	default:
		return ""
	}
}

// IsEmptyValue reports whether a slot value counts as "not filled" for its
// field type. Used by required validation and completion tracking. Nil,
// empty strings, and empty lists/maps are empty; numeric zero is not, since
// 0 is a legitimate typed answer. Callers that need to distinguish an
// untouched 0 from a typed one consult the slot's touched flag.
func IsEmptyValue(fieldType string, value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		_ = fieldType
		return false
	}
}

// compositeParts maps composite field types to their sibling slot suffixes,
// in slot order.
func compositeParts(fieldType string) []string {
	switch fieldType {
	case fieldtype.TypeAddress:
		return []string{"street", "city", "zip", "country"}
	case fieldtype.TypeContact:
		return []string{"name", "phone", "email"}
	default:
		return nil
	}
}

// IsComposite reports whether the type expands into sibling slots.
func IsComposite(fieldType string) bool {
	return len(compositeParts(fieldType)) > 0
}

// CompositeSlotNames returns the suffixed sibling slot keys for a composite
// field definition, in slot order. Non-composite types return nil.
func CompositeSlotNames(def model.FieldDefinition) []string {
	parts := compositeParts(def.FieldType)
	if len(parts) == 0 {
		return nil
	}
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, def.FieldName+"_"+part)
	}
	return out
}
