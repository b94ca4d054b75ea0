package model

import "time"

// Option is one selectable choice for option-carrying field types and
// external list lookups.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// ValidationRules captures the declarative constraints an author can attach
// to a field. Nil pointers mean the constraint is absent; the control layer
// turns present constraints into validators.
type ValidationRules struct {
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Email     bool     `json:"email,omitempty" yaml:"email,omitempty"`
}

// Attribute keys used in FieldDefinition.Attributes. Attributes carry the
// type-specific payload that does not warrant a dedicated struct field.
const (
	AttrFormula      = "formula"
	AttrTableColumns = "tableColumns"
	AttrContent      = "content"
	AttrFileURL      = "fileUrl"
	AttrFileName     = "fileName"
	AttrFileMime     = "fileMime"
	AttrFileSize     = "fileSize"
	AttrExternalList = "externalListId"
)

// FieldDefinition describes one field instance inside a form. It is the unit
// the builder reorders, the control layer materializes slots from, and the
// normalization pipeline dispatches on. FieldName doubles as the slot key and
// the submission record key and must stay unique within a form.
type FieldDefinition struct {
	ID          string            `json:"id,omitempty" yaml:"id,omitempty"`
	FieldType   string            `json:"fieldType" yaml:"fieldType"`
	Label       string            `json:"label" yaml:"label"`
	FieldName   string            `json:"fieldName" yaml:"fieldName"`
	Placeholder string            `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool              `json:"required" yaml:"required"`
	Order       int               `json:"order" yaml:"order"`
	Options     []Option          `json:"options,omitempty" yaml:"options,omitempty"`
	Validation  ValidationRules   `json:"validation,omitempty" yaml:"validation,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Attribute returns the named attribute or the empty string when absent.
func (f FieldDefinition) Attribute(key string) string {
	if f.Attributes == nil {
		return ""
	}
	return f.Attributes[key]
}

// SetAttribute stores a type-specific attribute, allocating the map lazily.
func (f *FieldDefinition) SetAttribute(key, value string) {
	if f.Attributes == nil {
		f.Attributes = make(map[string]string)
	}
	f.Attributes[key] = value
}

// Clone returns a deep copy of the definition so builder mutations never
// alias stored documents.
func (f FieldDefinition) Clone() FieldDefinition {
	out := f
	if len(f.Options) > 0 {
		out.Options = append([]Option(nil), f.Options...)
	}
	if f.Validation.MinLength != nil {
		v := *f.Validation.MinLength
		out.Validation.MinLength = &v
	}
	if f.Validation.MaxLength != nil {
		v := *f.Validation.MaxLength
		out.Validation.MaxLength = &v
	}
	if f.Validation.Min != nil {
		v := *f.Validation.Min
		out.Validation.Min = &v
	}
	if f.Validation.Max != nil {
		v := *f.Validation.Max
		out.Validation.Max = &v
	}
	if len(f.Attributes) > 0 {
		out.Attributes = make(map[string]string, len(f.Attributes))
		for k, v := range f.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// MetadataKey is the reserved SubmissionRecord entry that carries submission
// metadata. No field may use it as a FieldName.
const MetadataKey = "_submission_metadata"

// SubmissionMetadata is stamped into every normalized record.
type SubmissionMetadata struct {
	SubmissionID string    `json:"submissionId"`
	Timestamp    time.Time `json:"timestamp"`
	UserID       int       `json:"userId,omitempty"`
	Locale       string    `json:"locale,omitempty"`
	FormVersion  string    `json:"formVersion,omitempty"`
}

// SubmissionRecord is the final exportable shape of one submit action, keyed
// by FieldName plus the reserved metadata entry. Records are immutable once
// produced; the map type is retained only for serialization ergonomics.
type SubmissionRecord map[string]any
