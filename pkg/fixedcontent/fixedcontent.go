// Package fixedcontent handles form-level fixed assets: author-configured
// text, files, and images echoed into every submission as an acknowledgement
// rather than collected from the user.
package fixedcontent

import (
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// SanitizeText strips author-provided fixed text down to a safe inline
// subset. Script content, event handlers, and unknown elements are removed.
func SanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(textSanitizer().Sanitize(trimmed))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "i", "em", "strong", "u", "br", "p", "ul", "ol", "li")
		textPolicy = policy
	})
	return textPolicy
}

// IsFixed reports whether the field type is form-level fixed content whose
// submission value comes from definition attributes, not a slot.
func IsFixed(fieldType string) bool {
	switch fieldType {
	case fieldtype.TypeFixedText, fieldtype.TypeFileFixed, fieldtype.TypeImage:
		return true
	default:
		return false
	}
}

// Acknowledgement builds the submission record entry for a fixed-content
// field: the content (or file URL) from the definition attributes plus an
// acknowledged flag and timestamp.
func Acknowledgement(def model.FieldDefinition, now time.Time) map[string]any {
	out := map[string]any{
		"type":         def.FieldType,
		"acknowledged": true,
		"timestamp":    now.UTC().Format(time.RFC3339),
	}
	if def.FieldType == fieldtype.TypeFixedText {
		out["content"] = SanitizeText(def.Attribute(model.AttrContent))
	} else {
		out["fileUrl"] = def.Attribute(model.AttrFileURL)
	}
	return out
}
