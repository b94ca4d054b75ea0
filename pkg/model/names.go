package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SlugifyFieldName derives a submission-safe field name from a human label:
// lower case, ASCII letters/digits/underscores, no leading digit. Empty or
// fully stripped labels fall back to "field".
func SlugifyFieldName(label string) string {
	trimmed := strings.TrimSpace(strings.ToLower(label))
	if trimmed == "" {
		return "field"
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "field"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "field_" + out
	}
	return out
}

// UniqueFieldName returns base when it is free, otherwise base plus a numeric
// suffix, and as a last resort a short random suffix. taken holds the names
// already claimed by the form; the reserved metadata key is always taken.
func UniqueFieldName(base string, taken map[string]struct{}) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "field"
	}

	free := func(name string) bool {
		if name == MetadataKey {
			return false
		}
		_, claimed := taken[name]
		return !claimed
	}

	if free(base) {
		return base
	}
	for i := 2; i <= 1000; i++ {
		candidate := fmt.Sprintf("%s_%d", base, i)
		if free(candidate) {
			return candidate
		}
	}
	return fmt.Sprintf("%s_%s", base, uuid.NewString()[:8])
}

// FieldNames collects the names of the supplied definitions into a set.
func FieldNames(fields []FieldDefinition) map[string]struct{} {
	out := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		out[field.FieldName] = struct{}{}
	}
	return out
}
