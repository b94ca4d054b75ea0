package controls

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

// ValidationError is a per-field constraint failure. It blocks submission
// through the aggregate check only and is fully recoverable by user
// correction.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("controls: field %q: %s", e.Field, e.Message)
}

// Validator checks one constraint against a slot value. A nil return means
// the constraint holds.
type Validator func(value any) error

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// deriveValidators builds the validator set for one definition from its
// Required flag, its type, and its declared validation rules. Pattern rules
// that fail to compile are skipped; a broken author pattern must not make the
// whole field unvalidatable.
func deriveValidators(def model.FieldDefinition) []Validator {
	var out []Validator

	if def.Required {
		out = append(out, requiredValidator(def))
	}
	if def.FieldType == fieldtype.TypeEmail || def.Validation.Email {
		out = append(out, emailValidator(def))
	}
	if def.Validation.MinLength != nil {
		out = append(out, minLengthValidator(def, *def.Validation.MinLength))
	}
	if def.Validation.MaxLength != nil {
		out = append(out, maxLengthValidator(def, *def.Validation.MaxLength))
	}
	if pattern := strings.TrimSpace(def.Validation.Pattern); pattern != "" {
		if re, err := regexp.Compile(pattern); err == nil {
			out = append(out, patternValidator(def, re))
		}
	}
	if def.Validation.Min != nil {
		out = append(out, boundValidator(def, *def.Validation.Min, true))
	}
	if def.Validation.Max != nil {
		out = append(out, boundValidator(def, *def.Validation.Max, false))
	}

	return out
}

func requiredValidator(def model.FieldDefinition) Validator {
	return func(value any) error {
		if IsEmptyValue(def.FieldType, value) {
			return &ValidationError{Field: def.FieldName, Message: "value is required"}
		}
		return nil
	}
}

func emailValidator(def model.FieldDefinition) Validator {
	return func(value any) error {
		text := stringValue(value)
		if text == "" {
			return nil
		}
		if !emailPattern.MatchString(text) {
			return &ValidationError{Field: def.FieldName, Message: "invalid email address"}
		}
		return nil
	}
}

func minLengthValidator(def model.FieldDefinition, min int) Validator {
	return func(value any) error {
		text := stringValue(value)
		if text == "" {
			return nil
		}
		if len([]rune(text)) < min {
			return &ValidationError{Field: def.FieldName, Message: fmt.Sprintf("must be at least %d characters", min)}
		}
		return nil
	}
}

func maxLengthValidator(def model.FieldDefinition, max int) Validator {
	return func(value any) error {
		text := stringValue(value)
		if len([]rune(text)) > max {
			return &ValidationError{Field: def.FieldName, Message: fmt.Sprintf("must be at most %d characters", max)}
		}
		return nil
	}
}

func patternValidator(def model.FieldDefinition, re *regexp.Regexp) Validator {
	return func(value any) error {
		text := stringValue(value)
		if text == "" {
			return nil
		}
		if !re.MatchString(text) {
			return &ValidationError{Field: def.FieldName, Message: "value does not match the expected pattern"}
		}
		return nil
	}
}

func boundValidator(def model.FieldDefinition, bound float64, lower bool) Validator {
	return func(value any) error {
		num, ok := numericValue(value)
		if !ok {
			return nil
		}
		if lower && num < bound {
			return &ValidationError{Field: def.FieldName, Message: fmt.Sprintf("must be at least %v", bound)}
		}
		if !lower && num > bound {
			return &ValidationError{Field: def.FieldName, Message: fmt.Sprintf("must be at most %v", bound)}
		}
		return nil
	}
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
