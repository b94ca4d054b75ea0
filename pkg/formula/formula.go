package formula

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrorSentinel is the value published into a calculation slot when its
// formula cannot be evaluated. It is deliberately a plain string so the slot
// stays displayable; normalization coerces it back to a numeric default.
const ErrorSentinel = "Erreur"

// refPattern matches field references inside formula text. The token
// `field_<name>` resolves to the slot named <name>.
var refPattern = regexp.MustCompile(`field_[A-Za-z0-9_]+`)

// whitelist holds every rune allowed in a substituted expression. The check
// runs over the substituted string, after field references were replaced with
// numeric literals, so no identifier or operator smuggled through a slot
// value can reach the parser.
const whitelist = "0123456789+-*/.() "

// Compiled is a formula parsed once at watch time: the raw text plus the
// dependency set extracted from its field references.
type Compiled struct {
	raw  string
	refs []string
}

// Compile extracts the field references from the formula text. The returned
// dependency set drives the explicit dependency graph: only computed fields
// referencing a changed slot re-evaluate.
func Compile(raw string) Compiled {
	raw = strings.TrimSpace(raw)
	compiled := Compiled{raw: raw}

	seen := make(map[string]struct{})
	for _, match := range refPattern.FindAllString(raw, -1) {
		name := strings.TrimPrefix(match, "field_")
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		compiled.refs = append(compiled.refs, name)
	}
	return compiled
}

// Empty reports whether there is any formula text to evaluate.
func (c Compiled) Empty() bool { return c.raw == "" }

// Refs returns the referenced slot names in first-appearance order.
func (c Compiled) Refs() []string {
	return append([]string(nil), c.refs...)
}

// Evaluate substitutes the current dependency values, enforces the arithmetic
// whitelist over the substituted string, and evaluates the result, rounded to
// two decimals. Missing or non-numeric dependency values coerce to 0.
func (c Compiled) Evaluate(values map[string]any) (float64, error) {
	if c.Empty() {
		return 0, fmt.Errorf("formula: empty formula")
	}

	substituted := refPattern.ReplaceAllStringFunc(c.raw, func(match string) string {
		name := strings.TrimPrefix(match, "field_")
		value, ok := values[name]
		if !ok {
			// allow slots literally named with the field_ prefix
			value = values[match]
		}
		return strconv.FormatFloat(coerceNumber(value), 'f', -1, 64)
	})

	for _, r := range substituted {
		if !strings.ContainsRune(whitelist, r) {
			return 0, fmt.Errorf("formula: forbidden character %q after substitution", string(r))
		}
	}

	result, err := evaluateExpression(substituted)
	if err != nil {
		return 0, err
	}
	return Round2(result), nil
}

// SafeEval evaluates a standalone arithmetic expression with no field
// references, applying the same whitelist and grammar as formula evaluation.
func SafeEval(expr string) (float64, error) {
	for _, r := range expr {
		if !strings.ContainsRune(whitelist, r) {
			return 0, fmt.Errorf("formula: forbidden character %q", string(r))
		}
	}
	return evaluateExpression(expr)
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func coerceNumber(value any) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
