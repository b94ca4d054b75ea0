package formula

import (
	"testing"
)

func TestSafeEvalPrecedence(t *testing.T) {
	t.Parallel()

	got, err := SafeEval("2+2*3")
	if err != nil {
		t.Fatalf("SafeEval returned error: %v", err)
	}
	if got != 8 {
		t.Fatalf("expected 8, got %v", got)
	}
}

func TestSafeEvalRejectsNonArithmetic(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{
		"2;DROP",
		"__import__('os')",
		"a+b",
		"1+eval(2)",
	} {
		if _, err := SafeEval(expr); err == nil {
			t.Fatalf("expected rejection of %q", expr)
		}
	}
}

func TestSafeEvalParensAndUnary(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"(2+3)*4":   20,
		"-3+5":      2,
		"2*-3":      -6,
		"10/4":      2.5,
		" 1 + 2 ":   3,
		"((1))+1.5": 2.5,
	}
	for expr, want := range cases {
		got, err := SafeEval(expr)
		if err != nil {
			t.Fatalf("SafeEval(%q) returned error: %v", expr, err)
		}
		if got != want {
			t.Fatalf("SafeEval(%q) = %v, want %v", expr, got, want)
		}
	}
}

func TestSafeEvalDivisionByZero(t *testing.T) {
	t.Parallel()

	if _, err := SafeEval("1/0"); err == nil {
		t.Fatalf("expected division error")
	}
}

func TestSafeEvalMalformedSyntax(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"", "1+", "(1+2", "1 2", "*3", "1..2"} {
		if _, err := SafeEval(expr); err == nil {
			t.Fatalf("expected parse error for %q", expr)
		}
	}
}

func TestCompileExtractsDependencies(t *testing.T) {
	t.Parallel()

	compiled := Compile("field_unit_price * field_qty + field_qty")
	refs := compiled.Refs()
	if len(refs) != 2 {
		t.Fatalf("expected 2 unique refs, got %v", refs)
	}
	if refs[0] != "unit_price" || refs[1] != "qty" {
		t.Fatalf("unexpected refs: %v", refs)
	}
}

func TestEvaluateSubstitutesAndRounds(t *testing.T) {
	t.Parallel()

	compiled := Compile("field_a/field_b")
	got, err := compiled.Evaluate(map[string]any{"a": 10.0, "b": 3.0})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if got != 3.33 {
		t.Fatalf("expected 3.33, got %v", got)
	}
}

func TestEvaluateIsPureForSnapshot(t *testing.T) {
	t.Parallel()

	compiled := Compile("field_a*field_b")
	values := map[string]any{"a": 1.1, "b": 3.0}
	first, err := compiled.Evaluate(values)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	second, err := compiled.Evaluate(values)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if first != second {
		t.Fatalf("same snapshot produced %v then %v", first, second)
	}
}

func TestEvaluateCoercesMissingAndNonNumericToZero(t *testing.T) {
	t.Parallel()

	compiled := Compile("field_a+field_missing")
	got, err := compiled.Evaluate(map[string]any{"a": "7.5", "other": "noise"})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if got != 7.5 {
		t.Fatalf("expected 7.5, got %v", got)
	}
}

func TestWhitelistEnforcedAfterSubstitution(t *testing.T) {
	t.Parallel()

	// An injection attempt riding in through a slot value never reaches the
	// parser as text: coercion reduces it to 0 and the post-substitution
	// whitelist would reject any surviving identifier.
	malicious := Compile("field_a+1")
	got, err := malicious.Evaluate(map[string]any{"a": "system('rm')"})
	if err != nil {
		t.Fatalf("non-numeric coerces to zero, got error %v", err)
	}
	if got != 1 {
		t.Fatalf("expected 1, got %v", got)
	}

	// Formula text that itself smuggles characters outside the whitelist is
	// rejected after substitution.
	smuggled := Compiled{raw: "field_a+len(x)"}
	if _, err := smuggled.Evaluate(map[string]any{"a": 3.0}); err == nil {
		t.Fatalf("expected forbidden character rejection")
	}
}
