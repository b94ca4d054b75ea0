package formula

import (
	"testing"
	"time"

	"github.com/goliatone/go-formkit/pkg/controls"
	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

func calcForm() []model.FieldDefinition {
	return []model.FieldDefinition{
		{FieldType: fieldtype.TypeNumber, FieldName: "a", Order: 0},
		{FieldType: fieldtype.TypeNumber, FieldName: "b", Order: 1},
		{FieldType: fieldtype.TypeCalculation, FieldName: "sum", Order: 2,
			Attributes: map[string]string{model.AttrFormula: "field_a+field_b"}},
	}
}

func TestEngineRecomputesOnDependencyChange(t *testing.T) {
	t.Parallel()

	graph := controls.Build(calcForm())
	engine := NewEngine(graph)
	engine.Watch(calcForm())
	graph.OnChange(engine.NotifyChange)

	if err := graph.SetValue("a", 3.0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := graph.SetValue("b", 4.0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	value, ok := graph.Value("sum")
	if !ok {
		t.Fatalf("sum slot missing")
	}
	if value != 7.0 {
		t.Fatalf("expected 7, got %v", value)
	}
	if engine.State() != StateWatching {
		t.Fatalf("expected watching state, got %q", engine.State())
	}
}

func TestEngineIgnoresUnrelatedChanges(t *testing.T) {
	t.Parallel()

	fields := append(calcForm(), model.FieldDefinition{
		FieldType: fieldtype.TypeText, FieldName: "note", Order: 3,
	})
	graph := controls.Build(fields)
	engine := NewEngine(graph)
	engine.Watch(fields)
	graph.OnChange(engine.NotifyChange)

	if err := graph.SetValue("note", "no numbers here"); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if value, _ := graph.Value("sum"); value != nil && value != "" {
		t.Fatalf("unrelated change must not publish, got %v", value)
	}
}

func TestEnginePublishesSentinelOnFailure(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{
		{FieldType: fieldtype.TypeNumber, FieldName: "a", Order: 0},
		{FieldType: fieldtype.TypeCalculation, FieldName: "bad", Order: 1,
			Attributes: map[string]string{model.AttrFormula: "field_a//"}},
	}
	graph := controls.Build(fields)
	engine := NewEngine(graph)
	engine.Watch(fields)
	graph.OnChange(engine.NotifyChange)

	if err := graph.SetValue("a", 2.0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if value, _ := graph.Value("bad"); value != ErrorSentinel {
		t.Fatalf("expected sentinel, got %v", value)
	}
}

func TestEngineSelfWriteDoesNotLoop(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{
		{FieldType: fieldtype.TypeNumber, FieldName: "x", Order: 0},
		{FieldType: fieldtype.TypeCalculation, FieldName: "echo", Order: 1,
			Attributes: map[string]string{model.AttrFormula: "field_echo+field_x"}},
	}
	graph := controls.Build(fields)
	engine := NewEngine(graph)
	engine.Watch(fields)
	graph.OnChange(engine.NotifyChange)

	// If self-writes re-entered evaluation this would never return.
	if err := graph.SetValue("x", 1.0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if value, _ := graph.Value("echo"); value != 1.0 {
		t.Fatalf("expected 1 (self reference coerces from prior empty), got %v", value)
	}
}

func TestEngineCascadesChainedCalculations(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{
		{FieldType: fieldtype.TypeNumber, FieldName: "base", Order: 0},
		{FieldType: fieldtype.TypeCalculation, FieldName: "double", Order: 1,
			Attributes: map[string]string{model.AttrFormula: "field_base*2"}},
		{FieldType: fieldtype.TypeCalculation, FieldName: "quad", Order: 2,
			Attributes: map[string]string{model.AttrFormula: "field_double*2"}},
	}
	graph := controls.Build(fields)
	engine := NewEngine(graph)
	engine.Watch(fields)
	graph.OnChange(engine.NotifyChange)

	if err := graph.SetValue("base", 5.0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if value, _ := graph.Value("double"); value != 10.0 {
		t.Fatalf("expected 10, got %v", value)
	}
	if value, _ := graph.Value("quad"); value != 20.0 {
		t.Fatalf("expected 20, got %v", value)
	}
}

func TestEngineDebounceCollapsesBursts(t *testing.T) {
	t.Parallel()

	graph := controls.Build(calcForm())
	engine := NewEngine(graph, WithDebounce(20*time.Millisecond))
	engine.Watch(calcForm())
	graph.OnChange(engine.NotifyChange)
	defer engine.Stop()

	for i := 1; i <= 5; i++ {
		if err := graph.SetValue("a", float64(i)); err != nil {
			t.Fatalf("SetValue: %v", err)
		}
	}
	if err := graph.SetValue("b", 10.0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	// Nothing published yet; the burst is pending.
	if value, _ := graph.Value("sum"); value != "" && value != nil {
		t.Fatalf("expected no publish before debounce, got %v", value)
	}

	engine.Flush()
	if value, _ := graph.Value("sum"); value != 15.0 {
		t.Fatalf("expected 15 after flush, got %v", value)
	}
}

func TestWatchDropsRemovedFields(t *testing.T) {
	t.Parallel()

	graph := controls.Build(calcForm())
	engine := NewEngine(graph)
	engine.Watch(calcForm())
	graph.OnChange(engine.NotifyChange)

	// Structural change removes the calculation field.
	remaining := calcForm()[:2]
	graph.Rebuild(remaining)
	engine.Watch(remaining)

	if err := graph.SetValue("a", 1.0); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if engine.State() != StateIdle {
		t.Fatalf("expected idle engine after calc removal, got %q", engine.State())
	}
}
