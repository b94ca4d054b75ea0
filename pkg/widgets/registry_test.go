package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formkit/pkg/controls"
	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

func TestRegistryResolvesBuiltins(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	cases := map[string]string{
		fieldtype.TypeSignature: WidgetSignaturePad,
		fieldtype.TypeDrawing:   WidgetDrawingPad,
		fieldtype.TypeTable:     WidgetTableEditor,
		fieldtype.TypeFile:      WidgetFileCapture,
	}
	for fieldType, want := range cases {
		name, ok := registry.Resolve(model.FieldDefinition{FieldType: fieldType})
		require.True(t, ok, "field type %q should resolve", fieldType)
		assert.Equal(t, want, name)
	}

	_, ok := registry.Resolve(model.FieldDefinition{FieldType: fieldtype.TypeText})
	assert.False(t, ok, "plain inputs bind without a widget")
}

func TestRegistryPriorityAndOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	always := func(model.FieldDefinition) bool { return true }
	registry.Register("low", -1, always)
	registry.Register("high", 10, always)
	registry.Register("high-later", 10, always)

	name, ok := registry.Resolve(model.FieldDefinition{FieldType: fieldtype.TypeText})
	require.True(t, ok)
	assert.Equal(t, "high-later", name, "ties resolve to the latest registration")
}

func TestRegistryNames(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(WidgetFileCapture, 5, func(model.FieldDefinition) bool { return false })

	assert.Equal(t, []string{
		WidgetDrawingPad, WidgetFileCapture, WidgetSignaturePad, WidgetTableEditor,
	}, registry.Names())
}

func TestNewForFieldBindsSlot(t *testing.T) {
	t.Parallel()

	fields := []model.FieldDefinition{
		{FieldType: fieldtype.TypeTable, FieldName: "readings", Order: 0,
			Attributes: map[string]string{model.AttrTableColumns: "sensor,value"}},
	}
	graph := controls.Build(fields)

	widget, err := NewRegistry().NewForField(fields[0], graph)
	require.NoError(t, err)
	editor, ok := widget.(*TableEditor)
	require.True(t, ok, "table fields construct a *TableEditor")

	require.NoError(t, editor.SetCell(0, "sensor", "temp"))
	value, ok := graph.Value("readings")
	require.True(t, ok)
	table, ok := value.(TableValue)
	require.True(t, ok)
	assert.Equal(t, "temp", table.Data[0]["sensor"])
}

func TestNewForFieldUnhandledType(t *testing.T) {
	t.Parallel()

	graph := controls.Build(nil)
	_, err := NewRegistry().NewForField(model.FieldDefinition{FieldType: fieldtype.TypeText, FieldName: "a"}, graph)
	assert.Error(t, err)
}
