package builder

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

type recordingRebuilder struct {
	calls  int
	fields []model.FieldDefinition
}

func (r *recordingRebuilder) Rebuild(fields []model.FieldDefinition) {
	r.calls++
	r.fields = fields
}

func assertInvariants(t *testing.T, fields []model.FieldDefinition) {
	t.Helper()
	require.NoError(t, model.CheckStructure(fields))
	for i, field := range fields {
		assert.Equal(t, i, field.Order, "order must match list position")
	}
}

func TestInsertFromPaletteAssignsUniqueNames(t *testing.T) {
	t.Parallel()

	b := New()
	first := b.InsertFromPalette(fieldtype.TypeText, 0)
	second := b.InsertFromPalette(fieldtype.TypeText, 1)

	require.NotEqual(t, first.FieldName, second.FieldName)
	assertInvariants(t, b.Fields())
}

func TestInsertFromPaletteUnknownTypeFallsBackToText(t *testing.T) {
	t.Parallel()

	b := New()
	def := b.InsertFromPalette("quantum-widget", 0)

	assert.Equal(t, fieldtype.TypeText, def.FieldType)
	assert.Empty(t, def.Options)
	assert.Equal(t, 1, b.Len())
}

func TestInsertSeedsOptionsForOptionTypes(t *testing.T) {
	t.Parallel()

	b := New()
	def := b.InsertFromPalette(fieldtype.TypeSelect, 0)
	require.NotEmpty(t, def.Options)
}

func TestInsertClampsIndex(t *testing.T) {
	t.Parallel()

	b := New()
	b.InsertFromPalette(fieldtype.TypeText, -5)
	b.InsertFromPalette(fieldtype.TypeNumber, 99)

	fields := b.Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, fieldtype.TypeText, fields[0].FieldType)
	assert.Equal(t, fieldtype.TypeNumber, fields[1].FieldType)
}

func TestMovePreservesRelativeOrderOfUntouchedFields(t *testing.T) {
	t.Parallel()

	b := New()
	for range [4]struct{}{} {
		b.InsertFromPalette(fieldtype.TypeText, b.Len())
	}
	names := func() []string {
		var out []string
		for _, f := range b.Fields() {
			out = append(out, f.FieldName)
		}
		return out
	}

	before := names()
	require.NoError(t, b.Move(0, 2))
	after := names()

	assert.Equal(t, []string{before[1], before[2], before[0], before[3]}, after)
	assertInvariants(t, b.Fields())
}

func TestMoveOutOfRangeErrors(t *testing.T) {
	t.Parallel()

	b := New()
	b.InsertFromPalette(fieldtype.TypeText, 0)
	require.Error(t, b.Move(0, 3))
	require.Error(t, b.Move(-1, 0))
}

func TestRemoveRenumbers(t *testing.T) {
	t.Parallel()

	b := New()
	for range [3]struct{}{} {
		b.InsertFromPalette(fieldtype.TypeText, b.Len())
	}
	removed, err := b.Remove(1)
	require.NoError(t, err)
	require.NotEmpty(t, removed.FieldName)
	assertInvariants(t, b.Fields())
	assert.Equal(t, 2, b.Len())
}

func TestRandomizedMutationSequenceKeepsInvariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	palette := []string{
		fieldtype.TypeText, fieldtype.TypeNumber, fieldtype.TypeSelect,
		fieldtype.TypeAddress, fieldtype.TypeCalculation, "bogus",
	}

	b := New()
	for i := 0; i < 200; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || b.Len() == 0:
			b.InsertFromPalette(palette[rng.Intn(len(palette))], rng.Intn(b.Len()+1))
		case op == 1:
			require.NoError(t, b.Move(rng.Intn(b.Len()), rng.Intn(b.Len())))
		default:
			_, err := b.Remove(rng.Intn(b.Len()))
			require.NoError(t, err)
		}
		assertInvariants(t, b.Fields())
	}
}

func TestMutationsTriggerRebuildAndEvents(t *testing.T) {
	t.Parallel()

	rebuilder := &recordingRebuilder{}
	var events []Event
	b := New(
		WithRebuilder(rebuilder),
		WithListener(func(e Event) { events = append(events, e) }),
	)
	initial := rebuilder.calls

	def := b.InsertFromPalette(fieldtype.TypeText, 0)
	b.InsertFromPalette(fieldtype.TypeNumber, 1)
	require.NoError(t, b.Move(0, 1))
	_, err := b.Remove(0)
	require.NoError(t, err)

	assert.Equal(t, initial+4, rebuilder.calls)
	require.Len(t, events, 4)
	assert.Equal(t, EventFieldAdded, events[0].Kind)
	assert.Equal(t, def.FieldName, events[0].FieldName)
	assert.Equal(t, EventFieldReordered, events[2].Kind)
	assert.Equal(t, EventFieldRemoved, events[3].Kind)
}

func TestUpdatePinsNameAndOrder(t *testing.T) {
	t.Parallel()

	b := New()
	def := b.InsertFromPalette(fieldtype.TypeText, 0)

	require.NoError(t, b.Update(0, func(f *model.FieldDefinition) {
		f.Label = "Renamed"
		f.FieldName = "hijacked"
		f.Order = 99
	}))

	fields := b.Fields()
	assert.Equal(t, "Renamed", fields[0].Label)
	assert.Equal(t, def.FieldName, fields[0].FieldName)
	assert.Equal(t, 0, fields[0].Order)
}

func TestSeededFieldsAreHealed(t *testing.T) {
	t.Parallel()

	b := New(WithFields([]model.FieldDefinition{
		{FieldType: fieldtype.TypeText, FieldName: "dup", Order: 7},
		{FieldType: fieldtype.TypeText, FieldName: "dup", Order: 7},
		{FieldType: fieldtype.TypeText, Label: "No Name", Order: 3},
	}))

	assertInvariants(t, b.Fields())
	assert.Equal(t, 3, b.Len())
}
