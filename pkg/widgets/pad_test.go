package widgets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formkit/pkg/controls"
	"github.com/goliatone/go-formkit/pkg/fieldtype"
	"github.com/goliatone/go-formkit/pkg/model"
)

func TestStrokePublishesImageIntoSlot(t *testing.T) {
	t.Parallel()

	graph := controls.Build([]model.FieldDefinition{
		{FieldType: fieldtype.TypeSignature, FieldName: "sig", Order: 0},
	})
	pad := NewSignaturePad(100, 100, SlotPublisher(graph, "sig"))

	pad.PointerDown(10, 10)
	pad.PointerMove(50, 50)
	require.NoError(t, pad.PointerUp())

	value, ok := graph.Value("sig")
	require.True(t, ok)
	encoded, ok := value.(string)
	require.True(t, ok, "slot should hold an image encoding, got %T", value)
	assert.True(t, strings.HasPrefix(encoded, "data:image/png;base64,"))
	assert.False(t, pad.Empty())

	require.NoError(t, pad.Clear())
	value, _ = graph.Value("sig")
	assert.Nil(t, value)
	assert.True(t, pad.Empty())
}

func TestPointerLeaveWhileStrokingActsAsUp(t *testing.T) {
	t.Parallel()

	var published []any
	pad := NewDrawingPad(50, 50, func(v any) error {
		published = append(published, v)
		return nil
	})

	pad.PointerDown(1, 1)
	pad.PointerMove(20, 20)
	require.NoError(t, pad.PointerLeave())
	require.Len(t, published, 1)
	assert.False(t, pad.Stroking())

	// Leaving while idle publishes nothing.
	require.NoError(t, pad.PointerLeave())
	assert.Len(t, published, 1)
}

func TestMoveWithoutDownIsIgnored(t *testing.T) {
	t.Parallel()

	pad := NewSignaturePad(50, 50, nil)
	pad.PointerMove(10, 10)
	assert.True(t, pad.Empty())
	assert.False(t, pad.Stroking())
}

func TestPadsOwnIndependentBuffers(t *testing.T) {
	t.Parallel()

	signature := NewSignaturePad(50, 50, nil)
	drawing := NewDrawingPad(50, 50, nil)

	signature.PointerDown(5, 5)
	require.NoError(t, signature.PointerUp())

	assert.False(t, signature.Empty())
	assert.True(t, drawing.Empty())
}

func TestPadSuppressesNativeDrag(t *testing.T) {
	t.Parallel()

	assert.True(t, NewSignaturePad(10, 10, nil).SuppressNativeDrag())
	assert.True(t, NewDrawingPad(10, 10, nil).SuppressNativeDrag())
}
