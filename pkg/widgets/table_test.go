package widgets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableStartsWithOneSeedRow(t *testing.T) {
	t.Parallel()

	editor := NewTableEditor([]string{"item", "qty"}, nil)
	value := editor.Value()
	require.Len(t, value.Data, 1)
	assert.Equal(t, map[string]string{"item": "", "qty": ""}, value.Data[0])
}

func TestRemovingLastRowReseeds(t *testing.T) {
	t.Parallel()

	editor := NewTableEditor([]string{"item"}, nil)
	require.NoError(t, editor.SetCell(0, "item", "bolt"))
	require.NoError(t, editor.RemoveRow(0))

	value := editor.Value()
	require.Len(t, value.Data, 1)
	assert.Equal(t, "", value.Data[0]["item"])
}

func TestAddColumnUpdatesEveryRow(t *testing.T) {
	t.Parallel()

	editor := NewTableEditor([]string{"item"}, nil)
	require.NoError(t, editor.AddRow())
	require.NoError(t, editor.AddRow())
	require.NoError(t, editor.AddColumn("price"))

	for _, row := range editor.Value().Data {
		_, ok := row["price"]
		assert.True(t, ok, "every row must carry the new column")
		assert.Equal(t, "", row["price"])
	}
}

func TestRemoveColumnDropsKeyEverywhere(t *testing.T) {
	t.Parallel()

	editor := NewTableEditor([]string{"item", "qty"}, nil)
	require.NoError(t, editor.AddRow())
	require.NoError(t, editor.SetCell(0, "qty", "3"))
	require.NoError(t, editor.RemoveColumn("qty"))

	value := editor.Value()
	assert.Equal(t, []string{"item"}, value.Columns)
	for _, row := range value.Data {
		_, ok := row["qty"]
		assert.False(t, ok, "removed column must not survive in rows")
	}
}

func TestEveryMutationRepublishes(t *testing.T) {
	t.Parallel()

	var publishes []TableValue
	editor := NewTableEditor([]string{"a"}, func(v any) error {
		publishes = append(publishes, v.(TableValue))
		return nil
	})

	require.NoError(t, editor.AddRow())
	require.NoError(t, editor.SetCell(1, "a", "x"))
	require.NoError(t, editor.AddColumn("b"))
	require.NoError(t, editor.RemoveColumn("b"))
	require.NoError(t, editor.RemoveRow(0))

	require.Len(t, publishes, 5)
	last := publishes[len(publishes)-1]
	assert.Equal(t, []string{"a"}, last.Columns)
	require.Len(t, last.Data, 1)
	assert.Equal(t, "x", last.Data[0]["a"])
}

func TestSetCellValidatesCoordinates(t *testing.T) {
	t.Parallel()

	editor := NewTableEditor([]string{"a"}, nil)
	require.Error(t, editor.SetCell(5, "a", "x"))
	require.Error(t, editor.SetCell(0, "ghost", "x"))
}

func TestParseColumns(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"item", "qty", "price"}, ParseColumns(" item , qty,price ,"))
	assert.Nil(t, ParseColumns("  "))
}
