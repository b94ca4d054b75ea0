package widgets

import (
	"fmt"
	"strings"
	"sync"
)

// TableValue is the structured value a table field publishes into its slot:
// the column list plus one map per row. Rows always carry exactly the current
// column set.
type TableValue struct {
	Columns []string            `json:"columns"`
	Data    []map[string]string `json:"data"`
}

// TableEditor owns the transient editing state of a dynamic table field.
// Invariants: at least one row always exists, every row has exactly the
// current column set, and every mutation re-publishes the whole value.
type TableEditor struct {
	mu      sync.Mutex
	columns []string
	rows    []map[string]string
	publish PublishFunc
}

// NewTableEditor constructs an editor with the supplied columns (blank names
// dropped) and one empty seed row.
func NewTableEditor(columns []string, publish PublishFunc) *TableEditor {
	if publish == nil {
		publish = discard
	}
	e := &TableEditor{publish: publish}
	for _, col := range columns {
		if trimmed := strings.TrimSpace(col); trimmed != "" && !contains(e.columns, trimmed) {
			e.columns = append(e.columns, trimmed)
		}
	}
	e.rows = []map[string]string{e.emptyRow()}
	return e
}

// ParseColumns splits a comma-separated column attribute into column names.
func ParseColumns(attr string) []string {
	var out []string
	for _, part := range strings.Split(attr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Value returns a deep copy of the current table state.
func (e *TableEditor) Value() TableValue {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.valueLocked()
}

// AddRow appends an empty row and re-publishes.
func (e *TableEditor) AddRow() error {
	e.mu.Lock()
	e.rows = append(e.rows, e.emptyRow())
	value := e.valueLocked()
	e.mu.Unlock()
	return e.publish(value)
}

// RemoveRow deletes the row at index. Removing the last remaining row
// reseeds one empty row so the table never presents an empty row list.
func (e *TableEditor) RemoveRow(index int) error {
	e.mu.Lock()
	if index < 0 || index >= len(e.rows) {
		e.mu.Unlock()
		return fmt.Errorf("widgets: table row %d out of range", index)
	}
	e.rows = append(e.rows[:index], e.rows[index+1:]...)
	if len(e.rows) == 0 {
		e.rows = []map[string]string{e.emptyRow()}
	}
	value := e.valueLocked()
	e.mu.Unlock()
	return e.publish(value)
}

// AddColumn appends a column and adds the key with an empty value to every
// existing row. Duplicate or blank names are no-ops.
func (e *TableEditor) AddColumn(name string) error {
	name = strings.TrimSpace(name)
	e.mu.Lock()
	if name == "" || contains(e.columns, name) {
		e.mu.Unlock()
		return nil
	}
	e.columns = append(e.columns, name)
	for _, row := range e.rows {
		row[name] = ""
	}
	value := e.valueLocked()
	e.mu.Unlock()
	return e.publish(value)
}

// RemoveColumn drops a column and its key from every row.
func (e *TableEditor) RemoveColumn(name string) error {
	name = strings.TrimSpace(name)
	e.mu.Lock()
	idx := -1
	for i, col := range e.columns {
		if col == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return nil
	}
	e.columns = append(e.columns[:idx], e.columns[idx+1:]...)
	for _, row := range e.rows {
		delete(row, name)
	}
	value := e.valueLocked()
	e.mu.Unlock()
	return e.publish(value)
}

// SetCell updates one cell and re-publishes.
func (e *TableEditor) SetCell(row int, column, value string) error {
	column = strings.TrimSpace(column)
	e.mu.Lock()
	if row < 0 || row >= len(e.rows) {
		e.mu.Unlock()
		return fmt.Errorf("widgets: table row %d out of range", row)
	}
	if !contains(e.columns, column) {
		e.mu.Unlock()
		return fmt.Errorf("widgets: unknown table column %q", column)
	}
	e.rows[row][column] = value
	out := e.valueLocked()
	e.mu.Unlock()
	return e.publish(out)
}

func (e *TableEditor) emptyRow() map[string]string {
	row := make(map[string]string, len(e.columns))
	for _, col := range e.columns {
		row[col] = ""
	}
	return row
}

func (e *TableEditor) valueLocked() TableValue {
	out := TableValue{
		Columns: append([]string(nil), e.columns...),
		Data:    make([]map[string]string, 0, len(e.rows)),
	}
	for _, row := range e.rows {
		clone := make(map[string]string, len(row))
		for k, v := range row {
			clone[k] = v
		}
		out.Data = append(out.Data, clone)
	}
	return out
}

func contains(list []string, needle string) bool {
	for _, item := range list {
		if item == needle {
			return true
		}
	}
	return false
}
