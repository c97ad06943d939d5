package excel

import (
	"fmt"
	"slices"

	"godoe/domain/core"
	"godoe/domain/factor"
)

// WriteStateTable writes factor ranges as rows fixed_value, current_low and
// current_high against one column per factor.
func (w *DataWriter) WriteStateTable(t factor.StateTable) error {
	rows := [][]interface{}{toCells(append([]string{""}, t.Factors...))}
	for _, label := range factor.StateRows {
		row := []interface{}{label}
		for _, name := range t.Factors {
			row = append(row, t.Cell(label, name))
		}
		rows = append(rows, row)
	}
	return w.writeRows(rows)
}

// ReadStateTable reads a table written by WriteStateTable.
func (r *DataReader) ReadStateTable() (factor.StateTable, error) {
	raw, err := r.ReadTable()
	if err != nil {
		return factor.StateTable{}, err
	}
	if len(raw.Headers) < 2 {
		return factor.StateTable{}, fmt.Errorf("%w: state table has no factor columns", core.ErrShapeMismatch)
	}
	t := factor.StateTable{
		Factors: slices.Clone(raw.Headers[1:]),
		Cells:   make(map[string]map[string]string, len(factor.StateRows)),
	}
	for _, label := range factor.StateRows {
		t.Cells[label] = make(map[string]string, len(t.Factors))
	}
	for _, row := range raw.Rows {
		label := row[0]
		if !slices.Contains(factor.StateRows, label) {
			return factor.StateTable{}, fmt.Errorf("%w: unknown state row %q", core.ErrShapeMismatch, label)
		}
		for c, name := range t.Factors {
			if cell := row[c+1]; cell != "" {
				t.Cells[label][name] = cell
			}
		}
	}
	return t, nil
}
