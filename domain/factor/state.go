package factor

import (
	"fmt"
	"strconv"

	"godoe/domain/core"
)

// Row labels of the factor state table.
const (
	RowFixedValue  = "fixed_value"
	RowCurrentLow  = "current_low"
	RowCurrentHigh = "current_high"
)

// StateRows lists the state table rows in display order.
var StateRows = []string{RowFixedValue, RowCurrentLow, RowCurrentHigh}

// StateTable externalizes the mutable part of a Set: one column per factor,
// one row per state field. Cells that do not apply to a variant are empty.
type StateTable struct {
	Factors []string                     `yaml:"factors" json:"factors"`
	Cells   map[string]map[string]string `yaml:"cells" json:"cells"`
}

// Cell returns the cell at row × factor, or "".
func (t StateTable) Cell(row, factor string) string {
	return t.Cells[row][factor]
}

// StateTable captures the current working ranges and fixed values.
func (s *Set) StateTable() StateTable {
	t := StateTable{Factors: s.Names(), Cells: make(map[string]map[string]string, len(StateRows))}
	for _, row := range StateRows {
		t.Cells[row] = make(map[string]string, s.Len())
	}
	for _, f := range s.All() {
		switch v := f.(type) {
		case *Categorical:
			t.Cells[RowFixedValue][v.Name()] = v.FixedValue()
		case Numeric:
			t.Cells[RowCurrentLow][v.Name()] = strconv.FormatFloat(v.Low(), 'g', -1, 64)
			t.Cells[RowCurrentHigh][v.Name()] = strconv.FormatFloat(v.High(), 'g', -1, 64)
		}
	}
	return t
}

// ApplyStateTable restores working ranges and fixed values. Factors missing
// from the table keep their current state.
func (s *Set) ApplyStateTable(t StateTable) error {
	for _, name := range t.Factors {
		f, ok := s.Get(name)
		if !ok {
			return fmt.Errorf("%w: state table names unknown factor %q", core.ErrShapeMismatch, name)
		}
		switch v := f.(type) {
		case *Categorical:
			if cell := t.Cell(RowFixedValue, name); cell != "" {
				if err := v.SetFixedValue(cell); err != nil {
					return err
				}
			}
		case Numeric:
			lowCell, highCell := t.Cell(RowCurrentLow, name), t.Cell(RowCurrentHigh, name)
			if lowCell == "" && highCell == "" {
				continue
			}
			low, err := strconv.ParseFloat(lowCell, 64)
			if err != nil {
				return fmt.Errorf("factor %s current_low: %w", name, err)
			}
			high, err := strconv.ParseFloat(highCell, 64)
			if err != nil {
				return fmt.Errorf("factor %s current_high: %w", name, err)
			}
			if err := v.SetRange(low, high); err != nil {
				return err
			}
		}
	}
	return nil
}
