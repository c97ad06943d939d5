package design

import (
	"fmt"
	"slices"
	"sort"

	"godoe/domain/core"
)

// Sheet is a column-oriented table of experiments: one row per run, one column
// per factor or response. Columns are numeric or label-valued.
type Sheet struct {
	rows    int
	columns []string
	numeric map[string][]float64
	labels  map[string][]string
}

// NewSheet returns an empty sheet with a fixed row count.
func NewSheet(rows int) *Sheet {
	return &Sheet{
		rows:    rows,
		numeric: make(map[string][]float64),
		labels:  make(map[string][]string),
	}
}

// Rows returns the number of experiments.
func (s *Sheet) Rows() int { return s.rows }

// Columns returns column names in insertion order.
func (s *Sheet) Columns() []string { return slices.Clone(s.columns) }

// HasColumn reports whether name is a column.
func (s *Sheet) HasColumn(name string) bool {
	_, n := s.numeric[name]
	_, l := s.labels[name]
	return n || l
}

// IsNumeric reports whether name is a numeric column.
func (s *Sheet) IsNumeric(name string) bool {
	_, ok := s.numeric[name]
	return ok
}

// SetNumeric adds or replaces a numeric column.
func (s *Sheet) SetNumeric(name string, values []float64) error {
	if len(values) != s.rows {
		return fmt.Errorf("%w: column %s has %d rows, sheet has %d", core.ErrShapeMismatch, name, len(values), s.rows)
	}
	if _, isLabel := s.labels[name]; isLabel {
		delete(s.labels, name)
	} else if _, exists := s.numeric[name]; !exists {
		s.columns = append(s.columns, name)
	}
	s.numeric[name] = slices.Clone(values)
	return nil
}

// SetLabels adds or replaces a label column.
func (s *Sheet) SetLabels(name string, values []string) error {
	if len(values) != s.rows {
		return fmt.Errorf("%w: column %s has %d rows, sheet has %d", core.ErrShapeMismatch, name, len(values), s.rows)
	}
	if _, isNum := s.numeric[name]; isNum {
		delete(s.numeric, name)
	} else if _, exists := s.labels[name]; !exists {
		s.columns = append(s.columns, name)
	}
	s.labels[name] = slices.Clone(values)
	return nil
}

// Numeric returns a copy of a numeric column.
func (s *Sheet) Numeric(name string) ([]float64, bool) {
	v, ok := s.numeric[name]
	return slices.Clone(v), ok
}

// Labels returns a copy of a label column.
func (s *Sheet) Labels(name string) ([]string, bool) {
	v, ok := s.labels[name]
	return slices.Clone(v), ok
}

// Value returns the cell at row × column as float64 or string.
func (s *Sheet) Value(row int, name string) (interface{}, bool) {
	if row < 0 || row >= s.rows {
		return nil, false
	}
	if v, ok := s.numeric[name]; ok {
		return v[row], true
	}
	if v, ok := s.labels[name]; ok {
		return v[row], true
	}
	return nil, false
}

// Row returns one experiment as settings.
func (s *Sheet) Row(row int) Settings {
	out := NewSettings()
	for name, col := range s.numeric {
		out.Numeric[name] = col[row]
	}
	for name, col := range s.labels {
		out.Labels[name] = col[row]
	}
	return out
}

// Select returns a new sheet restricted to names, in the given order.
func (s *Sheet) Select(names ...string) (*Sheet, error) {
	out := NewSheet(s.rows)
	for _, name := range names {
		switch {
		case s.IsNumeric(name):
			_ = out.SetNumeric(name, s.numeric[name])
		case s.HasColumn(name):
			_ = out.SetLabels(name, s.labels[name])
		default:
			return nil, fmt.Errorf("%w: missing column %q", core.ErrShapeMismatch, name)
		}
	}
	return out, nil
}

// Cells returns the sheet row-major, for export and hashing.
func (s *Sheet) Cells() [][]interface{} {
	out := make([][]interface{}, s.rows)
	for r := range out {
		row := make([]interface{}, len(s.columns))
		for c, name := range s.columns {
			row[c], _ = s.Value(r, name)
		}
		out[r] = row
	}
	return out
}

// Hash fingerprints the sheet contents.
func (s *Sheet) Hash() core.SheetHash {
	return core.ComputeSheetHash(s.columns, s.Cells())
}

// Clone deep-copies the sheet.
func (s *Sheet) Clone() *Sheet {
	out, _ := s.Select(s.columns...)
	return out
}

// RequireColumns checks that the sheet's column set equals want, ignoring order.
func (s *Sheet) RequireColumns(want []string) error {
	have := s.Columns()
	sort.Strings(have)
	sorted := slices.Clone(want)
	sort.Strings(sorted)
	if !slices.Equal(have, sorted) {
		return fmt.Errorf("%w: got %v, want %v", core.ErrShapeMismatch, have, sorted)
	}
	return nil
}

// SheetData is the serializable form of a Sheet.
type SheetData struct {
	Rows    int                  `yaml:"rows" json:"rows"`
	Columns []string             `yaml:"columns" json:"columns"`
	Numeric map[string][]float64 `yaml:"numeric,omitempty" json:"numeric,omitempty"`
	Labels  map[string][]string  `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Data exports the sheet.
func (s *Sheet) Data() SheetData {
	d := SheetData{Rows: s.rows, Columns: s.Columns(), Numeric: map[string][]float64{}, Labels: map[string][]string{}}
	for name, col := range s.numeric {
		d.Numeric[name] = slices.Clone(col)
	}
	for name, col := range s.labels {
		d.Labels[name] = slices.Clone(col)
	}
	return d
}

// SheetFromData rebuilds a sheet, validating column lengths.
func SheetFromData(d SheetData) (*Sheet, error) {
	s := NewSheet(d.Rows)
	for _, name := range d.Columns {
		if col, ok := d.Numeric[name]; ok {
			if err := s.SetNumeric(name, col); err != nil {
				return nil, err
			}
			continue
		}
		col, ok := d.Labels[name]
		if !ok {
			return nil, fmt.Errorf("%w: column %q has no data", core.ErrShapeMismatch, name)
		}
		if err := s.SetLabels(name, col); err != nil {
			return nil, err
		}
	}
	return s, nil
}
