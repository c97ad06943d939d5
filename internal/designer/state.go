package designer

import (
	"fmt"
	"maps"
	"slices"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/domain/factor"
	"godoe/domain/response"
	"godoe/internal/errors"
)

// State is a designer checkpoint, taken between physical runs so a campaign
// can resume in a later process.
type State struct {
	Phase      design.Phase                `yaml:"phase" json:"phase"`
	Factors    factor.StateTable           `yaml:"factors" json:"factors"`
	Best       *design.BestRecord          `yaml:"best,omitempty" json:"best,omitempty"`
	Design     *design.SheetData           `yaml:"design,omitempty" json:"design,omitempty"`
	Screening  *ScreeningState             `yaml:"screening,omitempty" json:"screening,omitempty"`
	Transforms map[string]response.Applied `yaml:"transforms,omitempty" json:"transforms,omitempty"`
}

// ScreeningState is the part of a checkpoint that screening re-evaluation
// needs.
type ScreeningState struct {
	Factors  []string          `yaml:"factors" json:"factors"`
	Design   design.SheetData  `yaml:"design" json:"design"`
	Index    [][]int           `yaml:"index" json:"index"`
	Response *design.SheetData `yaml:"response,omitempty" json:"response,omitempty"`
	UseIndex int               `yaml:"use_index" json:"use_index"`
}

// Snapshot captures the designer's mutable state.
func (d *Designer) Snapshot() State {
	s := State{
		Phase:      d.phase,
		Factors:    d.factors.StateTable(),
		Best:       d.best.Clone(),
		Transforms: maps.Clone(d.transforms),
	}
	if d.designSheet != nil {
		data := d.designSheet.Data()
		s.Design = &data
	}
	if sc := d.screening; sc != nil {
		ss := &ScreeningState{
			Factors:  append([]string(nil), sc.factors...),
			Design:   sc.sheet.Data(),
			Index:    cloneIndex(sc.index),
			UseIndex: sc.useIndex,
		}
		if sc.response != nil {
			data := sc.response.Data()
			ss.Response = &data
		}
		s.Screening = ss
	}
	return s
}

// Restore replaces the designer's mutable state with a checkpoint. Nothing
// changes when the checkpoint is invalid.
func (d *Designer) Restore(s State) error {
	phase, err := design.ParsePhase(string(s.Phase))
	if err != nil {
		return errors.Classify(err)
	}
	if err := d.factors.Clone().ApplyStateTable(s.Factors); err != nil {
		return errors.Classify(err)
	}

	var sheet *design.Sheet
	if s.Design != nil {
		if sheet, err = design.SheetFromData(*s.Design); err != nil {
			return errors.Classify(err)
		}
	}
	var sc *screeningCache
	if s.Screening != nil {
		sc = &screeningCache{
			factors:  append([]string(nil), s.Screening.Factors...),
			index:    cloneIndex(s.Screening.Index),
			useIndex: max(1, s.Screening.UseIndex),
		}
		if sc.sheet, err = design.SheetFromData(s.Screening.Design); err != nil {
			return errors.Classify(err)
		}
		if s.Screening.Response != nil {
			if sc.response, err = design.SheetFromData(*s.Screening.Response); err != nil {
				return errors.Classify(err)
			}
		}
		if err := d.checkScreening(sc); err != nil {
			return errors.Classify(err)
		}
	}

	if err := d.factors.ApplyStateTable(s.Factors); err != nil {
		return errors.Classify(err)
	}
	d.phase = phase
	d.best = s.Best.Clone()
	d.designSheet = sheet
	d.screening = sc
	d.responseValues = nil
	d.transforms = make(map[string]response.Applied, len(s.Transforms))
	maps.Copy(d.transforms, s.Transforms)
	return nil
}

// checkScreening verifies that a restored screening cache is consistent with
// its own sheet and with the designer's factors.
func (d *Designer) checkScreening(sc *screeningCache) error {
	rows := sc.sheet.Rows()
	if len(sc.index) != rows {
		return fmt.Errorf("%w: screening index has %d rows, design has %d",
			core.ErrShapeMismatch, len(sc.index), rows)
	}
	if sc.response != nil && sc.response.Rows() != rows {
		return fmt.Errorf("%w: screening response has %d rows, design has %d",
			core.ErrShapeMismatch, sc.response.Rows(), rows)
	}
	if sc.useIndex > rows {
		return fmt.Errorf("%w: use index %d of %d screening runs",
			core.ErrShapeMismatch, sc.useIndex, rows)
	}
	levels := make([]int, len(sc.factors))
	for c, name := range sc.factors {
		f, ok := d.factors.Get(name)
		if !ok {
			return fmt.Errorf("%w: unknown screening factor %q", core.ErrShapeMismatch, name)
		}
		if cat, ok := f.(*factor.Categorical); ok {
			if _, ok := sc.sheet.Labels(name); !ok {
				return fmt.Errorf("%w: screening design has no label column %q", core.ErrShapeMismatch, name)
			}
			levels[c] = len(cat.Values())
			continue
		}
		col, ok := sc.sheet.Numeric(name)
		if !ok {
			return fmt.Errorf("%w: screening design has no numeric column %q", core.ErrShapeMismatch, name)
		}
		distinct := slices.Clone(col)
		slices.Sort(distinct)
		levels[c] = len(slices.Compact(distinct))
	}
	for r, row := range sc.index {
		if len(row) != len(sc.factors) {
			return fmt.Errorf("%w: screening index row %d has %d entries for %d factors",
				core.ErrShapeMismatch, r, len(row), len(sc.factors))
		}
		for c, level := range row {
			if level < 0 || level >= levels[c] {
				return fmt.Errorf("%w: screening index row %d gives level %d of %d for %s",
					core.ErrShapeMismatch, r, level, levels[c], sc.factors[c])
			}
		}
	}
	return nil
}

func cloneIndex(index [][]int) [][]int {
	out := make([][]int, len(index))
	for i, row := range index {
		out[i] = append([]int(nil), row...)
	}
	return out
}
