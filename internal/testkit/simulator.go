package testkit

import (
	"fmt"
	"math/rand"
	"sort"

	"godoe/domain/core"
	"godoe/domain/design"
)

// SimulatorConfig configures the measurement simulator
type SimulatorConfig struct {
	// Noise is the standard deviation of the Gaussian error added to every
	// response.
	Noise float64 `json:"noise" yaml:"noise"`
	Seed  int64   `json:"seed" yaml:"seed"`
}

// DefaultSimulatorConfig returns noise-free measurements with a fixed seed
func DefaultSimulatorConfig() SimulatorConfig {
	return SimulatorConfig{Noise: 0, Seed: 42}
}

// Simulator "runs" designs against a surface.
type Simulator struct {
	config  SimulatorConfig
	surface Surface
	rng     *rand.Rand
	runs    int
}

// NewSimulator creates a simulator for one surface
func NewSimulator(surface Surface, config SimulatorConfig) *Simulator {
	return &Simulator{
		config:  config,
		surface: surface,
		rng:     rand.New(rand.NewSource(config.Seed)),
	}
}

// Runs counts the experiments performed so far.
func (s *Simulator) Runs() int { return s.runs }

// Surface returns the simulated surface.
func (s *Simulator) Surface() Surface { return s.surface }

// Respond measures every row of the design and returns one numeric column
// per response.
func (s *Simulator) Respond(sheet *design.Sheet) (*design.Sheet, error) {
	if sheet == nil || sheet.Rows() == 0 {
		return nil, fmt.Errorf("%w: empty design", core.ErrShapeMismatch)
	}
	cols := map[string][]float64{}
	for i := 0; i < sheet.Rows(); i++ {
		row := sheet.Row(i)
		for name, v := range s.surface.Eval(row.Numeric, row.Labels) {
			if cols[name] == nil {
				cols[name] = make([]float64, sheet.Rows())
			}
			if s.config.Noise > 0 {
				v += s.rng.NormFloat64() * s.config.Noise
			}
			cols[name][i] = v
		}
		s.runs++
	}

	names := make([]string, 0, len(cols))
	for n := range cols {
		names = append(names, n)
	}
	sort.Strings(names)
	out := design.NewSheet(sheet.Rows())
	for _, n := range names {
		if err := out.SetNumeric(n, cols[n]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
