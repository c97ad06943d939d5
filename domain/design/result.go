package design

import (
	"maps"

	"godoe/domain/response"
)

// Settings maps factor names to a concrete level: numeric factors in Numeric,
// categorical factors in Labels.
type Settings struct {
	Numeric map[string]float64 `json:"numeric" yaml:"numeric"`
	Labels  map[string]string  `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// NewSettings returns empty settings with initialized maps.
func NewSettings() Settings {
	return Settings{Numeric: map[string]float64{}, Labels: map[string]string{}}
}

// Len counts factors with a setting.
func (s Settings) Len() int { return len(s.Numeric) + len(s.Labels) }

// IsEmpty reports whether no factor has a setting.
func (s Settings) IsEmpty() bool { return s.Len() == 0 }

// Clone deep-copies the settings.
func (s Settings) Clone() Settings {
	out := NewSettings()
	maps.Copy(out.Numeric, s.Numeric)
	maps.Copy(out.Labels, s.Labels)
	return out
}

// OptimizationResult is returned by every evaluation step.
type OptimizationResult struct {
	PredictedOptimum Settings `json:"predicted_optimum"`
	Converged        bool     `json:"converged"`
	Tol              float64  `json:"tol"`
	ReachedLimits    bool     `json:"reached_limits"`
	// EmpiricallyFound is true when the optimum is an executed experiment
	// rather than a model prediction.
	EmpiricallyFound bool `json:"empirically_found"`
}

// Experiment is one ranked row of a design sheet with its responses.
type Experiment struct {
	FactorSettings   Settings           `json:"factor_settings"`
	WeightedResponse float64            `json:"weighted_response"`
	Response         map[string]float64 `json:"response"`
	Criterion        response.Criterion `json:"criterion"`
	NewBest          bool               `json:"new_best"`
	OldBest          *BestRecord        `json:"old_best,omitempty"`
}

// BestRecord is the best experiment seen so far in a campaign.
type BestRecord struct {
	OptimalSettings  Settings           `json:"optimal_x" yaml:"optimal_x"`
	OptimalResponse  map[string]float64 `json:"optimal_y" yaml:"optimal_y"`
	WeightedResponse float64            `json:"weighted_y" yaml:"weighted_y"`
}

// Clone deep-copies the record.
func (b *BestRecord) Clone() *BestRecord {
	if b == nil {
		return nil
	}
	return &BestRecord{
		OptimalSettings:  b.OptimalSettings.Clone(),
		OptimalResponse:  maps.Clone(b.OptimalResponse),
		WeightedResponse: b.WeightedResponse,
	}
}
