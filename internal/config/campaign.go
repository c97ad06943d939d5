package config

import (
	"bytes"
	"fmt"
	"os"

	"godoe/domain/design"
	"godoe/domain/factor"
	"godoe/domain/response"
	"godoe/internal/designer"
	"godoe/internal/errors"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// Campaign is the YAML description of one experiment campaign.
type Campaign struct {
	Name       string                   `yaml:"name" validate:"required"`
	DesignType string                   `yaml:"design_type" validate:"required"`
	Factors    map[string]factor.Spec   `yaml:"factors" validate:"required,min=1,dive"`
	Responses  map[string]response.Spec `yaml:"responses" validate:"required,min=1,dive"`
	Designer   DesignerConfig           `yaml:"designer"`
	Seed       int64                    `yaml:"seed"`
}

// DesignerConfig holds the tuning knobs. Unset fields keep the designer
// defaults.
type DesignerConfig struct {
	AtEdges string `yaml:"at_edges" validate:"omitempty,oneof=distort shrink"`
	// RelativeStep fixes the step length; AdaptiveStep steps by each factor's
	// own offset ratio instead.
	RelativeStep   *float64 `yaml:"relative_step" validate:"omitempty,gt=0,lt=1"`
	AdaptiveStep   bool     `yaml:"adaptive_step" validate:"excluded_with=RelativeStep"`
	GSDReduction   int      `yaml:"gsd_reduction" validate:"gte=0"`
	ModelSelection string   `yaml:"model_selection" validate:"omitempty,oneof=brute greedy manual"`
	ManualFormula  string   `yaml:"manual_formula" validate:"required_if=ModelSelection manual"`
	Shrinkage      *float64 `yaml:"shrinkage" validate:"omitempty,gte=0.9,lte=1"`
	Q2Limit        *float64 `yaml:"q2_limit" validate:"omitempty,gte=0,lte=1"`
	GSDSpanRatio   *float64 `yaml:"gsd_span_ratio" validate:"omitempty,gt=0,lte=1"`
	NFolds         string   `yaml:"n_folds"`
	SkipScreening  bool     `yaml:"skip_screening"`
	// Tolerance is the convergence threshold on the optimum offset ratio.
	Tolerance *float64 `yaml:"tol" validate:"omitempty,gte=0"`
	// Strategy picks the optimum an optimization iteration steps toward: the
	// model prediction (falling back to the best run when no model qualifies)
	// or always the best run.
	Strategy string `yaml:"strategy" validate:"omitempty,oneof=model empirical"`
}

// Optimization strategies.
const (
	StrategyModel     = "model"
	StrategyEmpirical = "empirical"
)

// LoadCampaign reads and validates a campaign file. Unknown keys are rejected.
func LoadCampaign(path string) (*Campaign, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read campaign %s", path)
	}
	return ParseCampaign(raw)
}

// ParseCampaign decodes and validates campaign YAML.
func ParseCampaign(raw []byte) (*Campaign, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var c Campaign
	if err := dec.Decode(&c); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("decode campaign: %w", err))
	}
	if err := validateStruct(&c); err != nil {
		return nil, err
	}
	if c.Designer.NFolds != "" {
		if _, err := design.ParseFolds(c.Designer.NFolds); err != nil {
			return nil, errors.Classify(err)
		}
	}
	return &c, nil
}

// FactorSet builds the factor set described by the campaign.
func (c *Campaign) FactorSet() (*factor.Set, error) {
	set, err := factor.NewSetFromSpecs(c.Factors)
	if err != nil {
		return nil, errors.Classify(err)
	}
	return set, nil
}

// Tol returns the configured convergence tolerance or the designer default.
func (c *Campaign) Tol() float64 {
	if c.Designer.Tolerance != nil {
		return *c.Designer.Tolerance
	}
	return designer.DefaultTolerance
}

// StrategyOrDefault returns the configured strategy, model when unset.
func (c *Campaign) StrategyOrDefault() string {
	if c.Designer.Strategy == "" {
		return StrategyModel
	}
	return c.Designer.Strategy
}

// Options translates the knobs into designer options.
func (c *Campaign) Options() []designer.Option {
	k := c.Designer
	var opts []designer.Option
	if k.AtEdges != "" {
		opts = append(opts, designer.WithEdgeAction(design.EdgeAction(k.AtEdges)))
	}
	if k.RelativeStep != nil {
		opts = append(opts, designer.WithRelativeStep(*k.RelativeStep))
	}
	if k.AdaptiveStep {
		opts = append(opts, designer.WithAdaptiveStep())
	}
	if k.GSDReduction > 0 {
		opts = append(opts, designer.WithGSDReduction(k.GSDReduction))
	}
	if k.ModelSelection != "" {
		opts = append(opts, designer.WithModelSelection(design.ModelSelection(k.ModelSelection)))
	}
	if k.ManualFormula != "" {
		opts = append(opts, designer.WithManualFormula(k.ManualFormula))
	}
	if k.Shrinkage != nil {
		opts = append(opts, designer.WithShrinkage(*k.Shrinkage))
	}
	if k.Q2Limit != nil {
		opts = append(opts, designer.WithQ2Limit(*k.Q2Limit))
	}
	if k.GSDSpanRatio != nil {
		opts = append(opts, designer.WithGSDSpanRatio(*k.GSDSpanRatio))
	}
	if k.NFolds != "" {
		if folds, err := design.ParseFolds(k.NFolds); err == nil {
			opts = append(opts, designer.WithFolds(folds))
		}
	}
	if k.SkipScreening {
		opts = append(opts, designer.WithSkipScreening(true))
	}
	return opts
}
