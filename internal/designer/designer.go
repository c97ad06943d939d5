package designer

import (
	"fmt"
	"math/rand"

	"godoe/adapters/desirability"
	"godoe/adapters/matrix"
	"godoe/adapters/surrogate"
	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/domain/factor"
	"godoe/domain/response"
	"godoe/internal"
	"godoe/internal/errors"
	"godoe/ports"
)

// Default tuning knobs.
const (
	DefaultRelativeStep = 0.25
	DefaultShrinkage    = 1.0
	DefaultQ2Limit      = 0.75
	DefaultGSDSpanRatio = 0.5
	DefaultTolerance    = 0.25
)

// Designer drives one sequential experiment campaign: it proposes design
// sheets, consumes measured responses and moves factor ranges toward the
// optimum. A Designer is not safe for concurrent use.
type Designer struct {
	factors    *factor.Set
	responses  response.Specs
	designKind design.Kind
	phase      design.Phase
	opts       options

	matrix       ports.DesignMatrixProvider
	desirability map[string]ports.DesirabilityFunc
	logger       *internal.Logger

	best           *design.BestRecord
	designSheet    *design.Sheet
	responseValues []float64
	screening      *screeningCache
	transforms     map[string]response.Applied
	// lastTransform is the transform applied by the most recent treatment;
	// response limits pass through it before being compared.
	lastTransform response.Applied
}

type options struct {
	atEdges        design.EdgeAction
	relativeStep   float64 // 0 means adaptive
	gsdReduction   int     // 0 means auto
	modelSelection design.ModelSelection
	manualFormula  string
	shrinkage      float64
	q2Limit        float64
	gsdSpanRatio   float64
	folds          design.Folds
	skipScreening  bool

	registry     *matrix.Registry
	gsd          ports.ScreeningMatrixProvider
	fitter       ports.SurrogateModelFitter
	desirability ports.DesirabilityFactory
	logger       *internal.Logger
	rand         *rand.Rand
}

// Option configures a Designer.
type Option func(*options)

// WithEdgeAction sets the policy for design points outside the hard bounds.
func WithEdgeAction(a design.EdgeAction) Option { return func(o *options) { o.atEdges = a } }

// WithRelativeStep fixes the step length used when moving factor ranges.
func WithRelativeStep(step float64) Option { return func(o *options) { o.relativeStep = step } }

// WithAdaptiveStep moves each factor by its own ratio instead of a fixed step.
func WithAdaptiveStep() Option { return func(o *options) { o.relativeStep = 0 } }

// WithGSDReduction sets the GSD reduction factor. Zero selects the factor count.
func WithGSDReduction(r int) Option { return func(o *options) { o.gsdReduction = r } }

// WithModelSelection picks the surrogate term selection strategy.
func WithModelSelection(m design.ModelSelection) Option {
	return func(o *options) { o.modelSelection = m }
}

// WithManualFormula sets the formula used by manual model selection.
func WithManualFormula(f string) Option { return func(o *options) { o.manualFormula = f } }

// WithShrinkage scales the range span after every optimization step.
func WithShrinkage(s float64) Option { return func(o *options) { o.shrinkage = s } }

// WithQ2Limit sets the cross-validated Q² a model needs before it is trusted.
func WithQ2Limit(q float64) Option { return func(o *options) { o.q2Limit = q } }

// WithGSDSpanRatio scales the neighbour-level span chosen after screening.
func WithGSDSpanRatio(r float64) Option { return func(o *options) { o.gsdSpanRatio = r } }

// WithFolds sets the cross-validation fold count used for Q².
func WithFolds(f design.Folds) Option { return func(o *options) { o.folds = f } }

// WithSkipScreening starts the campaign directly in the optimization phase.
func WithSkipScreening(skip bool) Option { return func(o *options) { o.skipScreening = skip } }

// WithMatrixRegistry replaces the classical design providers.
func WithMatrixRegistry(r *matrix.Registry) Option { return func(o *options) { o.registry = r } }

// WithScreeningProvider replaces the GSD generator.
func WithScreeningProvider(p ports.ScreeningMatrixProvider) Option {
	return func(o *options) { o.gsd = p }
}

// WithFitter replaces the surrogate model fitter.
func WithFitter(f ports.SurrogateModelFitter) Option { return func(o *options) { o.fitter = f } }

// WithDesirability replaces the desirability factory.
func WithDesirability(f ports.DesirabilityFactory) Option {
	return func(o *options) { o.desirability = f }
}

// WithLogger sets the designer's logger.
func WithLogger(l *internal.Logger) Option { return func(o *options) { o.logger = l } }

// WithRand seeds the randomness handed to the surrogate fitter.
func WithRand(r *rand.Rand) Option { return func(o *options) { o.rand = r } }

func defaultOptions() options {
	return options{
		atEdges:        design.EdgeDistort,
		relativeStep:   DefaultRelativeStep,
		modelSelection: design.SelectBrute,
		shrinkage:      DefaultShrinkage,
		q2Limit:        DefaultQ2Limit,
		gsdSpanRatio:   DefaultGSDSpanRatio,
		folds:          design.LeaveOneOut,
	}
}

func (o options) validate() error {
	switch o.atEdges {
	case design.EdgeDistort, design.EdgeShrink:
	default:
		return fmt.Errorf("%w: %q", core.ErrInvalidEdgeAction, o.atEdges)
	}
	if o.relativeStep != 0 && !(o.relativeStep > 0 && o.relativeStep < 1) {
		return fmt.Errorf("%w: relative_step must be in (0, 1), got %g", core.ErrInvalidKnob, o.relativeStep)
	}
	switch o.modelSelection {
	case design.SelectBrute, design.SelectGreedy:
	case design.SelectManual:
		if o.manualFormula == "" {
			return core.ErrMissingFormula
		}
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownModelSelector, o.modelSelection)
	}
	if o.folds != design.LeaveOneOut && o.folds <= 0 {
		return fmt.Errorf("%w: n_folds must be 'loo' or positive, got %d", core.ErrInvalidKnob, o.folds)
	}
	if o.shrinkage < 0.9 || o.shrinkage > 1 {
		return fmt.Errorf("%w: shrinkage must be in [0.9, 1], got %g", core.ErrInvalidKnob, o.shrinkage)
	}
	if o.q2Limit < 0 || o.q2Limit > 1 {
		return fmt.Errorf("%w: q2_limit must be in [0, 1], got %g", core.ErrInvalidKnob, o.q2Limit)
	}
	if o.gsdSpanRatio <= 0 || o.gsdSpanRatio > 1 {
		return fmt.Errorf("%w: gsd_span_ratio must be in (0, 1], got %g", core.ErrInvalidKnob, o.gsdSpanRatio)
	}
	if o.gsdReduction < 0 {
		return fmt.Errorf("%w: gsd_reduction must be positive, got %d", core.ErrInvalidKnob, o.gsdReduction)
	}
	return nil
}

// New validates the configuration and returns a designer in the screening
// phase, or in the optimization phase when screening is skipped. The factor set
// is owned by the designer afterwards.
func New(factors *factor.Set, designType string, responses response.Specs, opts ...Option) (*Designer, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	d, err := build(factors, designType, responses, o)
	if err != nil {
		return nil, errors.Classify(err)
	}
	return d, nil
}

func build(factors *factor.Set, designType string, responses response.Specs, o options) (*Designer, error) {
	if factors == nil || factors.Len() == 0 {
		return nil, fmt.Errorf("%w: at least one factor is required", core.ErrInvalidFactorSpec)
	}
	if err := factors.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidFactorSpec, err)
	}
	kind, err := design.ParseKind(designType)
	if err != nil {
		return nil, err
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	if o.skipScreening && factors.HasCategorical() {
		return nil, core.ErrCategoricalNoScreen
	}
	if err := responses.Validate(); err != nil {
		return nil, err
	}

	if o.registry == nil {
		o.registry = matrix.NewRegistry()
	}
	provider, err := o.registry.Provider(kind)
	if err != nil {
		return nil, err
	}
	if o.gsd == nil {
		o.gsd = matrix.GSD{}
	}
	if o.logger == nil {
		o.logger = internal.NewDefaultLogger()
	}
	if o.fitter == nil {
		o.fitter = surrogate.NewFitter(o.logger)
	}
	if o.desirability == nil {
		o.desirability = desirability.NewFactory()
	}

	d := &Designer{
		factors:       factors,
		responses:     responses,
		designKind:    kind,
		phase:         design.PhaseScreening,
		opts:          o,
		matrix:        provider,
		logger:        o.logger,
		transforms:    make(map[string]response.Applied),
		lastTransform: response.Identity(),
	}
	if o.skipScreening {
		d.phase = design.PhaseOptimization
	}

	if len(responses) > 1 {
		d.desirability = make(map[string]ports.DesirabilityFunc, len(responses))
		for _, name := range responses.Names() {
			fn, err := o.desirability.Build(responses[name])
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", core.ErrInvalidResponseSpec, name, err)
			}
			d.desirability[name] = fn
		}
	}

	d.logger.Debug("designer: %d factors, %d responses, design %s, phase %s",
		factors.Len(), len(responses), kind, d.phase)
	return d, nil
}

// Phase returns the current campaign phase.
func (d *Designer) Phase() design.Phase { return d.phase }

// SetPhase overrides the phase, for resuming a campaign.
func (d *Designer) SetPhase(p design.Phase) error {
	if _, err := design.ParsePhase(string(p)); err != nil {
		return errors.Classify(err)
	}
	if p == design.PhaseOptimization {
		for _, c := range d.factors.Categorical() {
			if c.FixedValue() == "" {
				return errors.Classify(fmt.Errorf("%w: %s has no fixed value", core.ErrInvalidFactorSpec, c.Name()))
			}
		}
	}
	d.phase = p
	return nil
}

// DesignKind returns the classical design used in the optimization phase.
func (d *Designer) DesignKind() design.Kind { return d.designKind }

// Factors exposes the live factor set. Callers must not mutate it while the
// designer is in use.
func (d *Designer) Factors() *factor.Set { return d.factors }

// Responses returns the configured response specs.
func (d *Designer) Responses() response.Specs { return d.responses }

// BestExperiment returns a copy of the best experiment observed so far, or nil.
func (d *Designer) BestExperiment() *design.BestRecord { return d.best.Clone() }

// CurrentDesign returns a copy of the last generated design sheet, or nil.
func (d *Designer) CurrentDesign() *design.Sheet {
	if d.designSheet == nil {
		return nil
	}
	return d.designSheet.Clone()
}

// Transform returns the transform last fitted for a response.
func (d *Designer) Transform(name string) response.Applied {
	if a, ok := d.transforms[name]; ok {
		return a
	}
	return response.Identity()
}

// ResponseValues returns the treated responses behind the last model fit.
func (d *Designer) ResponseValues() []float64 {
	return append([]float64(nil), d.responseValues...)
}

// SetRand replaces the randomness handed to the surrogate fitter, so each
// iteration can draw from its own seeded stream.
func (d *Designer) SetRand(r *rand.Rand) { d.opts.rand = r }
