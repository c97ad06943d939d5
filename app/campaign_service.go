package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sync"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/domain/factor"
	"godoe/internal"
	"godoe/internal/config"
	"godoe/internal/designer"
	"godoe/internal/errors"
	"godoe/ports"

	"gopkg.in/yaml.v3"
)

// CampaignService drives campaigns stored in the ledger. Each campaign has one
// designer; the service serialises every call behind a single mutex.
type CampaignService struct {
	ledgerPort ports.LedgerPort
	rngPort    ports.RNGPort
	logger     *internal.Logger

	mu       sync.Mutex
	sessions map[core.CampaignID]*session
}

type session struct {
	campaign *config.Campaign
	designer *designer.Designer
}

// CampaignInfo summarises a campaign for callers.
type CampaignInfo struct {
	ID         core.CampaignID   `json:"id"`
	Name       string            `json:"name"`
	DesignType string            `json:"design_type"`
	Phase      design.Phase      `json:"phase"`
	Factors    factor.StateTable `json:"factors"`
	// Categorical names the factors whose sheet columns hold labels.
	Categorical []string           `json:"categorical,omitempty"`
	Responses   []string           `json:"responses"`
	Best        *design.BestRecord `json:"best,omitempty"`
	Iterations  int                `json:"iterations"`
}

// IterationOutcome is what one submitted response sheet produced.
type IterationOutcome struct {
	Seq int `json:"seq"`
	// Phase is the phase the responses were evaluated in.
	Phase      design.Phase              `json:"phase"`
	Result     design.OptimizationResult `json:"result"`
	Experiment *design.Experiment        `json:"experiment,omitempty"`
	Best       *design.BestRecord        `json:"best,omitempty"`
	// ModelUsed is false when no surrogate passed the Q² limit and the
	// iteration stepped toward the best executed run instead.
	ModelUsed bool `json:"model_used"`
	Done      bool `json:"done"`
}

// NewCampaignService creates a campaign service
func NewCampaignService(ledgerPort ports.LedgerPort, rngPort ports.RNGPort, logger *internal.Logger) *CampaignService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &CampaignService{
		ledgerPort: ledgerPort,
		rngPort:    rngPort,
		logger:     logger,
		sessions:   make(map[core.CampaignID]*session),
	}
}

// CreateCampaign validates a campaign file and registers it in the ledger.
func (s *CampaignService) CreateCampaign(ctx context.Context, raw []byte) (*CampaignInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := config.ParseCampaign(raw)
	if err != nil {
		return nil, err
	}
	d, err := s.newDesigner(c)
	if err != nil {
		return nil, err
	}
	state, err := yaml.Marshal(d.Snapshot())
	if err != nil {
		return nil, errors.Wrap(err, "encode checkpoint")
	}
	rec := &ports.CampaignRecord{
		Name:       c.Name,
		DesignType: c.DesignType,
		Phase:      string(d.Phase()),
		Config:     string(raw),
		State:      string(state),
	}
	if err := s.ledgerPort.CreateCampaign(ctx, rec); err != nil {
		return nil, err
	}
	s.sessions[rec.ID] = &session{campaign: c, designer: d}
	s.logger.Info("campaign %s (%s) created in phase %s", rec.ID, c.Name, d.Phase())
	return s.info(rec.ID, c, d, 0), nil
}

// Campaign returns the current state of a campaign.
func (s *CampaignService) Campaign(ctx context.Context, id core.CampaignID) (*CampaignInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	its, err := s.ledgerPort.ListIterations(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.info(id, sess.campaign, sess.designer, len(its)), nil
}

// ListCampaigns returns ledger records, newest first.
func (s *CampaignService) ListCampaigns(ctx context.Context, limit int) ([]ports.CampaignRecord, error) {
	return s.ledgerPort.ListCampaigns(ctx, limit)
}

// Iterations returns the recorded iterations of a campaign.
func (s *CampaignService) Iterations(ctx context.Context, id core.CampaignID) ([]ports.IterationRecord, error) {
	return s.ledgerPort.ListIterations(ctx, id)
}

// NextDesign generates the design sheet for the campaign's current phase.
func (s *CampaignService) NextDesign(ctx context.Context, id core.CampaignID) (*design.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sheet, err := sess.designer.NewDesign()
	if err != nil {
		return nil, err
	}
	if err := s.checkpoint(ctx, id, sess.designer); err != nil {
		return nil, err
	}
	s.logger.Info("campaign %s: %s design with %d runs", id, sess.designer.Phase(), sheet.Rows())
	return sheet, nil
}

// SubmitResponses evaluates the responses measured for the current design and
// moves the campaign forward. Screening responses narrow the factors and switch
// to optimization. Optimization responses update the best run, fit a model and
// step the factor ranges toward the predicted optimum (or the best run when the
// model is unusable or the campaign uses the empirical strategy).
func (s *CampaignService) SubmitResponses(ctx context.Context, id core.CampaignID, responses *design.Sheet) (*IterationOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	d := sess.designer
	current := d.CurrentDesign()
	if current == nil {
		return nil, errors.Classify(core.ErrNoDesign)
	}
	if err := requireMeasured(responses, sess.campaign); err != nil {
		return nil, err
	}
	its, err := s.ledgerPort.ListIterations(ctx, id)
	if err != nil {
		return nil, err
	}
	seq := len(its) + 1

	if s.rngPort != nil {
		r, err := s.rngPort.Stream(ctx, id.String(), "folds", seq, sess.campaign.Seed)
		if err != nil {
			return nil, errors.Wrap(err, "seed model fit")
		}
		d.SetRand(r)
	}

	outcome := &IterationOutcome{Seq: seq, Phase: d.Phase()}
	switch d.Phase() {
	case design.PhaseScreening:
		res, err := d.GetOptimalSettings(ctx, responses)
		if err != nil {
			return nil, err
		}
		outcome.Result = res
	default:
		if err := s.optimizationStep(ctx, sess, current, responses, outcome); err != nil {
			return nil, err
		}
	}
	outcome.Best = d.BestExperiment()
	outcome.Done = outcome.Result.Converged

	if err := s.record(ctx, id, current, responses, outcome); err != nil {
		return nil, err
	}
	if err := s.checkpoint(ctx, id, d); err != nil {
		return nil, err
	}
	s.logger.Info("campaign %s: iteration %d (%s) converged=%t reached_limits=%t",
		id, seq, outcome.Phase, outcome.Result.Converged, outcome.Result.ReachedLimits)
	return outcome, nil
}

func (s *CampaignService) optimizationStep(ctx context.Context, sess *session, current, responses *design.Sheet, out *IterationOutcome) error {
	d := sess.designer
	predicted, err := d.GetOptimalSettings(ctx, responses)
	if err != nil {
		return err
	}
	// Ranking last leaves the identity transform in place, which is the space
	// the best weighted response is measured in.
	exp, err := d.GetBestExperiment(current, responses, 1)
	if err != nil {
		return err
	}
	out.Experiment = &exp

	target := exp
	if sess.campaign.StrategyOrDefault() == config.StrategyModel && !predicted.PredictedOptimum.IsEmpty() {
		target = design.Experiment{
			FactorSettings:   predicted.PredictedOptimum,
			WeightedResponse: d.BestExperiment().WeightedResponse,
			Criterion:        exp.Criterion,
		}
		out.ModelUsed = true
	}

	res, err := d.UpdateFactorsFromOptimum(target, sess.campaign.Tol(), false)
	if err != nil {
		return err
	}
	res.EmpiricallyFound = !out.ModelUsed
	out.Result = res
	return nil
}

// ReevaluateScreening switches the campaign to the next-best screening run.
func (s *CampaignService) ReevaluateScreening(ctx context.Context, id core.CampaignID) (*design.OptimizationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := sess.designer.ReevaluateScreening()
	if err != nil {
		return nil, err
	}
	if err := s.checkpoint(ctx, id, sess.designer); err != nil {
		return nil, err
	}
	return &res, nil
}

// SetPhase overrides a campaign's phase.
func (s *CampaignService) SetPhase(ctx context.Context, id core.CampaignID, phase design.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	if err := sess.designer.SetPhase(phase); err != nil {
		return err
	}
	return s.checkpoint(ctx, id, sess.designer)
}

// session returns the cached designer or rebuilds it from the ledger.
func (s *CampaignService) session(ctx context.Context, id core.CampaignID) (*session, error) {
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	rec, err := s.ledgerPort.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	c, err := config.ParseCampaign([]byte(rec.Config))
	if err != nil {
		return nil, errors.Wrapf(err, "campaign %s config", id)
	}
	d, err := s.newDesigner(c)
	if err != nil {
		return nil, err
	}
	if rec.State != "" {
		var st designer.State
		if err := yaml.Unmarshal([]byte(rec.State), &st); err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("decode checkpoint of %s: %w", id, err))
		}
		if err := d.Restore(st); err != nil {
			return nil, err
		}
	}
	sess := &session{campaign: c, designer: d}
	s.sessions[id] = sess
	s.logger.Debug("campaign %s resumed in phase %s", id, d.Phase())
	return sess, nil
}

func (s *CampaignService) newDesigner(c *config.Campaign) (*designer.Designer, error) {
	factors, err := c.FactorSet()
	if err != nil {
		return nil, err
	}
	opts := append(c.Options(), designer.WithLogger(s.logger))
	return designer.New(factors, c.DesignType, c.Responses, opts...)
}

func (s *CampaignService) checkpoint(ctx context.Context, id core.CampaignID, d *designer.Designer) error {
	state, err := yaml.Marshal(d.Snapshot())
	if err != nil {
		return errors.Wrap(err, "encode checkpoint")
	}
	return s.ledgerPort.SaveCheckpoint(ctx, id, string(d.Phase()), string(state))
}

func (s *CampaignService) record(ctx context.Context, id core.CampaignID, current, responses *design.Sheet, out *IterationOutcome) error {
	designYAML, err := yaml.Marshal(current.Data())
	if err != nil {
		return errors.Wrap(err, "encode design")
	}
	responseYAML, err := yaml.Marshal(responses.Data())
	if err != nil {
		return errors.Wrap(err, "encode responses")
	}
	resultJSON, err := json.Marshal(out)
	if err != nil {
		return errors.Wrap(err, "encode outcome")
	}
	rec := &ports.IterationRecord{
		CampaignID: id,
		Phase:      string(out.Phase),
		DesignHash: current.Hash().String(),
		Design:     string(designYAML),
		Response:   string(responseYAML),
		Result:     string(resultJSON),
		Converged:  out.Result.Converged,
	}
	if out.Best != nil {
		best := out.Best.WeightedResponse
		rec.Best = &best
	}
	if err := s.ledgerPort.AppendIteration(ctx, rec); err != nil {
		return err
	}
	out.Seq = rec.Seq
	return nil
}

// requireMeasured rejects a response column with no measured value at all.
func requireMeasured(responses *design.Sheet, c *config.Campaign) error {
	if responses == nil {
		return errors.Classify(fmt.Errorf("%w: no response sheet", core.ErrShapeMismatch))
	}
	for name := range c.Responses {
		col, ok := responses.Numeric(name)
		if !ok {
			return errors.Classify(fmt.Errorf("%w: response %q is not a numeric column", core.ErrShapeMismatch, name))
		}
		if !slices.ContainsFunc(col, func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }) {
			return errors.Classify(fmt.Errorf("%w: response %q has no measured value", core.ErrInsufficientData, name))
		}
	}
	return nil
}

func (s *CampaignService) info(id core.CampaignID, c *config.Campaign, d *designer.Designer, iterations int) *CampaignInfo {
	info := &CampaignInfo{
		ID:         id,
		Name:       c.Name,
		DesignType: c.DesignType,
		Phase:      d.Phase(),
		Factors:    d.Factors().StateTable(),
		Responses:  d.Responses().Names(),
		Best:       d.BestExperiment(),
		Iterations: iterations,
	}
	for _, cat := range d.Factors().Categorical() {
		info.Categorical = append(info.Categorical, cat.Name())
	}
	return info
}
