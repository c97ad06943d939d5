package app

import (
	"context"
	"fmt"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/internal/errors"
	"godoe/internal/testkit"
)

// DefaultMaxIterations caps a simulated campaign that never converges.
const DefaultMaxIterations = 30

// SimulationRequest runs a whole campaign against a synthetic surface.
type SimulationRequest struct {
	Surface       testkit.Surface
	Simulator     testkit.SimulatorConfig
	MaxIterations int
	// Campaign overrides the surface's own campaign file when set.
	Campaign []byte
}

// SimulationResult summarises a simulated campaign.
type SimulationResult struct {
	CampaignID core.CampaignID     `json:"campaign_id"`
	Iterations []*IterationOutcome `json:"iterations"`
	Runs       int                 `json:"runs"`
	Converged  bool                `json:"converged"`
	Best       *design.BestRecord  `json:"best,omitempty"`
	// Distance is how far the best run lies from the surface optimum.
	Distance float64 `json:"distance"`
}

// Simulate creates a campaign and loops design → measure → evaluate until it
// converges or the iteration cap is hit.
func (s *CampaignService) Simulate(ctx context.Context, req SimulationRequest) (*SimulationResult, error) {
	if req.Surface.Eval == nil {
		return nil, errors.InvalidInput("simulation needs a surface")
	}
	maxIter := req.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	raw := req.Campaign
	if len(raw) == 0 {
		raw = []byte(req.Surface.Campaign)
	}

	info, err := s.CreateCampaign(ctx, raw)
	if err != nil {
		return nil, err
	}
	sim := testkit.NewSimulator(req.Surface, req.Simulator)
	result := &SimulationResult{CampaignID: info.ID}

	for i := 0; i < maxIter; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet, err := s.NextDesign(ctx, info.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "iteration %d design", i+1)
		}
		responses, err := sim.Respond(sheet)
		if err != nil {
			return nil, errors.Wrapf(err, "iteration %d measurement", i+1)
		}
		outcome, err := s.SubmitResponses(ctx, info.ID, responses)
		if err != nil {
			return nil, errors.Wrapf(err, "iteration %d evaluation", i+1)
		}
		result.Iterations = append(result.Iterations, outcome)
		result.Best = outcome.Best
		if outcome.Done {
			result.Converged = true
			break
		}
	}

	result.Runs = sim.Runs()
	if result.Best != nil {
		result.Distance = req.Surface.Distance(result.Best.OptimalSettings.Numeric)
	}
	s.logger.Info("simulation %s on %s: %d iterations, %d runs, converged=%t",
		info.ID, req.Surface.Name, len(result.Iterations), result.Runs, result.Converged)
	if !result.Converged {
		s.logger.Warn("simulation %s stopped after %d iterations without converging", info.ID, maxIter)
	}
	return result, nil
}

func (r *SimulationResult) String() string {
	return fmt.Sprintf("campaign %s: %d iterations, %d runs, converged=%t, distance to optimum %.3g",
		r.CampaignID, len(r.Iterations), r.Runs, r.Converged, r.Distance)
}
