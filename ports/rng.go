package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic operations
type RNGPort interface {
	// Stream creates a deterministic RNG stream for one iteration of a campaign,
	// so re-running an iteration with the same base seed reproduces its model fit.
	Stream(ctx context.Context, campaignID, purpose string, iteration int, baseSeed int64) (*rand.Rand, error)
}
