package rng

import (
	"context"
	"fmt"
	"math/rand"

	"godoe/domain/core"
	"godoe/ports"
)

// StreamAdapter derives deterministic RNG streams from a base seed. The same
// campaign, purpose, iteration and seed always yield the same sequence.
type StreamAdapter struct{}

var _ ports.RNGPort = StreamAdapter{}

// NewStreamAdapter returns the default RNG port implementation.
func NewStreamAdapter() StreamAdapter {
	return StreamAdapter{}
}

// Stream creates the stream for one iteration of a campaign.
func (StreamAdapter) Stream(ctx context.Context, campaignID, purpose string, iteration int, baseSeed int64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if iteration < 0 {
		return nil, fmt.Errorf("%w: negative iteration %d", core.ErrInvalidKnob, iteration)
	}
	return rand.New(rand.NewSource(Seed(campaignID, purpose, iteration, baseSeed))), nil
}

// Seed combines the stream coordinates into one source seed.
func Seed(campaignID, purpose string, iteration int, baseSeed int64) int64 {
	seed := baseSeed
	if campaignID != "" {
		seed += int64(hashString(campaignID))
	}
	if purpose != "" {
		seed += int64(hashString(purpose))
	}
	return seed + int64(iteration)*7919
}

// djb2
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
