package ports

import (
	"context"
	"time"

	"godoe/domain/core"
)

// CampaignRecord is one campaign row in the ledger. Config holds the campaign
// YAML it was created from and State the latest designer checkpoint (YAML).
type CampaignRecord struct {
	ID         core.CampaignID `db:"id" json:"id"`
	Name       string          `db:"name" json:"name"`
	DesignType string          `db:"design_type" json:"design_type"`
	Phase      string          `db:"phase" json:"phase"`
	Config     string          `db:"config" json:"-"`
	State      string          `db:"state" json:"-"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// IterationRecord is one evaluated design. Design and Response are YAML sheet
// documents (YAML keeps unmeasured NaN cells), Result is the JSON outcome. Seq
// counts iterations from 1 within a campaign.
type IterationRecord struct {
	ID         core.IterationID `db:"id" json:"id"`
	CampaignID core.CampaignID  `db:"campaign_id" json:"campaign_id"`
	Seq        int              `db:"seq" json:"seq"`
	Phase      string           `db:"phase" json:"phase"`
	DesignHash string           `db:"design_hash" json:"design_hash"`
	Design     string           `db:"design" json:"design"`
	Response   string           `db:"response" json:"response"`
	Result     string           `db:"result" json:"result"`
	Best       *float64         `db:"best" json:"best,omitempty"`
	Converged  bool             `db:"converged" json:"converged"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
}

// LedgerPort persists campaigns, their iterations and checkpoints.
type LedgerPort interface {
	CreateCampaign(ctx context.Context, rec *CampaignRecord) error
	GetCampaign(ctx context.Context, id core.CampaignID) (*CampaignRecord, error)
	ListCampaigns(ctx context.Context, limit int) ([]CampaignRecord, error)
	// SaveCheckpoint replaces the campaign's stored designer state.
	SaveCheckpoint(ctx context.Context, id core.CampaignID, phase, state string) error
	// AppendIteration assigns the next sequence number and stores the record.
	AppendIteration(ctx context.Context, rec *IterationRecord) error
	ListIterations(ctx context.Context, id core.CampaignID) ([]IterationRecord, error)
	Close() error
}
