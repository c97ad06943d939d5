package migration

import (
	"context"

	"godoe/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the campaign ledger schema. Every statement is
// idempotent and portable between sqlite and postgres.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createCampaignsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create campaigns table")
	}

	if err := r.createIterationsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create iterations table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createCampaignsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS campaigns (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			design_type TEXT NOT NULL,
			phase TEXT NOT NULL,
			config TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIterationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS iterations (
			id TEXT PRIMARY KEY,
			campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			phase TEXT NOT NULL,
			design_hash TEXT NOT NULL,
			design TEXT NOT NULL,
			response TEXT NOT NULL,
			result TEXT NOT NULL,
			best DOUBLE PRECISION,
			converged BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (campaign_id, seq)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_iterations_campaign ON iterations(campaign_id)`,
		`CREATE INDEX IF NOT EXISTS idx_campaigns_created ON campaigns(created_at)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
