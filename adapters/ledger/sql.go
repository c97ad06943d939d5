package ledger

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"godoe/domain/core"
	"godoe/internal"
	"godoe/internal/errors"
	"godoe/internal/migration"
	"godoe/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported drivers. Both accept queries written with ? placeholders once
// rebound by sqlx.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// SQLLedger implements ports.LedgerPort on sqlx.
type SQLLedger struct {
	db     *sqlx.DB
	logger *internal.Logger
	now    func() time.Time
}

var _ ports.LedgerPort = (*SQLLedger)(nil)

// Open connects to the ledger database and runs the schema migration.
func Open(ctx context.Context, driver, dsn string, logger *internal.Logger) (*SQLLedger, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported ledger driver %q", driver))
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	if driver == DriverSQLite {
		// A single writer connection; sqlite serialises writes anyway.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("connect %s ledger: %w", driver, err))
	}
	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, errors.WithCode(errors.CodeDatabaseError, err)
		}
	}
	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	logger.Info("ledger: %s schema %s ready", driver, runner.Version())
	return New(db, logger), nil
}

// New wraps an already migrated connection.
func New(db *sqlx.DB, logger *internal.Logger) *SQLLedger {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &SQLLedger{db: db, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Close releases the connection pool.
func (l *SQLLedger) Close() error {
	return l.db.Close()
}

// CreateCampaign stores a new campaign, assigning an ID when none is set.
func (l *SQLLedger) CreateCampaign(ctx context.Context, rec *ports.CampaignRecord) error {
	if rec.ID.IsEmpty() {
		rec.ID = core.NewCampaignID()
	}
	now := l.now()
	rec.CreatedAt, rec.UpdatedAt = now, now
	_, err := l.db.NamedExecContext(ctx, `
		INSERT INTO campaigns (id, name, design_type, phase, config, state, created_at, updated_at)
		VALUES (:id, :name, :design_type, :phase, :config, :state, :created_at, :updated_at)
	`, rec)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("create campaign %s: %w", rec.ID, err))
	}
	l.logger.Debug("ledger: created campaign %s (%s)", rec.ID, rec.Name)
	return nil
}

// GetCampaign loads one campaign.
func (l *SQLLedger) GetCampaign(ctx context.Context, id core.CampaignID) (*ports.CampaignRecord, error) {
	var rec ports.CampaignRecord
	err := l.db.GetContext(ctx, &rec, l.db.Rebind(`
		SELECT id, name, design_type, phase, config, state, created_at, updated_at
		FROM campaigns
		WHERE id = ?
	`), id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.Classify(fmt.Errorf("%w %s", core.ErrCampaignNotFound, id))
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return &rec, nil
}

// ListCampaigns returns the newest campaigns first. A non-positive limit
// returns all of them.
func (l *SQLLedger) ListCampaigns(ctx context.Context, limit int) ([]ports.CampaignRecord, error) {
	query := `
		SELECT id, name, design_type, phase, config, state, created_at, updated_at
		FROM campaigns
		ORDER BY created_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var recs []ports.CampaignRecord
	if err := l.db.SelectContext(ctx, &recs, l.db.Rebind(query), args...); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return recs, nil
}

// SaveCheckpoint replaces the stored designer state of a campaign.
func (l *SQLLedger) SaveCheckpoint(ctx context.Context, id core.CampaignID, phase, state string) error {
	res, err := l.db.ExecContext(ctx, l.db.Rebind(`
		UPDATE campaigns
		SET phase = ?, state = ?, updated_at = ?
		WHERE id = ?
	`), phase, state, l.now(), id)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Classify(fmt.Errorf("%w %s", core.ErrCampaignNotFound, id))
	}
	return nil
}

// AppendIteration stores an iteration under the next sequence number of its
// campaign.
func (l *SQLLedger) AppendIteration(ctx context.Context, rec *ports.IterationRecord) error {
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT COUNT(*) FROM campaigns WHERE id = ?`), rec.CampaignID); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	if exists == 0 {
		return errors.Classify(fmt.Errorf("%w %s", core.ErrCampaignNotFound, rec.CampaignID))
	}

	var last int
	if err := tx.GetContext(ctx, &last, tx.Rebind(`SELECT COALESCE(MAX(seq), 0) FROM iterations WHERE campaign_id = ?`), rec.CampaignID); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	if rec.ID.IsEmpty() {
		rec.ID = core.NewIterationID()
	}
	rec.Seq = last + 1
	rec.CreatedAt = l.now()

	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO iterations (id, campaign_id, seq, phase, design_hash, design, response, result, best, converged, created_at)
		VALUES (:id, :campaign_id, :seq, :phase, :design_hash, :design, :response, :result, :best, :converged, :created_at)
	`, rec); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("append iteration %d: %w", rec.Seq, err))
	}
	if err := tx.Commit(); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	l.logger.Debug("ledger: campaign %s iteration %d (%s)", rec.CampaignID, rec.Seq, rec.Phase)
	return nil
}

// ListIterations returns a campaign's iterations in sequence order.
func (l *SQLLedger) ListIterations(ctx context.Context, id core.CampaignID) ([]ports.IterationRecord, error) {
	var recs []ports.IterationRecord
	err := l.db.SelectContext(ctx, &recs, l.db.Rebind(`
		SELECT id, campaign_id, seq, phase, design_hash, design, response, result, best, converged, created_at
		FROM iterations
		WHERE campaign_id = ?
		ORDER BY seq
	`), id)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	return recs, nil
}
