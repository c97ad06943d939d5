package container

import (
	"context"
	"fmt"

	"godoe/adapters/api"
	"godoe/adapters/ledger"
	"godoe/adapters/rng"
	"godoe/app"
	"godoe/internal"
	"godoe/internal/config"
	"godoe/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	Ledger ports.LedgerPort
	RNG    ports.RNGPort

	// Services
	Campaigns *app.CampaignService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	}
	return &Container{
		Config: cfg,
		Logger: logger,
		RNG:    rng.NewStreamAdapter(),
	}, nil
}

// InitWithLedger opens the configured ledger database and builds the
// services on top of it.
func (c *Container) InitWithLedger(ctx context.Context) error {
	l, err := ledger.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to open campaign ledger: %w", err)
	}
	return c.InitWith(l)
}

// InitWith builds the services on an already opened ledger.
func (c *Container) InitWith(l ports.LedgerPort) error {
	if l == nil {
		return fmt.Errorf("ledger cannot be nil")
	}
	c.Ledger = l
	c.Campaigns = app.NewCampaignService(c.Ledger, c.RNG, c.Logger)
	c.Logger.Debug("container initialized with %s ledger", c.Config.Database.Driver)
	return nil
}

// Server builds the HTTP API for the campaign service.
func (c *Container) Server() (*api.Server, error) {
	if c.Campaigns == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	return api.NewServer(c.Campaigns, c.Logger), nil
}

// Shutdown releases the ledger and flushes the logger.
func (c *Container) Shutdown(ctx context.Context) error {
	var err error
	if c.Ledger != nil {
		err = c.Ledger.Close()
		c.Ledger = nil
	}
	c.Logger.Sync()
	return err
}
