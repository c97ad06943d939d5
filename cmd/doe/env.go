package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"godoe/app"
	"godoe/domain/core"
	"godoe/internal"
	"godoe/internal/config"
	"godoe/internal/container"

	"gopkg.in/yaml.v3"
)

// cliEnv holds what every command needs: configuration, logger and the
// container wiring the campaign service.
type cliEnv struct {
	dbURL    string
	logLevel string

	cfg       *config.Config
	logger    *internal.Logger
	container *container.Container
	service   *app.CampaignService
	out       io.Writer
}

func (e *cliEnv) open(ctx context.Context) error {
	if e.dbURL != "" {
		os.Setenv("DATABASE_URL", e.dbURL)
	}
	if e.logLevel != "" {
		os.Setenv("LOG_LEVEL", e.logLevel)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	if e.out == nil {
		e.out = os.Stdout
	}

	c, err := container.New(cfg, e.logger)
	if err != nil {
		return err
	}
	if err := c.InitWithLedger(ctx); err != nil {
		return err
	}
	e.container = c
	e.service = c.Campaigns
	return nil
}

func (e *cliEnv) close() error {
	if e.container == nil {
		return nil
	}
	err := e.container.Shutdown(context.Background())
	e.container = nil
	return err
}

// printYAML writes v to the command output.
func (e *cliEnv) printYAML(v interface{}) error {
	enc := yaml.NewEncoder(e.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func parseID(raw string) (core.CampaignID, error) {
	id, err := core.ParseCampaignID(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid campaign id: %w", err)
	}
	return id, nil
}
