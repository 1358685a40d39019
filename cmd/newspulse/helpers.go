package main

import (
	"context"
	"fmt"

	"github.com/deusflow/newspulse/internal/app"
	"github.com/deusflow/newspulse/internal/config"
	"github.com/deusflow/newspulse/internal/logger"
)

// setup loads configuration, initialises logging and builds the app.
func setup(ctx context.Context) (*config.Config, *app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Debug)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, a, nil
}
