package main

import (
	"context"
	"fmt"

	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/pkg/config"
	"github.com/anonto42/instaclone/backend/pkg/logger"
)

// bootstrap loads configuration, initializes logging and opens the
// databases. The caller must defer db.CloseDB().
func bootstrap(migrate bool) (*config.Config, *config.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.Log)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing databases: %w", err)
	}
	if migrate {
		if err := db.Migrate(models.AllModels()...); err != nil {
			db.CloseDB()
			return nil, nil, err
		}
	}
	return cfg, db, nil
}

type shutdownFunc func(ctx context.Context)
