package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hpungsan/rumors/internal/config"
	"github.com/hpungsan/rumors/internal/db"
	"github.com/hpungsan/rumors/internal/gen"
	"github.com/hpungsan/rumors/internal/ops"
	"github.com/hpungsan/rumors/internal/pgdb"
)

// store is a persistence client the process owns and must close.
type store interface {
	ops.Store
	Close() error
}

// openStore opens the configured backend: SQLite under baseDir, or PostgreSQL.
func openStore(ctx context.Context, baseDir string, cfg *config.Config) (store, error) {
	switch cfg.DBBackend {
	case config.BackendPostgres:
		s, err := pgdb.Open(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, nil
	default:
		s, err := db.Open(baseDir)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		db.ConfigurePool(s.DB(), cfg)
		return s, nil
	}
}

// newModel builds the Gemini model. Without a usable key the returned model
// fails every call, so read paths keep working and generation reports why.
func newModel(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) gen.Model {
	m, err := gen.NewGeminiModel(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		logger.Warnw("generation unavailable", "model", cfg.Model, "error", err)
		return gen.Unavailable(err)
	}
	return m
}

// newService wires store, generator and logger into the workflow service.
// The returned func closes the store and is safe to call more than once.
func newService(ctx context.Context, baseDir string, cfg *config.Config, logger *zap.SugaredLogger) (*ops.Service, func(), error) {
	s, err := openStore(ctx, baseDir, cfg)
	if err != nil {
		return nil, nil, err
	}

	closed := false
	closeStore := func() {
		if closed {
			return
		}
		closed = true
		if err := s.Close(); err != nil {
			logger.Warnw("close store failed", "error", err)
		}
	}

	svc := ops.New(s, gen.New(newModel(ctx, cfg, logger)), nil, logger, cfg)
	return svc, closeStore, nil
}
