// Package ops is the theory workflow service: generation, persistence and
// best-effort analytics behind one explicitly constructed Service.
package ops

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/rumors/internal/config"
	"github.com/hpungsan/rumors/internal/gen"
	"github.com/hpungsan/rumors/internal/theory"
)

// Store is the persistence client. Both the SQLite and PostgreSQL stores implement it.
type Store interface {
	InsertTheory(ctx context.Context, t *theory.Theory) (*theory.Theory, error)
	// GetTheory returns (nil, nil) when id is absent.
	GetTheory(ctx context.Context, id string) (*theory.Theory, error)
	ListByCategory(ctx context.Context, category string, limit int) ([]theory.Theory, error)
	ListRecent(ctx context.Context, limit int) ([]theory.Theory, error)
	ListPopular(ctx context.Context, limit int) ([]theory.Theory, error)
	ListTrending(ctx context.Context, limit int, since time.Time) ([]theory.Theory, error)
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	IncrementShareCount(ctx context.Context, id string) error
	InsertEvent(ctx context.Context, e *theory.Event) error
	ListEvents(ctx context.Context, theoryID string) ([]theory.Event, error)
	CategoryCounts(ctx context.Context) ([]theory.CategoryStat, error)
	SitemapEntries(ctx context.Context, limit int) ([]theory.SitemapEntry, error)
	Ping(ctx context.Context) bool
}

// Generator produces theory text. *gen.Generator implements it.
type Generator interface {
	Generate(ctx context.Context, category string, classification theory.Classification) (*gen.Generated, error)
	GenerateMany(ctx context.Context, category string, classification theory.Classification, n int) ([]*gen.Generated, error)
	Ping(ctx context.Context) bool
}

// Service orchestrates generation, persistence and analytics.
type Service struct {
	store Store
	gen   Generator
	sink  EventSink
	log   *zap.SugaredLogger
	cfg   *config.Config
	now   func() time.Time
}

// New wires a Service. A nil sink records through store; a nil logger
// discards; a nil cfg uses defaults.
func New(store Store, generator Generator, sink EventSink, logger *zap.SugaredLogger, cfg *config.Config) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if sink == nil {
		sink = NewStoreSink(store, logger)
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Service{
		store: store,
		gen:   generator,
		sink:  sink,
		log:   logger,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config { return s.cfg }

// clampLimit applies the configured default and maximum to a list limit.
func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultListLimit
	}
	if limit > s.cfg.MaxListLimit {
		limit = s.cfg.MaxListLimit
	}
	return limit
}

// Status reports connectivity of the generator and the store.
type Status struct {
	Generator bool `json:"generator"`
	Database  bool `json:"database"`
}

// Status probes both collaborators. Display only; it never gates writes.
func (s *Service) Status(ctx context.Context) Status {
	return Status{
		Generator: s.gen.Ping(ctx),
		Database:  s.store.Ping(ctx),
	}
}
