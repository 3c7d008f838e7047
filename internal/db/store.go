package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/rumors/internal/theory"
)

// Store is the SQLite-backed persistence client.
type Store struct {
	db *sql.DB
}

// NewStore wraps an initialized database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open initializes the database under baseDir and returns a Store.
func Open(baseDir string) (*Store, error) {
	db, err := Init(baseDir)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// DB exposes the underlying handle for pool tuning and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) InsertTheory(ctx context.Context, t *theory.Theory) (*theory.Theory, error) {
	return InsertTheory(ctx, s.db, t)
}

func (s *Store) GetTheory(ctx context.Context, id string) (*theory.Theory, error) {
	return GetTheoryByID(ctx, s.db, id)
}

func (s *Store) ListByCategory(ctx context.Context, category string, limit int) ([]theory.Theory, error) {
	return ListByCategory(ctx, s.db, category, limit)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]theory.Theory, error) {
	return ListRecent(ctx, s.db, limit)
}

func (s *Store) ListPopular(ctx context.Context, limit int) ([]theory.Theory, error) {
	return ListPopular(ctx, s.db, limit)
}

func (s *Store) ListTrending(ctx context.Context, limit int, since time.Time) ([]theory.Theory, error) {
	return ListTrending(ctx, s.db, limit, since)
}

func (s *Store) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	return ToggleFavorite(ctx, s.db, id)
}

func (s *Store) IncrementShareCount(ctx context.Context, id string) error {
	return IncrementShareCount(ctx, s.db, id)
}

func (s *Store) InsertEvent(ctx context.Context, e *theory.Event) error {
	return InsertEvent(ctx, s.db, e)
}

func (s *Store) ListEvents(ctx context.Context, theoryID string) ([]theory.Event, error) {
	return ListEvents(ctx, s.db, theoryID)
}

func (s *Store) CategoryCounts(ctx context.Context) ([]theory.CategoryStat, error) {
	return CategoryCounts(ctx, s.db)
}

func (s *Store) SitemapEntries(ctx context.Context, limit int) ([]theory.SitemapEntry, error) {
	return SitemapEntries(ctx, s.db, limit)
}

func (s *Store) Ping(ctx context.Context) bool {
	return Ping(ctx, s.db)
}
