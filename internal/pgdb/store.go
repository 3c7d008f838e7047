package pgdb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hpungsan/rumors/internal/errors"
	"github.com/hpungsan/rumors/internal/theory"
)

const (
	theoriesTable  = "conspiracy_theories"
	analyticsTable = "theory_analytics"
)

var theoryColumns = []string{
	"id", "content", "category", "classification", "created_at", "updated_at",
	"prompt_used", "is_favorite", "share_count",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store is the PostgreSQL-backed persistence client.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps a connected pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// InsertTheory stores a new theory; created_at and updated_at come from the database.
func (s *Store) InsertTheory(ctx context.Context, t *theory.Theory) (*theory.Theory, error) {
	if err := theory.ValidateForInsert(t); err != nil {
		return nil, err
	}

	classification := t.Classification
	if classification == "" {
		classification = theory.DefaultClassification
	}

	query, args, err := psql.Insert(theoriesTable).
		Columns("id", "content", "category", "classification", "prompt_used", "is_favorite", "share_count").
		Values(t.ID, t.Content, t.Category, string(classification), nullable(t.PromptUsed), t.IsFavorite, t.ShareCount).
		Suffix("RETURNING " + joinColumns()).
		ToSql()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	stored, err := scanTheory(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, "theory", t.ID)
	}
	return stored, nil
}

// GetTheory returns (nil, nil) when the id is absent.
func (s *Store) GetTheory(ctx context.Context, id string) (*theory.Theory, error) {
	query, args, err := psql.Select(theoryColumns...).
		From(theoriesTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	t, err := scanTheory(s.pool.QueryRow(ctx, query, args...))
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError(err, "theory", id)
	}
	return t, nil
}

func (s *Store) ListByCategory(ctx context.Context, category string, limit int) ([]theory.Theory, error) {
	return s.listTheories(ctx, psql.Select(theoryColumns...).
		From(theoriesTable).
		Where(sq.Eq{"category": category}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)))
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]theory.Theory, error) {
	return s.listTheories(ctx, psql.Select(theoryColumns...).
		From(theoriesTable).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)))
}

func (s *Store) ListPopular(ctx context.Context, limit int) ([]theory.Theory, error) {
	return s.listTheories(ctx, psql.Select(theoryColumns...).
		From(theoriesTable).
		OrderBy("share_count DESC", "created_at DESC", "id DESC").
		Limit(uint64(limit)))
}

func (s *Store) ListTrending(ctx context.Context, limit int, since time.Time) ([]theory.Theory, error) {
	return s.listTheories(ctx, psql.Select(theoryColumns...).
		From(theoriesTable).
		Where(sq.GtOrEq{"created_at": since}).
		OrderBy("share_count DESC", "created_at DESC", "id DESC").
		Limit(uint64(limit)))
}

// ToggleFavorite flips is_favorite in one statement and returns the new value.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	query, args, err := psql.Update(theoriesTable).
		Set("is_favorite", sq.Expr("NOT is_favorite")).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING is_favorite").
		ToSql()
	if err != nil {
		return false, errors.NewInternal(err)
	}

	var next bool
	err = s.pool.QueryRow(ctx, query, args...).Scan(&next)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return false, errors.NewNotFound(id)
	}
	if err != nil {
		return false, mapError(err, "theory", id)
	}
	return next, nil
}

// IncrementShareCount calls the increment_share_count database function.
func (s *Store) IncrementShareCount(ctx context.Context, id string) error {
	query, args, err := psql.Select().
		Column(sq.Expr("increment_share_count(?)", id)).
		ToSql()
	if err != nil {
		return errors.NewInternal(err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return mapError(err, "theory", id)
	}
	return nil
}

func (s *Store) InsertEvent(ctx context.Context, e *theory.Event) error {
	if err := theory.ValidateEvent(e); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = theory.NewEventID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var metadata []byte
	if len(e.Metadata) > 0 {
		data, err := json.Marshal(e.Metadata)
		if err != nil {
			return errors.NewInvalidRequest("metadata is not serializable: " + err.Error())
		}
		metadata = data
	}

	var platform any
	if e.Platform != nil {
		platform = *e.Platform
	}

	query, args, err := psql.Insert(analyticsTable).
		Columns("id", "theory_id", "event_type", "platform", "created_at", "metadata").
		Values(e.ID, e.TheoryID, string(e.Type), platform, e.CreatedAt, metadata).
		ToSql()
	if err != nil {
		return errors.NewInternal(err)
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return mapError(err, "event", e.ID)
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, theoryID string) ([]theory.Event, error) {
	query, args, err := psql.Select("id", "theory_id", "event_type", "platform", "created_at", "metadata").
		From(analyticsTable).
		Where(sq.Eq{"theory_id": theoryID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "theory", theoryID)
	}
	defer rows.Close()

	events := make([]theory.Event, 0)
	for rows.Next() {
		var (
			e         theory.Event
			eventType string
			metadata  []byte
		)
		if err := rows.Scan(&e.ID, &e.TheoryID, &eventType, &e.Platform, &e.CreatedAt, &metadata); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.Type = theory.EventType(eventType)
		e.CreatedAt = e.CreatedAt.UTC()
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, errors.NewInternal(err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return events, nil
}

func (s *Store) CategoryCounts(ctx context.Context) ([]theory.CategoryStat, error) {
	query, args, err := psql.Select("category", "COUNT(*)", "MAX(created_at)").
		From(theoriesTable).
		GroupBy("category").
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "category", "*")
	}
	defer rows.Close()

	stats := make([]theory.CategoryStat, 0)
	for rows.Next() {
		var st theory.CategoryStat
		if err := rows.Scan(&st.Category, &st.Count, &st.Latest); err != nil {
			return nil, errors.NewInternal(err)
		}
		st.Latest = st.Latest.UTC()
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return stats, nil
}

func (s *Store) SitemapEntries(ctx context.Context, limit int) ([]theory.SitemapEntry, error) {
	query, args, err := psql.Select("id", "created_at", "updated_at").
		From(theoriesTable).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "sitemap", "*")
	}
	defer rows.Close()

	entries := make([]theory.SitemapEntry, 0)
	for rows.Next() {
		var e theory.SitemapEntry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		e.UpdatedAt = e.UpdatedAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

// Ping runs a trivial read against the theories table.
func (s *Store) Ping(ctx context.Context) bool {
	query, args, err := psql.Select("id").From(theoriesTable).Limit(1).ToSql()
	if err != nil {
		return false
	}
	var id string
	err = s.pool.QueryRow(ctx, query, args...).Scan(&id)
	return err == nil || stderrors.Is(err, pgx.ErrNoRows)
}

func (s *Store) listTheories(ctx context.Context, b sq.SelectBuilder) ([]theory.Theory, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "theory", "*")
	}
	defer rows.Close()

	theories := make([]theory.Theory, 0)
	for rows.Next() {
		t, err := scanTheory(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		theories = append(theories, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return theories, nil
}

func scanTheory(row pgx.Row) (*theory.Theory, error) {
	var (
		t              theory.Theory
		classification string
		promptUsed     *string
	)
	err := row.Scan(
		&t.ID, &t.Content, &t.Category, &classification, &t.CreatedAt, &t.UpdatedAt,
		&promptUsed, &t.IsFavorite, &t.ShareCount,
	)
	if err != nil {
		return nil, err
	}
	t.Classification = theory.Classification(classification)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if promptUsed != nil {
		t.PromptUsed = *promptUsed
	}
	return &t, nil
}

func joinColumns() string {
	return strings.Join(theoryColumns, ", ")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
