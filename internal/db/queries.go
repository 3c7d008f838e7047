package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/hpungsan/rumors/internal/errors"
	"github.com/hpungsan/rumors/internal/theory"
)

const theoryColumns = `id, content, category, classification, created_at, updated_at,
	prompt_used, is_favorite, share_count`

// InsertTheory stores a new theory and returns the stored row.
// Timestamps are assigned here; the caller's CreatedAt/UpdatedAt are ignored.
func InsertTheory(ctx context.Context, db *sql.DB, t *theory.Theory) (*theory.Theory, error) {
	if err := theory.ValidateForInsert(t); err != nil {
		return nil, err
	}

	classification := t.Classification
	if classification == "" {
		classification = theory.DefaultClassification
	}

	now := toMillis(time.Now())

	query := `
		INSERT INTO conspiracy_theories (` + theoryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + theoryColumns

	row := db.QueryRowContext(ctx, query,
		t.ID, t.Content, t.Category, string(classification), now, now,
		toNullString(t.PromptUsed), boolToInt(t.IsFavorite), t.ShareCount,
	)
	stored, err := scanTheory(row)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, errors.NewConflict("theory already exists: " + t.ID)
		}
		if isCheckConstraintError(err) {
			return nil, errors.NewInvalidRequest("theory violates schema constraints: " + err.Error())
		}
		return nil, errors.NewInternal(err)
	}

	return stored, nil
}

// GetTheoryByID retrieves a theory by id. Returns (nil, nil) when absent.
func GetTheoryByID(ctx context.Context, db *sql.DB, id string) (*theory.Theory, error) {
	query := `SELECT ` + theoryColumns + ` FROM conspiracy_theories WHERE id = ?`

	t, err := scanTheory(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return t, nil
}

// ListByCategory returns theories in a category, newest first.
func ListByCategory(ctx context.Context, db *sql.DB, category string, limit int) ([]theory.Theory, error) {
	query := `
		SELECT ` + theoryColumns + `
		FROM conspiracy_theories
		WHERE category = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return queryTheories(ctx, db, query, category, limit)
}

// ListRecent returns the newest theories across all categories.
func ListRecent(ctx context.Context, db *sql.DB, limit int) ([]theory.Theory, error) {
	query := `
		SELECT ` + theoryColumns + `
		FROM conspiracy_theories
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	return queryTheories(ctx, db, query, limit)
}

// ListPopular returns theories ordered by share count, ties broken by recency.
func ListPopular(ctx context.Context, db *sql.DB, limit int) ([]theory.Theory, error) {
	query := `
		SELECT ` + theoryColumns + `
		FROM conspiracy_theories
		ORDER BY share_count DESC, created_at DESC, id DESC
		LIMIT ?
	`
	return queryTheories(ctx, db, query, limit)
}

// ListTrending returns theories created at or after since, ordered by share count.
func ListTrending(ctx context.Context, db *sql.DB, limit int, since time.Time) ([]theory.Theory, error) {
	query := `
		SELECT ` + theoryColumns + `
		FROM conspiracy_theories
		WHERE created_at >= ?
		ORDER BY share_count DESC, created_at DESC, id DESC
		LIMIT ?
	`
	return queryTheories(ctx, db, query, toMillis(since), limit)
}

// ToggleFavorite flips is_favorite and bumps updated_at, returning the new value.
// Concurrent toggles are last-write-wins.
func ToggleFavorite(ctx context.Context, db *sql.DB, id string) (bool, error) {
	var current int
	err := db.QueryRowContext(ctx,
		`SELECT is_favorite FROM conspiracy_theories WHERE id = ?`, id,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return false, errors.NewNotFound(id)
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}

	next := current == 0
	result, err := db.ExecContext(ctx,
		`UPDATE conspiracy_theories SET is_favorite = ?, updated_at = ? WHERE id = ?`,
		boolToInt(next), toMillis(time.Now()), id,
	)
	if err != nil {
		return false, errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return false, errors.NewNotFound(id)
	}

	return next, nil
}

// IncrementShareCount adds one to share_count in a single statement so
// concurrent shares never lose an increment. A missing id is a no-op.
func IncrementShareCount(ctx context.Context, db *sql.DB, id string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE conspiracy_theories SET share_count = share_count + 1 WHERE id = ?`, id,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// InsertEvent appends an analytics row. Unknown event types are rejected
// before any write.
func InsertEvent(ctx context.Context, db *sql.DB, e *theory.Event) error {
	if err := theory.ValidateEvent(e); err != nil {
		return err
	}

	if e.ID == "" {
		e.ID = theory.NewEventID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var metadata sql.NullString
	if len(e.Metadata) > 0 {
		data, err := json.Marshal(e.Metadata)
		if err != nil {
			return errors.NewInvalidRequest("metadata is not serializable: " + err.Error())
		}
		metadata = sql.NullString{String: string(data), Valid: true}
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO theory_analytics (id, theory_id, event_type, platform, created_at, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.TheoryID, string(e.Type), toNullString(derefString(e.Platform)), toMillis(e.CreatedAt), metadata)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewConflict("event already exists: " + e.ID)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// ListEvents returns the analytics rows for a theory, newest first.
func ListEvents(ctx context.Context, db *sql.DB, theoryID string) ([]theory.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, theory_id, event_type, platform, created_at, metadata
		FROM theory_analytics
		WHERE theory_id = ?
		ORDER BY created_at DESC, id DESC
	`, theoryID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	events := make([]theory.Event, 0)
	for rows.Next() {
		var (
			e         theory.Event
			eventType string
			platform  sql.NullString
			createdAt int64
			metadata  sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.TheoryID, &eventType, &platform, &createdAt, &metadata); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.Type = theory.EventType(eventType)
		e.Platform = fromNullString(platform)
		e.CreatedAt = fromMillis(createdAt)
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
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

// CategoryCounts aggregates stored theories per category in one query.
func CategoryCounts(ctx context.Context, db *sql.DB) ([]theory.CategoryStat, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT category, COUNT(*), MAX(created_at)
		FROM conspiracy_theories
		GROUP BY category
		ORDER BY category
	`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	stats := make([]theory.CategoryStat, 0)
	for rows.Next() {
		var (
			s      theory.CategoryStat
			latest int64
		)
		if err := rows.Scan(&s.Category, &s.Count, &latest); err != nil {
			return nil, errors.NewInternal(err)
		}
		s.Latest = fromMillis(latest)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return stats, nil
}

// SitemapEntries returns the newest theory ids with their timestamps.
func SitemapEntries(ctx context.Context, db *sql.DB, limit int) ([]theory.SitemapEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, created_at, updated_at
		FROM conspiracy_theories
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	entries := make([]theory.SitemapEntry, 0)
	for rows.Next() {
		var (
			e                    theory.SitemapEntry
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&e.ID, &createdAt, &updatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.CreatedAt = fromMillis(createdAt)
		e.UpdatedAt = fromMillis(updatedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

// Ping runs a trivial read against the theories table.
func Ping(ctx context.Context, db *sql.DB) bool {
	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM conspiracy_theories LIMIT 1`).Scan(&id)
	return err == nil || err == sql.ErrNoRows
}

func queryTheories(ctx context.Context, db *sql.DB, query string, args ...any) ([]theory.Theory, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
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

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTheory scans a single row into a Theory struct.
func scanTheory(row scanner) (*theory.Theory, error) {
	var (
		t              theory.Theory
		classification string
		createdAt      int64
		updatedAt      int64
		promptUsed     sql.NullString
		isFavorite     int
	)

	err := row.Scan(
		&t.ID, &t.Content, &t.Category, &classification, &createdAt, &updatedAt,
		&promptUsed, &isFavorite, &t.ShareCount,
	)
	if err != nil {
		return nil, err
	}

	t.Classification = theory.Classification(classification)
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	t.PromptUsed = promptUsed.String
	t.IsFavorite = isFavorite != 0

	return &t, nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isCheckConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}

// Timestamps are stored as unix milliseconds.
func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// toNullString maps "" to NULL.
func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
