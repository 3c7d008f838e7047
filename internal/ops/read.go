package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/rumors/internal/errors"
	"github.com/hpungsan/rumors/internal/theory"
)

// GetByID returns the theory or (nil, nil) when absent. A "viewed" event is
// recorded on every call, before the id is checked; the sink drops the ones
// it cannot store.
func (s *Service) GetByID(ctx context.Context, id string) (*theory.Theory, error) {
	id = strings.TrimSpace(id)
	s.sink.Record(ctx, theory.Event{TheoryID: id, Type: theory.EventViewed})

	return s.Lookup(ctx, id)
}

// Lookup returns the theory or (nil, nil) when absent, without recording a
// view. Share and copy paths use it so they log only their own event.
func (s *Service) Lookup(ctx context.Context, id string) (*theory.Theory, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	return s.store.GetTheory(ctx, id)
}

// ListByCategory returns a category's theories, newest first.
// An unknown category yields an empty list.
func (s *Service) ListByCategory(ctx context.Context, category string, limit int) ([]theory.Theory, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	return s.store.ListByCategory(ctx, category, s.clampLimit(limit))
}

// ListRecent returns the newest theories.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]theory.Theory, error) {
	return s.store.ListRecent(ctx, s.clampLimit(limit))
}

// ListPopular returns the most shared theories.
func (s *Service) ListPopular(ctx context.Context, limit int) ([]theory.Theory, error) {
	return s.store.ListPopular(ctx, s.clampLimit(limit))
}

// ListTrending returns the most shared theories created within the
// configured trailing window.
func (s *Service) ListTrending(ctx context.Context, limit int) ([]theory.Theory, error) {
	since := s.now().Add(-s.cfg.TrendingWindow())
	return s.store.ListTrending(ctx, s.clampLimit(limit), since)
}

// CategoryStats returns one entry per catalog category, zero-filled, in
// catalog order. Stored categories outside the catalog are appended.
func (s *Service) CategoryStats(ctx context.Context) ([]theory.CategoryStat, error) {
	counts, err := s.store.CategoryCounts(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]theory.CategoryStat, len(counts))
	for _, c := range counts {
		byCategory[c.Category] = c
	}

	catalog := theory.Categories()
	stats := make([]theory.CategoryStat, 0, len(catalog))
	for _, c := range catalog {
		st, ok := byCategory[c.Slug]
		if !ok {
			st = theory.CategoryStat{Category: c.Slug}
		}
		delete(byCategory, c.Slug)
		stats = append(stats, st)
	}
	for _, c := range counts {
		if _, ok := byCategory[c.Category]; ok {
			stats = append(stats, c)
		}
	}
	return stats, nil
}

// Analytics lists a theory's events, newest first. Failures are logged and
// yield an empty list.
func (s *Service) Analytics(ctx context.Context, id string) []theory.Event {
	events, err := s.store.ListEvents(ctx, id)
	if err != nil {
		s.log.Warnw("list analytics failed", "theory_id", id, "error", err)
		return []theory.Event{}
	}
	return events
}

// Sitemap returns the newest theory entries, capped by sitemap_limit.
func (s *Service) Sitemap(ctx context.Context) ([]theory.SitemapEntry, error) {
	return s.store.SitemapEntries(ctx, s.cfg.SitemapLimit)
}
