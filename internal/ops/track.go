package ops

import (
	"context"
	"strings"
	"time"

	"github.com/hpungsan/rumors/internal/errors"
	"github.com/hpungsan/rumors/internal/theory"
)

// ToggleFavorite flips the favorite flag and records a "saved" event.
// Concurrent toggles are last-write-wins.
func (s *Service) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, errors.NewInvalidRequest("id is required")
	}

	isFavorite, err := s.store.ToggleFavorite(ctx, id)
	if err != nil {
		return false, err
	}

	action := "unfavorited"
	if isFavorite {
		action = "favorited"
	}
	s.sink.Record(ctx, theory.Event{
		TheoryID: id,
		Type:     theory.EventSaved,
		Metadata: map[string]any{"is_favorite": isFavorite, "action": action},
	})
	return isFavorite, nil
}

// TrackShare increments the share count and records a "shared" event.
// Failures are logged; sharing in the UI proceeds regardless.
func (s *Service) TrackShare(ctx context.Context, id, platform string) {
	platform = strings.ToLower(strings.TrimSpace(platform))

	if err := s.store.IncrementShareCount(ctx, id); err != nil {
		s.log.Warnw("share count increment failed", "theory_id", id, "platform", platform, "error", err)
	}

	e := theory.Event{
		TheoryID: id,
		Type:     theory.EventShared,
		Metadata: map[string]any{
			"platform":  platform,
			"shared_at": s.now().UTC().Format(time.RFC3339),
		},
	}
	if platform != "" {
		e.Platform = &platform
	}
	s.sink.Record(ctx, e)
}

// TrackCopy records a "copied" event.
func (s *Service) TrackCopy(ctx context.Context, id string) {
	s.sink.Record(ctx, theory.Event{
		TheoryID: id,
		Type:     theory.EventCopied,
		Metadata: map[string]any{"copied_at": s.now().UTC().Format(time.RFC3339)},
	})
}
