package ops

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/rumors/internal/config"
	"github.com/hpungsan/rumors/internal/db"
	"github.com/hpungsan/rumors/internal/errors"
	"github.com/hpungsan/rumors/internal/gen"
	"github.com/hpungsan/rumors/internal/theory"
)

// fakeModel is a gen.Model returning canned text.
type fakeModel struct {
	text string
	err  error
}

func (f fakeModel) GenerateText(context.Context, string) (string, error) {
	return f.text, f.err
}

// failingInsertStore rejects every theory insert.
type failingInsertStore struct {
	*db.Store
}

func (failingInsertStore) InsertTheory(context.Context, *theory.Theory) (*theory.Theory, error) {
	return nil, errors.NewInternal(stderrors.New("disk full"))
}

// failingEventStore rejects every analytics write.
type failingEventStore struct {
	*db.Store
}

func (failingEventStore) InsertEvent(context.Context, *theory.Event) error {
	return errors.NewInternal(stderrors.New("analytics table offline"))
}

// recordingSink captures events and forwards them to an inner sink.
type recordingSink struct {
	mu     sync.Mutex
	events []theory.Event
	inner  EventSink
}

func (r *recordingSink) Record(ctx context.Context, e theory.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	if r.inner != nil {
		r.inner.Record(ctx, e)
	}
}

func openStore(t *testing.T) *db.Store {
	t.Helper()
	store, err := db.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newService(t *testing.T, store Store, text string) *Service {
	t.Helper()
	return New(store, gen.New(fakeModel{text: text}), nil, nil, config.DefaultConfig())
}

func eventsOfType(t *testing.T, store Store, id string, typ theory.EventType) []theory.Event {
	t.Helper()
	events, err := store.ListEvents(context.Background(), id)
	require.NoError(t, err)
	var out []theory.Event
	for _, e := range events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestGenerateAndSave_KnownCategory(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "  Einstein's hair was a weather antenna.  ")
	ctx := context.Background()

	got, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "absurd-science"})
	require.NoError(t, err)
	require.NotNil(t, got)

	require.Equal(t, "absurd-science", got.Category)
	require.Equal(t, theory.TopSecret, got.Classification)
	require.Equal(t, "Einstein's hair was a weather antenna.", got.Content)
	require.Equal(t, 0, got.ShareCount)
	require.False(t, got.IsFavorite)
	require.Contains(t, got.ID, theory.IDPrefix)
	require.False(t, got.CreatedAt.IsZero())
	require.Equal(t, gen.BuildPrompt("absurd-science"), got.PromptUsed)

	generated := eventsOfType(t, store, got.ID, theory.EventGenerated)
	require.Len(t, generated, 1)
	require.Equal(t, "absurd-science", generated[0].Metadata["category"])
	require.Equal(t, "TOP SECRET", generated[0].Metadata["classification"])
	require.NotEmpty(t, generated[0].Metadata["generated_at"])
}

func TestGenerateAndSave_RequestedClassification(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Ghosts unionized.")

	got, err := svc.GenerateAndSave(context.Background(), GenerateInput{
		Category:       "paranormal-nonsense",
		Classification: "confidential",
	})
	require.NoError(t, err)
	require.Equal(t, theory.Confidential, got.Classification)
}

func TestGenerateAndSave_UnknownCategoryFallsBack(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Socks are a pyramid scheme.")

	got, err := svc.GenerateAndSave(context.Background(), GenerateInput{Category: "underwater-basketry"})
	require.NoError(t, err)
	require.Equal(t, theory.FallbackCategory, got.Category)
	require.Equal(t, gen.BuildPrompt(theory.FallbackCategory), got.PromptUsed)
}

func TestGenerateAndSave_UniqueIDs(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Same text every time.")
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		got, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "random"})
		require.NoError(t, err)
		require.False(t, seen[got.ID], "duplicate id %s", got.ID)
		seen[got.ID] = true
	}
}

func TestGenerateAndSave_GenerationFailure(t *testing.T) {
	tests := []struct {
		name  string
		model fakeModel
	}{
		{"model error", fakeModel{err: stderrors.New("quota exceeded")}},
		{"empty text", fakeModel{text: "   "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := openStore(t)
			sink := &recordingSink{}
			svc := New(store, gen.New(tt.model), sink, nil, config.DefaultConfig())
			ctx := context.Background()

			got, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "random"})
			require.Nil(t, got)
			require.True(t, errors.Is(err, errors.ErrGenerationFailed), "error = %v", err)

			recent, err := store.ListRecent(ctx, 10)
			require.NoError(t, err)
			require.Empty(t, recent)
			require.Empty(t, sink.events)
		})
	}
}

func TestGenerateAndSave_InvalidClassification(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "text")

	_, err := svc.GenerateAndSave(context.Background(), GenerateInput{Category: "random", Classification: "EYES ONLY"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestGenerateAndSave_PersistFailure(t *testing.T) {
	store := openStore(t)
	sink := &recordingSink{}
	svc := New(failingInsertStore{store}, gen.New(fakeModel{text: "Bees invented jazz."}), sink, nil, nil)

	got, err := svc.GenerateAndSave(context.Background(), GenerateInput{Category: "historical-lies"})
	require.Nil(t, got)
	require.True(t, errors.Is(err, errors.ErrInternal))
	require.Contains(t, err.Error(), "disk full")
	require.Empty(t, sink.events, "no generated event after a failed persist")
}

func TestGenerateAndSave_EventFailureStillReturnsTheory(t *testing.T) {
	store := openStore(t)
	svc := newService(t, failingEventStore{store}, "The Eiffel Tower is retractable.")

	got, err := svc.GenerateAndSave(context.Background(), GenerateInput{Category: "historical-lies"})
	require.NoError(t, err)
	require.NotNil(t, got)

	stored, err := store.GetTheory(context.Background(), got.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestGenerateBatch(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Cats run the postal service.")
	ctx := context.Background()

	got, err := svc.GenerateBatch(ctx, GenerateInput{Category: "celebrity-secrets"}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, th := range got {
		require.Equal(t, "celebrity-secrets", th.Category)
	}

	recent, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
}

func TestGenerateBatch_FailureWritesNothing(t *testing.T) {
	store := openStore(t)
	svc := New(store, gen.New(fakeModel{err: stderrors.New("down")}), nil, nil, nil)
	ctx := context.Background()

	got, err := svc.GenerateBatch(ctx, GenerateInput{Category: "random"}, 3)
	require.Nil(t, got)
	require.True(t, errors.Is(err, errors.ErrGenerationFailed))

	recent, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, recent)
}

func TestGenerateBatch_CountBounds(t *testing.T) {
	svc := newService(t, openStore(t), "x")
	ctx := context.Background()

	_, err := svc.GenerateBatch(ctx, GenerateInput{}, 0)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = svc.GenerateBatch(ctx, GenerateInput{}, svc.Config().MaxBatchSize+1)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestGetByID_LogsViewed(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Moon is a lamp.")
	ctx := context.Background()

	created, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "random"})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Len(t, eventsOfType(t, store, created.ID, theory.EventViewed), 1)
}

func TestGetByID_AbsentStillLogsViewed(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "x")
	ctx := context.Background()

	got, err := svc.GetByID(ctx, "theory_does_not_exist")
	require.NoError(t, err)
	require.Nil(t, got)
	require.Len(t, eventsOfType(t, store, "theory_does_not_exist", theory.EventViewed), 1)
}

func TestGetByID_AbsentWithFailingSink(t *testing.T) {
	store := openStore(t)
	svc := newService(t, failingEventStore{store}, "x")

	got, err := svc.GetByID(context.Background(), "theory_missing")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestGetByID_EmptyID(t *testing.T) {
	sink := &recordingSink{}
	svc := New(openStore(t), gen.New(fakeModel{text: "x"}), sink, nil, config.DefaultConfig())

	_, err := svc.GetByID(context.Background(), "  ")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
	require.Len(t, sink.events, 1)
	require.Equal(t, theory.EventViewed, sink.events[0].Type)
}

func TestLookup_RecordsNoView(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Geese are surveillance.")
	ctx := context.Background()

	created, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "random"})
	require.NoError(t, err)

	got, err := svc.Lookup(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	missing, err := svc.Lookup(ctx, "theory_absent")
	require.NoError(t, err)
	require.Nil(t, missing)

	_, err = svc.Lookup(ctx, "")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	require.Empty(t, eventsOfType(t, store, created.ID, theory.EventViewed))
	require.Empty(t, eventsOfType(t, store, "theory_absent", theory.EventViewed))
}

func TestToggleFavorite_Parity(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Clocks are lying.")
	ctx := context.Background()

	created, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "government-filth"})
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		v, err := svc.ToggleFavorite(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, i%2 == 1, v, "after %d toggles", i)

		stored, err := store.GetTheory(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, i%2 == 1, stored.IsFavorite)
	}

	saved := eventsOfType(t, store, created.ID, theory.EventSaved)
	require.Len(t, saved, 5)
	actions := map[string]int{}
	for _, e := range saved {
		actions[e.Metadata["action"].(string)]++
	}
	require.Equal(t, 3, actions["favorited"])
	require.Equal(t, 2, actions["unfavorited"])
}

func TestToggleFavorite_NotFound(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "x")

	_, err := svc.ToggleFavorite(context.Background(), "theory_nope")
	require.True(t, errors.Is(err, errors.ErrNotFound))
	require.Empty(t, eventsOfType(t, store, "theory_nope", theory.EventSaved))
}

func TestTrackShare_IncrementsAndLogs(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Mountains are hollow.")
	ctx := context.Background()

	created, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "random"})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.IncrementShareCount(ctx, created.ID))
	}

	svc.TrackShare(ctx, created.ID, "twitter")

	stored, err := store.GetTheory(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 4, stored.ShareCount)

	shared := eventsOfType(t, store, created.ID, theory.EventShared)
	require.Len(t, shared, 1)
	require.NotNil(t, shared[0].Platform)
	require.Equal(t, "twitter", *shared[0].Platform)
	require.Equal(t, "twitter", shared[0].Metadata["platform"])
	sharedAt, ok := shared[0].Metadata["shared_at"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, sharedAt)
	require.NoError(t, err)

	events, err := store.ListEvents(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 2, "generated plus shared, no view")
}

func TestTrackShare_Concurrent(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Rain is recycled.")
	ctx := context.Background()

	created, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "random"})
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.TrackShare(ctx, created.ID, "reddit")
		}()
	}
	wg.Wait()

	stored, err := store.GetTheory(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, n, stored.ShareCount)
}

func TestTrackShareAndCopy_NeverFail(t *testing.T) {
	store := openStore(t)
	svc := newService(t, failingEventStore{store}, "x")
	ctx := context.Background()

	// Absent ids and failing analytics must not panic or surface anything.
	svc.TrackShare(ctx, "theory_missing", "facebook")
	svc.TrackCopy(ctx, "theory_missing")
}

func TestTrackCopy_Logs(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "x")

	svc.TrackCopy(context.Background(), "theory_c")
	copied := eventsOfType(t, store, "theory_c", theory.EventCopied)
	require.Len(t, copied, 1)
	copiedAt, ok := copied[0].Metadata["copied_at"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, copiedAt)
	require.NoError(t, err)
}

func TestStoreSink_DropsUnknownKind(t *testing.T) {
	store := openStore(t)
	sink := NewStoreSink(store, nil)
	ctx := context.Background()

	sink.Record(ctx, theory.Event{TheoryID: "theory_x", Type: "liked"})

	events, err := store.ListEvents(ctx, "theory_x")
	require.NoError(t, err)
	require.Empty(t, events)
}

func TestListByCategory_Nonexistent(t *testing.T) {
	svc := newService(t, openStore(t), "x")

	got, err := svc.ListByCategory(context.Background(), "nonexistent-category", 10)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestListTrending_WindowLimitOrder(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Trend.")
	ctx := context.Background()
	now := time.Now()

	var ids []string
	for i := 0; i < 14; i++ {
		created, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "random"})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	// ids[0..1] fall outside the 7-day window with the highest share counts.
	_, err := store.DB().Exec(`UPDATE conspiracy_theories SET created_at = ?, share_count = 100 WHERE id IN (?, ?)`,
		now.Add(-8*24*time.Hour).UnixMilli(), ids[0], ids[1])
	require.NoError(t, err)
	for i := 2; i < len(ids); i++ {
		_, err := store.DB().Exec(`UPDATE conspiracy_theories SET created_at = ?, share_count = ? WHERE id = ?`,
			now.Add(-time.Duration(i)*time.Hour).UnixMilli(), i%4, ids[i])
		require.NoError(t, err)
	}

	got, err := svc.ListTrending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 10)

	cutoff := now.Add(-7 * 24 * time.Hour)
	for i, th := range got {
		require.True(t, th.CreatedAt.After(cutoff), "row %s older than window", th.ID)
		require.NotEqual(t, ids[0], th.ID)
		require.NotEqual(t, ids[1], th.ID)
		if i > 0 {
			prev := got[i-1]
			require.GreaterOrEqual(t, prev.ShareCount, th.ShareCount)
			if prev.ShareCount == th.ShareCount {
				require.False(t, prev.CreatedAt.Before(th.CreatedAt))
			}
		}
	}
}

func TestListLimits(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Limit.")
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "random"})
		require.NoError(t, err)
	}

	got, err := svc.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 10, "default limit")

	got, err = svc.ListPopular(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, got, 12, "max limit caps but does not pad")
}

func TestCategoryStats_ZeroFilled(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Stat.")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "absurd-science"})
		require.NoError(t, err)
	}

	stats, err := svc.CategoryStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, len(theory.Categories()))

	for i, c := range theory.Categories() {
		require.Equal(t, c.Slug, stats[i].Category)
		if c.Slug == "absurd-science" {
			require.Equal(t, 2, stats[i].Count)
			require.False(t, stats[i].Latest.IsZero())
		} else {
			require.Equal(t, 0, stats[i].Count)
		}
	}
}

func TestAnalyticsAndSitemap(t *testing.T) {
	store := openStore(t)
	svc := newService(t, store, "Map.")
	ctx := context.Background()

	created, err := svc.GenerateAndSave(ctx, GenerateInput{Category: "random"})
	require.NoError(t, err)
	svc.TrackCopy(ctx, created.ID)

	events := svc.Analytics(ctx, created.ID)
	require.Len(t, events, 2)

	entries, err := svc.Sitemap(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, created.ID, entries[0].ID)
}

func TestStatus(t *testing.T) {
	store := openStore(t)

	up := New(store, gen.New(fakeModel{text: "OK"}), nil, nil, nil).Status(context.Background())
	require.True(t, up.Generator)
	require.True(t, up.Database)

	down := New(store, gen.New(gen.Unavailable(gen.ErrNoAPIKey)), nil, nil, nil).Status(context.Background())
	require.False(t, down.Generator)
	require.True(t, down.Database)
}
