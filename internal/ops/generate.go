package ops

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/rumors/internal/errors"
	"github.com/hpungsan/rumors/internal/gen"
	"github.com/hpungsan/rumors/internal/theory"
)

// GenerateInput contains parameters for the generate operations.
type GenerateInput struct {
	Category       string // unknown keys fall back to "random"
	Classification string // default: config default_classification
}

// GenerateAndSave generates one theory, persists it and records a
// "generated" event. Generation and persistence failures are returned and
// nothing is retried or cached; the event is best-effort.
func (s *Service) GenerateAndSave(ctx context.Context, input GenerateInput) (*theory.Theory, error) {
	classification := s.classification(input.Classification)

	generated, err := s.gen.Generate(ctx, input.Category, classification)
	if err != nil {
		s.log.Warnw("generation failed", "category", input.Category, "error", err)
		return nil, err
	}

	return s.persist(ctx, generated)
}

// GenerateBatch runs n generations concurrently and persists them only when
// every generation succeeded.
func (s *Service) GenerateBatch(ctx context.Context, input GenerateInput, n int) ([]theory.Theory, error) {
	if n < 1 || n > s.cfg.MaxBatchSize {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("count must be between 1 and %d", s.cfg.MaxBatchSize))
	}
	classification := s.classification(input.Classification)

	batch, err := s.gen.GenerateMany(ctx, input.Category, classification, n)
	if err != nil {
		s.log.Warnw("batch generation failed", "category", input.Category, "count", n, "error", err)
		return nil, err
	}

	stored := make([]theory.Theory, 0, len(batch))
	for _, generated := range batch {
		t, err := s.persist(ctx, generated)
		if err != nil {
			return nil, err
		}
		stored = append(stored, *t)
	}
	return stored, nil
}

// persist assigns an id, inserts the row and records the generated event.
func (s *Service) persist(ctx context.Context, generated *gen.Generated) (*theory.Theory, error) {
	id, err := theory.NewID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	stored, err := s.store.InsertTheory(ctx, &theory.Theory{
		ID:             id,
		Content:        generated.Content,
		Category:       generated.Category,
		Classification: generated.Classification,
		PromptUsed:     generated.PromptUsed,
	})
	if err != nil {
		s.log.Errorw("persist theory failed", "id", id, "category", generated.Category, "error", err)
		return nil, err
	}

	s.sink.Record(ctx, theory.Event{
		TheoryID: stored.ID,
		Type:     theory.EventGenerated,
		Metadata: map[string]any{
			"category":       stored.Category,
			"classification": string(stored.Classification),
			"generated_at":   s.now().UTC().Format(time.RFC3339),
		},
	})

	return stored, nil
}

// classification applies the configured default to an omitted marking.
// Unknown values pass through so the generator rejects them.
func (s *Service) classification(raw string) theory.Classification {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return theory.Classification(s.cfg.DefaultClassification)
	}
	return theory.Classification(raw)
}
