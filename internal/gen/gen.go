// Package gen turns a category into a short humorous theory via a text model.
package gen

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hpungsan/rumors/internal/errors"
	"github.com/hpungsan/rumors/internal/theory"
)

// Model is the narrow text-generation surface the generator needs.
type Model interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Generated is one model result, not yet persisted.
type Generated struct {
	Content        string
	Category       string
	Classification theory.Classification
	PromptUsed     string
}

// pingPrompt is the fixed connectivity probe.
const pingPrompt = `Test connection. Reply with "OK".`

const requirements = `CRITICAL REQUIREMENTS:
- Generate ONLY the conspiracy theory sentence
- Maximum 50 words total
- Must be exactly one sentence
- Be humorous and clearly fictional
- Do not include any prefixes like "CLASSIFIED:" or document formatting
- Do not include explanations or additional text
- Just return the single conspiracy theory sentence

Generate the conspiracy theory now:`

// Generator wraps a Model with prompt assembly and result validation.
type Generator struct {
	model Model
}

// New creates a Generator over model.
func New(model Model) *Generator {
	return &Generator{model: model}
}

// BuildPrompt returns the exact prompt sent for category.
// Unknown categories use the random template.
func BuildPrompt(category string) string {
	return theory.PromptFor(category) + "\n\n" + requirements
}

// Generate performs one model call. There is no retry.
// The returned Category is the resolved catalog key.
func (g *Generator) Generate(ctx context.Context, category string, classification theory.Classification) (*Generated, error) {
	if classification == "" {
		classification = theory.DefaultClassification
	}
	if !classification.Valid() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unknown classification: %q", classification))
	}

	prompt := BuildPrompt(category)
	text, err := g.model.GenerateText(ctx, prompt)
	if err != nil {
		return nil, errors.NewGenerationFailed(err)
	}

	content := strings.TrimSpace(text)
	if content == "" {
		return nil, errors.NewGenerationFailed(nil)
	}

	return &Generated{
		Content:        content,
		Category:       theory.Resolve(category),
		Classification: classification,
		PromptUsed:     prompt,
	}, nil
}

// GenerateMany runs n independent generations concurrently.
// The first failure cancels the rest and fails the batch.
func (g *Generator) GenerateMany(ctx context.Context, category string, classification theory.Classification, n int) ([]*Generated, error) {
	if n < 1 {
		return nil, errors.NewInvalidRequest("count must be at least 1")
	}

	results := make([]*Generated, n)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			res, err := g.Generate(egCtx, category, classification)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Ping reports whether the model answers the connectivity probe.
func (g *Generator) Ping(ctx context.Context) bool {
	text, err := g.model.GenerateText(ctx, pingPrompt)
	if err != nil {
		return false
	}
	return strings.Contains(text, "OK")
}
