package gen

import (
	"context"
	stderrors "errors"
	"fmt"

	"google.golang.org/genai"
)

// ErrNoAPIKey is returned when no Gemini API key is configured.
var ErrNoAPIKey = stderrors.New("GEMINI_API_KEY is required")

// GeminiModel is the production Model backed by the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a Gemini client for the named model.
func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiModel{client: client, model: model}, nil
}

// GenerateText sends prompt as a single user turn and returns the response text.
func (m *GeminiModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	result, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", nil
	}
	return result.Text(), nil
}

// unavailable is a Model that always fails; used when no client could be built
// so read paths keep working while generation reports the cause.
type unavailable struct {
	err error
}

// Unavailable returns a Model whose every call fails with err.
func Unavailable(err error) Model {
	return unavailable{err: err}
}

func (u unavailable) GenerateText(context.Context, string) (string, error) {
	return "", u.err
}
