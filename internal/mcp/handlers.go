package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/rumors/internal/config"
	"github.com/hpungsan/rumors/internal/errors"
	"github.com/hpungsan/rumors/internal/ops"
	"github.com/hpungsan/rumors/internal/theory"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	svc *ops.Service
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *ops.Service) *Handlers {
	return &Handlers{svc: svc, cfg: svc.Config()}
}

// Request types for each tool

// GenerateRequest represents the arguments for theory_generate.
type GenerateRequest struct {
	Category       string `json:"category,omitempty"`
	Classification string `json:"classification,omitempty"`
	Count          int    `json:"count,omitempty"`
}

// IDRequest is the argument shape shared by the single-theory tools.
type IDRequest struct {
	ID string `json:"id"`
}

// ListRequest represents the arguments for theory_list.
type ListRequest struct {
	Category string `json:"category,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// ShareRequest represents the arguments for theory_share.
type ShareRequest struct {
	ID       string `json:"id"`
	Platform string `json:"platform"`
}

// Handler implementations

// HandleGenerate handles the theory_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	gi := ops.GenerateInput{Category: input.Category, Classification: input.Classification}

	if input.Count > 1 {
		items, err := h.svc.GenerateBatch(ctx, gi, input.Count)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(map[string]any{"items": items, "count": len(items)})
	}

	t, err := h.svc.GenerateAndSave(ctx, gi)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(t)
}

// HandleFetch handles the theory_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	t, err := h.fetch(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(t)
}

// fetch reads a theory as a view, turning the service's (nil, nil) absence
// into NOT_FOUND.
func (h *Handlers) fetch(ctx context.Context, id string) (*theory.Theory, error) {
	t, err := h.svc.GetByID(ctx, id)
	return requireFound(t, err, id)
}

// lookup is fetch without the "viewed" event.
func (h *Handlers) lookup(ctx context.Context, id string) (*theory.Theory, error) {
	t, err := h.svc.Lookup(ctx, id)
	return requireFound(t, err, id)
}

func requireFound(t *theory.Theory, err error, id string) (*theory.Theory, error) {
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.NewNotFound(id)
	}
	return t, nil
}

// HandleList handles the theory_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var items []theory.Theory
	switch sort := strings.ToLower(strings.TrimSpace(input.Sort)); {
	case input.Category != "":
		items, err = h.svc.ListByCategory(ctx, input.Category, input.Limit)
	case sort == "" || sort == "recent":
		items, err = h.svc.ListRecent(ctx, input.Limit)
	case sort == "popular":
		items, err = h.svc.ListPopular(ctx, input.Limit)
	case sort == "trending":
		items, err = h.svc.ListTrending(ctx, input.Limit)
	default:
		err = errors.NewInvalidRequest("sort must be one of: recent, popular, trending")
	}
	if err != nil {
		return errorResult(err), nil
	}

	if items == nil {
		items = []theory.Theory{}
	}
	return successResult(map[string]any{"items": items, "count": len(items)})
}

// HandleFavorite handles the theory_favorite tool call.
func (h *Handlers) HandleFavorite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	isFavorite, err := h.svc.ToggleFavorite(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"id": input.ID, "is_favorite": isFavorite})
}

// HandleShare handles the theory_share tool call.
func (h *Handlers) HandleShare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ShareRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	platform := theory.Platform(strings.ToLower(strings.TrimSpace(input.Platform)))
	if !platform.Valid() {
		return errorResult(errors.NewInvalidRequest("platform must be one of: facebook, twitter, reddit")), nil
	}

	t, err := h.lookup(ctx, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	h.svc.TrackShare(ctx, t.ID, string(platform))

	return successResult(map[string]any{
		"id":         t.ID,
		"platform":   platform,
		"share_url":  theory.ShareURL(platform, t.Content, h.cfg.TheoryURL(t.ID)),
		"share_text": theory.ShareText(platform, t.Content),
	})
}

// HandleCopy handles the theory_copy tool call.
func (h *Handlers) HandleCopy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.ID) == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	h.svc.TrackCopy(ctx, input.ID)
	return successResult(map[string]any{"id": input.ID, "recorded": true})
}

// HandleStats handles the theory_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.svc.CategoryStats(ctx)
	if err != nil {
		return errorResult(err), nil
	}

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	return successResult(map[string]any{"categories": stats, "total": total})
}

// HandleAnalytics handles the theory_analytics tool call.
func (h *Handlers) HandleAnalytics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.ID) == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	return successResult(map[string]any{
		"theory_id": input.ID,
		"events":    h.svc.Analytics(ctx, input.ID),
	})
}

// HandleStatus handles the theory_status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := h.svc.Status(ctx)
	return successResult(map[string]any{"generator": st.Generator, "database": st.Database})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// INTERNAL errors never carry details; non-rumor errors get a generic message.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var rErr *errors.RumorError
	if stderrors.As(err, &rErr) {
		errorObj := map[string]any{
			"code":    rErr.Code,
			"message": rErr.Message,
			"status":  rErr.Status,
		}
		if rErr.Code != errors.ErrInternal && rErr.Details != nil {
			errorObj["details"] = rErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
