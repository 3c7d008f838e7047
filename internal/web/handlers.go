package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/rumors/internal/config"
	"github.com/hpungsan/rumors/internal/errors"
	"github.com/hpungsan/rumors/internal/ops"
	"github.com/hpungsan/rumors/internal/theory"
)

// maxBodyBytes bounds JSON and form bodies.
const maxBodyBytes = 64 << 10

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	svc      *ops.Service
	cfg      *config.Config
	renderer *Renderer
	log      *zap.SugaredLogger
}

// HandleHome handles GET /: category picker and the latest theories.
func (h *Handlers) HandleHome(w http.ResponseWriter, r *http.Request) {
	recent, err := h.svc.ListRecent(r.Context(), parseIntParam(r, "limit", 0))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "home", HomePageData{
		PageData:        h.renderer.page("Generate", "home"),
		Categories:      theory.Categories(),
		Classifications: theory.Classifications,
		Recent:          recent,
	})
}

// generateRequest is the body of POST /theories (JSON or form).
type generateRequest struct {
	Category       string `json:"category"`
	Classification string `json:"classification"`
	Count          int    `json:"count"`
}

// HandleGenerate handles POST /theories: generate and persist.
// JSON clients get 201 with the stored theory (or {"items": [...]} for count > 1);
// form posts are redirected to the new dossier.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeGenerateRequest(w, r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	input := ops.GenerateInput{Category: req.Category, Classification: req.Classification}

	if req.Count > 1 {
		items, err := h.svc.GenerateBatch(r.Context(), input, req.Count)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		if wantsJSON(r) {
			renderJSON(w, http.StatusCreated, map[string]any{"items": items})
			return
		}
		http.Redirect(w, r, "/category/"+items[0].Category, http.StatusSeeOther)
		return
	}

	t, err := h.svc.GenerateAndSave(r.Context(), input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusCreated, t)
		return
	}
	http.Redirect(w, r, "/theories/"+t.ID, http.StatusSeeOther)
}

func decodeGenerateRequest(w http.ResponseWriter, r *http.Request) (generateRequest, error) {
	var req generateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.NewInvalidRequest("invalid JSON body: " + err.Error())
		}
		return req, nil
	}

	if err := r.ParseForm(); err != nil {
		return req, errors.NewInvalidRequest("invalid form body: " + err.Error())
	}
	req.Category = r.PostFormValue("category")
	req.Classification = r.PostFormValue("classification")
	if c := r.PostFormValue("count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil {
			return req, errors.NewInvalidRequest("count must be an integer")
		}
		req.Count = n
	}
	return req, nil
}

// HandleTheory handles GET /theories/{id}: the dossier page. Logs a view.
func (h *Handlers) HandleTheory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	t, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if t == nil {
		h.renderer.renderError(w, r, errors.NewNotFound(id))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, t)
		return
	}

	pageURL := h.cfg.TheoryURL(t.ID)
	links := make([]ShareLink, 0, len(theory.Platforms))
	for _, p := range theory.Platforms {
		links = append(links, ShareLink{Platform: p, URL: theory.ShareURL(p, t.Content, pageURL)})
	}

	category, _ := theory.Lookup(t.Category)

	h.renderer.renderPage(w, r, "theory", TheoryPageData{
		PageData:     h.renderer.page(categoryTitle(t.Category)+" // "+string(t.Classification), ""),
		Theory:       t,
		Category:     category,
		RenderedHTML: renderMarkdown(t.Content),
		ShareLinks:   links,
		PageURL:      pageURL,
	})
}

// HandleFavorite handles POST /theories/{id}/favorite: toggle the flag.
func (h *Handlers) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	isFavorite, err := h.svc.ToggleFavorite(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"id": id, "is_favorite": isFavorite})
		return
	}
	http.Redirect(w, r, "/theories/"+id, http.StatusSeeOther)
}

// HandleShare handles POST /theories/{id}/share: count the share, then send
// the browser to the platform's share intent. Analytics failures never block it.
func (h *Handlers) HandleShare(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	platform, err := sharePlatform(w, r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	t, err := h.svc.Lookup(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if t == nil {
		h.renderer.renderError(w, r, errors.NewNotFound(id))
		return
	}

	h.svc.TrackShare(r.Context(), id, string(platform))

	pageURL := h.cfg.TheoryURL(id)
	shareURL := theory.ShareURL(platform, t.Content, pageURL)

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"id":         id,
			"platform":   platform,
			"share_url":  shareURL,
			"share_text": theory.ShareText(platform, t.Content),
		})
		return
	}
	http.Redirect(w, r, shareURL, http.StatusSeeOther)
}

func sharePlatform(w http.ResponseWriter, r *http.Request) (theory.Platform, error) {
	var raw string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Platform string `json:"platform"`
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", errors.NewInvalidRequest("invalid JSON body: " + err.Error())
		}
		raw = body.Platform
	} else {
		raw = r.FormValue("platform")
	}

	p := theory.Platform(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", errors.NewInvalidRequest("platform must be one of: facebook, twitter, reddit")
	}
	return p, nil
}

// HandleCopy handles POST /theories/{id}/copy: record a copy. Always 204.
func (h *Handlers) HandleCopy(w http.ResponseWriter, r *http.Request) {
	h.svc.TrackCopy(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// HandleAnalytics handles GET /theories/{id}/analytics: event history as JSON.
func (h *Handlers) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	renderJSON(w, http.StatusOK, map[string]any{
		"theory_id": id,
		"events":    h.svc.Analytics(r.Context(), id),
	})
}

// HandleCategory handles GET /category/{slug}: a category archive.
func (h *Handlers) HandleCategory(w http.ResponseWriter, r *http.Request) {
	slug := strings.ToLower(r.PathValue("slug"))
	category, ok := theory.Lookup(slug)
	if !ok {
		h.renderer.renderError(w, r, &errors.RumorError{
			Code:    errors.ErrNotFound,
			Status:  http.StatusNotFound,
			Message: "unknown category: " + slug,
		})
		return
	}

	items, err := h.svc.ListByCategory(r.Context(), category.Slug, parseIntParam(r, "limit", 0))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"category": category.Slug, "items": items})
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData:    h.renderer.page(category.Title, "categories"),
		Heading:     category.Title,
		Description: category.Description,
		Category:    category.Slug,
		Items:       items,
	})
}

// HandleCategories handles GET /categories: per-category counts.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.CategoryStats(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"categories": stats})
		return
	}

	rows := make([]CategoryRow, 0, len(stats))
	for _, st := range stats {
		c, ok := theory.Lookup(st.Category)
		if !ok {
			c = theory.Category{Slug: st.Category, Title: st.Category}
		}
		rows = append(rows, CategoryRow{Category: c, Count: st.Count, Latest: st.Latest})
	}

	h.renderer.renderPage(w, r, "categories", CategoriesPageData{
		PageData: h.renderer.page("Categories", "categories"),
		Rows:     rows,
	})
}

// HandlePopular handles GET /popular: most shared overall.
func (h *Handlers) HandlePopular(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListPopular(r.Context(), parseIntParam(r, "limit", 0))
	h.renderList(w, r, "popular", "Most Leaked", "The theories shared the most, ever.", items, err)
}

// HandleTrending handles GET /trending: most shared within the trending window.
func (h *Handlers) HandleTrending(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListTrending(r.Context(), parseIntParam(r, "limit", 0))
	desc := "The most shared theories of the last " + strconv.Itoa(h.cfg.TrendingWindowDays) + " days."
	h.renderList(w, r, "trending", "Trending Intel", desc, items, err)
}

func (h *Handlers) renderList(w http.ResponseWriter, r *http.Request, nav, heading, desc string, items []theory.Theory, err error) {
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"items": items})
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData:    h.renderer.page(heading, nav),
		Heading:     heading,
		Description: desc,
		Items:       items,
	})
}

// HandleStatus handles GET /api/status: generator and database connectivity.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Status(r.Context())
	renderJSON(w, http.StatusOK, map[string]any{
		"generator": st.Generator,
		"database":  st.Database,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// parseIntParam parses an integer query parameter, returning defaultVal if missing or invalid.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
