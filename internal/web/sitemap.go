package web

import (
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/rumors/internal/theory"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// HandleTheorySitemap handles GET /theory-sitemap.xml: theory pages only.
func (h *Handlers) HandleTheorySitemap(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.Sitemap(r.Context())
	if err != nil {
		h.log.Errorw("sitemap read failed", "error", err)
		http.Error(w, "Error generating sitemap", http.StatusInternalServerError)
		return
	}
	h.writeSitemap(w, h.theoryURLs(entries))
}

// HandleSitemap handles GET /sitemap.xml: static, category and theory pages.
// A failed theory read still yields the static and category URLs.
func (h *Handlers) HandleSitemap(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339)
	base := strings.TrimRight(h.cfg.SiteURL, "/")

	urls := []sitemapURL{
		{Loc: base + "/", LastMod: now, ChangeFreq: "daily", Priority: "1.0"},
		{Loc: base + "/categories", LastMod: now, ChangeFreq: "weekly", Priority: "0.9"},
	}
	for _, c := range theory.Categories() {
		urls = append(urls, sitemapURL{
			Loc: base + "/category/" + c.Slug, LastMod: now, ChangeFreq: "weekly", Priority: "0.8",
		})
	}

	entries, err := h.svc.Sitemap(r.Context())
	if err != nil {
		h.log.Warnw("sitemap theory read failed", "error", err)
	}
	urls = append(urls, h.theoryURLs(entries)...)

	h.writeSitemap(w, urls)
}

func (h *Handlers) theoryURLs(entries []theory.SitemapEntry) []sitemapURL {
	urls := make([]sitemapURL, 0, len(entries))
	for _, e := range entries {
		mod := e.UpdatedAt
		if mod.IsZero() {
			mod = e.CreatedAt
		}
		urls = append(urls, sitemapURL{
			Loc:        h.cfg.TheoryURL(e.ID),
			LastMod:    mod.UTC().Format(time.RFC3339),
			ChangeFreq: "monthly",
			Priority:   "0.6",
		})
	}
	return urls
}

func (h *Handlers) writeSitemap(w http.ResponseWriter, urls []sitemapURL) {
	out, err := xml.MarshalIndent(urlSet{XMLNS: sitemapNS, URLs: urls}, "", "  ")
	if err != nil {
		h.log.Errorw("sitemap encode failed", "error", err)
		http.Error(w, "Error generating sitemap", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Cache-Control", "public, max-age=3600, s-maxage=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(out)
}
