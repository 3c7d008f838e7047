package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hpungsan/rumors/internal/ops"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewHandler builds the routed, middleware-wrapped handler for the web UI and JSON API.
func NewHandler(svc *ops.Service, logger *zap.SugaredLogger, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		logger.Fatalw("failed to create template sub-FS", "error", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		logger.Fatalw("failed to create static sub-FS", "error", err)
	}

	h := &Handlers{
		svc:      svc,
		cfg:      svc.Config(),
		renderer: NewRenderer(templateSub, version, logger),
		log:      logger,
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", h.HandleHome)
	mux.HandleFunc("POST /theories", h.HandleGenerate)
	mux.HandleFunc("GET /theories/{id}", h.HandleTheory)
	mux.HandleFunc("POST /theories/{id}/favorite", h.HandleFavorite)
	mux.HandleFunc("POST /theories/{id}/share", h.HandleShare)
	mux.HandleFunc("POST /theories/{id}/copy", h.HandleCopy)
	mux.HandleFunc("GET /theories/{id}/analytics", h.HandleAnalytics)
	mux.HandleFunc("GET /category/{slug}", h.HandleCategory)
	mux.HandleFunc("GET /categories", h.HandleCategories)
	mux.HandleFunc("GET /popular", h.HandlePopular)
	mux.HandleFunc("GET /trending", h.HandleTrending)

	mux.HandleFunc("GET /api/status", h.HandleStatus)
	mux.HandleFunc("POST /api/analytics", h.HandleBeacon)
	mux.HandleFunc("GET /api/analytics", h.HandleBeaconInfo)
	mux.HandleFunc("OPTIONS /api/analytics", h.HandleBeaconOptions)

	mux.HandleFunc("GET /theory-sitemap.xml", h.HandleTheorySitemap)
	mux.HandleFunc("GET /sitemap.xml", h.HandleSitemap)

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	// Wrap with security headers
	return securityHeaders(mux)
}

// NewServer creates the HTTP server for the Ridiculous Rumors web UI.
func NewServer(svc *ops.Service, logger *zap.SugaredLogger, version string) *http.Server {
	cfg := svc.Config()
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
		Handler:      NewHandler(svc, logger, version),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, logger *zap.SugaredLogger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Infow("Ridiculous Rumors running", "url", "http://"+srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
