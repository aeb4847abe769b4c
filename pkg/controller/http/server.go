package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/incidex/frontend"
	"github.com/secmon-lab/incidex/pkg/domain/interfaces"
	"github.com/secmon-lab/incidex/pkg/domain/model"
	"github.com/secmon-lab/incidex/pkg/usecase"
)

// Server represents the dashboard HTTP server
type Server struct {
	*http.Server
	router chi.Router
}

// serverConfig collects the optional settings of NewServer
type serverConfig struct {
	display *model.DisplayConfig
}

// ServerOption configures NewServer
type ServerOption func(*serverConfig)

// WithDisplay sets the badge configuration used by the pages
func WithDisplay(d *model.DisplayConfig) ServerOption {
	return func(c *serverConfig) {
		c.display = d
	}
}

// NewServer creates the dashboard server. store serves every page; api is
// used directly only for the backend health proxy.
func NewServer(ctx context.Context, addr string, store *usecase.Store, api interfaces.IncidentAPI, opts ...ServerOption) (*Server, error) {
	cfg := &serverConfig{display: model.DefaultDisplayConfig()}
	for _, opt := range opts {
		opt(cfg)
	}

	templates, err := frontend.Templates()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load embedded templates")
	}
	v, err := newViews(templates, cfg.display)
	if err != nil {
		return nil, err
	}

	h := &handler{store: store, api: api, views: v}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)
	router.Get("/api/backend/health", h.backendHealth)

	router.Get("/", h.dashboard)
	router.Post("/refresh", h.refresh)

	router.Route("/incidents", func(r chi.Router) {
		r.Get("/new", h.newIncident)
		r.Post("/", h.createIncident)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.showIncident)
			r.Post("/reload", h.reloadIncident)
			r.Get("/edit", h.editIncident)
			r.Post("/edit", h.updateIncident)
			r.Post("/delete", h.deleteIncident)
		})
	})

	if static, err := frontend.GetHTTPFS(); err != nil {
		ctxlog.From(ctx).Warn("Static assets not available", "error", err)
	} else {
		router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static)))
	}

	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: router,
	}, nil
}

// handleHealth reports that the dashboard itself is up
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "incidex",
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode JSON response", "error", err)
	}
}

// writeError writes a JSON error body. The message is the display text of err.
func writeError(w http.ResponseWriter, r *http.Request, err error, status int) {
	logger := ctxlog.From(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "status", status)
	} else {
		logger.Debug("request rejected", "error", err, "status", status)
	}

	message := err.Error()
	if goErr := goerr.Unwrap(err); goErr != nil {
		message = goErr.Error()
	}
	writeJSON(w, r, status, map[string]string{"error": message})
}
