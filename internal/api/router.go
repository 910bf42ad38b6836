package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nerrad567/bookshelf/internal/views"
)

// defaultHandlerTimeout applies when no handler timeout is configured.
const defaultHandlerTimeout = 10 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	if s.cfg.AccessLog {
		r.Use(s.accessLogMiddleware)
	}
	r.Use(s.recoveryMiddleware)
	r.Use(s.securityHeadersMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w, "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	// Long-lived WebSocket connections sit outside the handler timeout.
	r.Get("/api/ws", s.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.handlerTimeout()))

		r.Handle("/static/*", http.StripPrefix("/static", views.Assets(s.cfg.StaticDir)))

		// Server-rendered pages
		r.Group(func(r chi.Router) {
			r.Use(s.gateMiddleware)
			r.Get("/", s.handlePage(indexPage))
			r.Get("/contact", s.handlePage(contactPage))
			r.Get("/shorts", s.handlePage(shortsPage))
		})

		r.Route("/api", func(r chi.Router) {
			r.Get("/health", s.handleHealth)
			r.Get("/metrics", s.handleMetrics)

			if s.secCfg.LoginEnabled() {
				r.Post("/auth/login", s.handleLogin)
			}

			r.Route("/books", func(r chi.Router) {
				r.Get("/", s.handleListBooks)
				r.Get("/sort", s.handleFindBookByName)
				r.Post("/add", s.handleCreateBook)
				r.Put("/update/{id}", s.handleUpdateBook)
				r.Delete("/delete/{id}", s.handleDeleteBook)
				r.Get("/{id}/{polka}", s.handleGetBook)
			})
		})
	})

	return r
}

// handlerTimeout returns the per-request deadline.
func (s *Server) handlerTimeout() time.Duration {
	if d := s.cfg.GetHandlerTimeout(); d > 0 {
		return d
	}
	return defaultHandlerTimeout
}

// healthResponse is the body of GET /api/health.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Books   int    `json:"books"`
	MQTT    string `json:"mqtt,omitempty"`
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.registry.Count(r.Context())
	if err != nil {
		s.logger.Warn("health check could not count books", "error", err)
		writeError(w, http.StatusServiceUnavailable, ErrCodeInternal, "book storage unavailable")
		return
	}

	resp := healthResponse{Status: "ok", Version: s.version, Books: n}
	if s.mqtt != nil {
		resp.MQTT = "disconnected"
		if s.mqtt.IsConnected() {
			resp.MQTT = "connected"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
