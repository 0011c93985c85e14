// Package server exposes an editor session over a JSON HTTP API for a
// browser view layer.
//
// Every mutating route answers 200 with "changed" telling whether the edit
// took effect; rejected input is a silent no-op, as it is for the editor
// itself. Unknown characters, nodes and connections answer 404 and
// malformed requests 400, both with a structured error body:
//
//	{"error": {"code": "NODE_NOT_FOUND", "message": "no node \"node_…\""}}
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matzehuels/dialogtree/internal/metrics"
	"github.com/matzehuels/dialogtree/pkg/editor"
	"github.com/matzehuels/dialogtree/pkg/observability"
)

const (
	maxBodyBytes    = 4 << 20
	shutdownTimeout = 5 * time.Second
)

// Options configures the API server.
type Options struct {
	Logger *log.Logger

	// CORSOrigins lists origins allowed to call the API from a browser.
	// Empty allows localhost on any port.
	CORSOrigins []string
}

// Server routes API requests to one editor.
type Server struct {
	ed     *editor.Editor
	logger *log.Logger
	router chi.Router
}

// New builds the router for ed.
func New(ed *editor.Editor, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	s := &Server{ed: ed, logger: logger}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(s.observe)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.health)
	router.Handle("/metrics", metrics.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.getState)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.getHistory)
			r.Post("/undo", s.undo)
			r.Post("/redo", s.redo)
		})

		r.Route("/characters", func(r chi.Router) {
			r.Post("/", s.createCharacter)
			r.Delete("/", s.deleteCharacters)
			r.Post("/color", s.recolorCharacters)

			r.Route("/{charID}", func(r chi.Router) {
				r.Get("/", s.getCharacter)
				r.Patch("/", s.editCharacter)
				r.Put("/position", s.moveCharacter)
				r.Get("/path/{nodeID}", s.getPath)
				r.Get("/dot", s.getDOT)
				r.Get("/svg", s.getSVG)

				r.Route("/nodes", func(r chi.Router) {
					r.Post("/", s.createNode)
					r.Delete("/", s.deleteNodes)
					r.Post("/color", s.recolorNodes)
					r.Patch("/{nodeID}", s.editNode)
					r.Put("/{nodeID}/position", s.moveNode)
				})

				r.Route("/connections", func(r chi.Router) {
					r.Post("/", s.connect)
					r.Patch("/{index}", s.editLabel)
					r.Post("/{index}/branch", s.branch)
					r.Post("/{index}/interrupt", s.interrupt)
				})
			})
		})
	})

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// observe logs each request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status, "took", elapsed,
			"id", chimiddleware.GetReqID(r.Context()))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"degraded": s.ed.Degraded(),
	})
}
