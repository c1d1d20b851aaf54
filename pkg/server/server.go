// Package server exposes configurator sessions over HTTP.
//
// A client creates a session for a print region, places an artwork, sends
// move/scale/rotate events and assists, and finally uploads the artwork
// image to receive the print file. Every mutating response carries the
// updated snapshot, including the out-of-bounds state.
//
//	POST   /api/sessions                      create
//	GET    /api/sessions/{id}                 snapshot
//	POST   /api/sessions/{id}/manipulate      move, scale or rotate
//	POST   /api/sessions/{id}/assist/{op}     reset, fit, center, smart-resize
//	POST   /api/sessions/{id}/export          multipart artwork -> print file
//	GET    /api/sessions/{id}/preview.png     canvas preview
//	DELETE /api/sessions/{id}                 end session
//	GET    /healthz
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/artfit/artfit/pkg/errors"
	"github.com/artfit/artfit/pkg/export"
	"github.com/artfit/artfit/pkg/integrations/podapi"
	"github.com/artfit/artfit/pkg/preview"
	"github.com/artfit/artfit/pkg/region"
	"github.com/artfit/artfit/pkg/session"
)

// DefaultMaxUpload bounds multipart artwork uploads.
const DefaultMaxUpload = 25 << 20

const requestTimeout = 2 * time.Minute

// Catalog looks up base products. *podapi.Client implements it.
type Catalog interface {
	GetProduct(ctx context.Context, id region.ID, refresh bool) (*podapi.Product, error)
}

// Options configures a Server.
type Options struct {
	Sessions *session.Manager
	// Catalog is optional; without it sessions must be created from a
	// raw region.
	Catalog   Catalog
	Export    export.Options
	Preview   preview.Options
	MaxUpload int64
	Logger    *log.Logger
}

// Server is the HTTP front end for session.Manager.
type Server struct {
	router    chi.Router
	sessions  *session.Manager
	catalog   Catalog
	export    export.Options
	preview   preview.Options
	maxUpload int64
	logger    *log.Logger
}

// New builds the router.
func New(opts Options) (*Server, error) {
	if opts.Sessions == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "server needs a session manager")
	}
	if err := opts.Export.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = DefaultMaxUpload
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		sessions:  opts.Sessions,
		catalog:   opts.Catalog,
		export:    opts.Export,
		preview:   opts.Preview,
		maxUpload: opts.MaxUpload,
		logger:    opts.Logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.loadSession)
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/manipulate", s.handleManipulate)
			r.Post("/assist/{op}", s.handleAssist)
			r.Post("/export", s.handleExport)
			r.Get("/preview.png", s.handlePreview)
		})
	})
	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}
