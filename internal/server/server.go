// Package server exposes the drawkit pipeline over HTTP.
//
// Every endpoint takes the raw drawio document as the request body:
//
//	POST /v1/inspect              graph summary JSON
//	POST /v1/validate             validation report JSON
//	POST /v1/convert?compress=    drawio XML
//	POST /v1/dot?page=&format=    node-link preview (dot, svg or json)
//	GET  /healthz                 liveness
//
// Failures are reported as JSON {"code", "message", "cell_id"} with a status
// derived from the error category.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/drawkit/pkg/compress"
	"github.com/matzehuels/drawkit/pkg/pipeline"
)

// DefaultMaxBodySize bounds request bodies (16 MiB). Compressed pages can
// still expand up to the pipeline's decompression limit.
const DefaultMaxBodySize int64 = 16 << 20

// Server serves the HTTP API on top of a pipeline runner.
type Server struct {
	Runner *pipeline.Runner
	Logger *log.Logger

	// Defaults seeds the options of every request; query parameters
	// override page, engine and compression.
	Defaults pipeline.Options

	// MaxBodySize bounds request bodies. Zero means DefaultMaxBodySize.
	MaxBodySize int64
}

// New creates a server. A nil runner gets a runner without cache.
func New(runner *pipeline.Runner, logger *log.Logger, defaults pipeline.Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	return &Server{Runner: runner, Logger: logger, Defaults: defaults}
}

// Handler returns the chi router with all routes and middleware mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/inspect", s.handleInspect)
		r.Post("/validate", s.handleValidate)
		r.Post("/convert", s.handleConvert)
		r.Post("/dot", s.handleDot)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) maxBodySize() int64 {
	if s.MaxBodySize > 0 {
		return s.MaxBodySize
	}
	return DefaultMaxBodySize
}

func (s *Server) options(r *http.Request) pipeline.Options {
	opts := s.Defaults
	opts.Logger = s.Logger
	if opts.MaxDecompressedSize == 0 {
		opts.MaxDecompressedSize = compress.DefaultMaxDecompressedSize
	}
	opts.Source = r.URL.Path
	if id := middleware.GetReqID(r.Context()); id != "" {
		opts.Source = id
	}
	return opts
}
