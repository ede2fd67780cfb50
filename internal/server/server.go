// Package server exposes the diagram pipeline over HTTP.
//
// Routes:
//
//	POST   /v1/layout           records -> rectangles, crossings, warnings
//	POST   /v1/render           records -> draw.io document
//	POST   /v1/merge            two documents -> merged document
//	POST   /v1/reconstruct      document -> records (json, yaml, or toml)
//	POST   /v1/diagrams         render and store
//	GET    /v1/diagrams         list stored diagrams
//	GET    /v1/diagrams/{id}    fetch a stored document
//	DELETE /v1/diagrams/{id}    delete a stored diagram
//	GET    /healthz             liveness and version
//
// Errors are JSON objects {"error": message, "code": code} with the status
// mapped from the pkg/errors code.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/archdraw/pkg/pipeline"
	"github.com/matzehuels/archdraw/pkg/storage"
)

// Defaults for [Config].
const (
	DefaultAddr            = "127.0.0.1:8080"
	DefaultMaxBodyBytes    = 4 << 20
	DefaultShutdownTimeout = 10 * time.Second
)

// Config configures the HTTP server.
type Config struct {
	Addr            string
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}

// Server serves the HTTP API. Store may be nil, in which case the
// /v1/diagrams routes answer 503.
type Server struct {
	runner *pipeline.Runner
	store  storage.Store
	logger *log.Logger
	cfg    Config
	router chi.Router
}

// New creates a server. A nil logger discards output.
func New(runner *pipeline.Runner, store storage.Store, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{
		runner: runner,
		store:  store,
		logger: logger,
		cfg:    cfg.withDefaults(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.wrap(s.handleHealth))
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.wrap(s.handleLayout))
		r.Post("/render", s.wrap(s.handleRender))
		r.Post("/merge", s.wrap(s.handleMerge))
		r.Post("/reconstruct", s.wrap(s.handleReconstruct))

		r.Route("/diagrams", func(r chi.Router) {
			r.Post("/", s.wrap(s.handleSaveDiagram))
			r.Get("/", s.wrap(s.handleListDiagrams))
			r.Get("/{id}", s.wrap(s.handleGetDiagram))
			r.Delete("/{id}", s.wrap(s.handleDeleteDiagram))
		})
	})
	r.NotFound(s.wrap(func(w http.ResponseWriter, r *http.Request) error {
		return statusError(http.StatusNotFound, "no route for %s %s", r.Method, r.URL.Path)
	}))
	r.MethodNotAllowed(s.wrap(func(w http.ResponseWriter, r *http.Request) error {
		return statusError(http.StatusMethodNotAllowed, "method %s not allowed on %s", r.Method, r.URL.Path)
	}))
	return r
}

// Handler returns the root handler with the body size limit applied.
func (s *Server) Handler() http.Handler {
	return http.MaxBytesHandler(s.router, s.cfg.MaxBodyBytes)
}

func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		MaxHeaderBytes:    1 << 18,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       time.Hour,
		ErrorLog:          s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}
}

// Serve accepts connections on l until ctx is canceled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := s.httpServer()
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(l)
	}()

	s.logger.Info("serving", "addr", l.Addr().String())
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// ListenAndServe listens on the configured address and calls [Server.Serve].
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}
