// Package server exposes the render pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                      liveness and build info
//	GET  /v1/blocks?context=email      block types offered in a context
//	POST /v1/blocks/{type}/instances   new block instance with defaults
//	POST /v1/render/{context}          render a document
//	POST /v1/finalize                  run the trusted pass over a page fragment
//	POST /v1/outline                   document structure as DOT or SVG
//	GET  /metrics                      Prometheus metrics, when enabled
//
// JSON responses use the envelope {"success": bool, "data": ..., "error": "..."}.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/blockpress/pkg/buildinfo"
	"github.com/matzehuels/blockpress/pkg/errors"
	"github.com/matzehuels/blockpress/pkg/observability"
	"github.com/matzehuels/blockpress/pkg/pipeline"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	Addr string
	// Metrics enables /metrics for the given registry.
	Metrics *prom.Registry
	// Timeout bounds each request. Zero means 30s.
	Timeout time.Duration
	Logger  *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	Addr   string
	runner *pipeline.Runner
	router *chi.Mux
	server *http.Server
	logger *log.Logger
}

// New creates a server backed by runner.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = runner.Logger
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	s := &Server{
		Addr:   opts.Addr,
		runner: runner,
		router: chi.NewRouter(),
		logger: opts.Logger,
	}
	s.routes(opts)
	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: opts.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(opts.Timeout))
	s.router.Use(middleware.SetHeader("Server", buildinfo.ServerHeader()))

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/blocks", s.handleListBlocks)
		r.Post("/blocks/{type}/instances", s.handleCreateInstance)
		r.Post("/render/{context}", s.handleRender)
		r.Post("/finalize", s.handleFinalize)
		r.Post("/outline", s.handleOutline)
	})

	if opts.Metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", observability.Handler(opts.Metrics))
	}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.Addr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// logRequests logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, ww.Status(), d)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", d,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// Response is the JSON envelope.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func (s *Server) success(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Response{Success: true, Data: data})
}

// fail writes err with the status its code maps to. Internal errors are
// logged and reported without detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	msg := errors.UserMessage(err)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err, "request_id", middleware.GetReqID(r.Context()))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, Response{Error: msg, Code: string(errors.GetCode(err))})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// decode reads a JSON body into v. An empty body leaves v unchanged.
func decode(r *http.Request, w http.ResponseWriter, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", MaxBodyBytes)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}
