package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/viant/procsim"
	"github.com/viant/procsim/tracing"
	"go.uber.org/zap"
)

// DefaultDrainSteps bounds POST /drain when no max is given
const DefaultDrainSteps = 10000

// Server exposes a simulation runtime over HTTP
type Server struct {
	runtime    *procsim.Runtime
	logger     *zap.Logger
	drainSteps int
	router     chi.Router
	srv        *http.Server
}

// Option customises the Server
type Option func(s *Server)

// WithLogger sets the request logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDrainSteps sets the default step limit of POST /drain
func WithDrainSteps(steps int) Option {
	return func(s *Server) {
		if steps > 0 {
			s.drainSteps = steps
		}
	}
}

// New creates a server for runtime
func New(runtime *procsim.Runtime, options ...Option) *Server {
	ret := &Server{runtime: runtime, logger: zap.NewNop(), drainSteps: DefaultDrainSteps}
	for _, option := range options {
		option(ret)
	}
	ret.router = ret.routes()
	return ret
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.NoCache)
	router.Use(middleware.DefaultCompress)
	router.Use(s.logRequest)

	router.Get("/health", s.health)
	router.Get("/snapshot", s.snapshot)
	router.Get("/history", s.history)
	router.Get("/report", s.report)
	router.Route("/processes", func(r chi.Router) {
		r.Get("/", s.view)
		r.Post("/", s.submit)
		r.Post("/random", s.submitRandom)
		r.Get("/{id}/timeline", s.timeline)
		r.Delete("/{id}", s.cancel)
	})
	router.Post("/step", s.step)
	router.Post("/drain", s.drain)
	router.Post("/reset", s.reset)
	router.Post("/start", s.start)
	router.Post("/pause", s.pause)
	return router
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		ctx, span := tracing.StartSpan(r.Context(), "http "+r.Method, "SERVER")
		span.WithAttributes(map[string]string{"http.method": r.Method, "http.path": r.URL.Path})
		next.ServeHTTP(ww, r.WithContext(ctx))
		span.SetStatusFromHTTPCode(ww.Status())
		span.End()
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(started)),
			zap.String("requestId", middleware.GetReqID(r.Context())))
	})
}

// ListenAndServe serves on addr until Shutdown
func (s *Server) ListenAndServe(addr string) error {
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("listening", zap.String("addr", addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and pauses the interval driver
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.srv != nil {
		err = s.srv.Shutdown(ctx)
	}
	return errors.Join(err, s.runtime.Pause(ctx))
}
