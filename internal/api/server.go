package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/schooldash/internal/dashboard"
	"github.com/dmitrymomot/schooldash/pkg/health"
)

const (
	defaultRequestTimeout    = 30 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultIdleTimeout       = 2 * time.Minute
	maxBodyBytes             = 1 << 20
)

// Server exposes the dashboard service over HTTP.
type Server struct {
	svc            *dashboard.Service
	logger         *slog.Logger
	checks         health.Checks
	requestTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for requests and server errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChecks sets the readiness checks served at /health/ready.
func WithChecks(checks health.Checks) Option {
	return func(s *Server) {
		s.checks = checks
	}
}

// WithRequestTimeout bounds the handling time of every API request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// NewServer creates a Server for svc.
func NewServer(svc *dashboard.Service, opts ...Option) *Server {
	s := &Server{
		svc:            svc,
		logger:         slog.New(slog.DiscardHandler),
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(s.checks,
		health.WithLogger(s.logger),
		health.WithInfo("cache", func() any { return s.svc.Cache().Stats() }),
	))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(s.requestTimeout))
		r.Use(middleware.AllowContentType("application/json"))

		r.Get("/dashboard/stats", s.wrap(s.dashboardStats))

		r.Route("/cache", func(r chi.Router) {
			r.Get("/", s.wrap(s.cacheStats))
			r.Delete("/", s.wrap(s.cacheClear))
			r.Post("/reset-stats", s.wrap(s.cacheResetStats))
		})

		r.Route("/{resource}", func(r chi.Router) {
			r.Get("/", s.wrap(s.list))
			r.Post("/", s.wrap(s.create))
			r.Get("/{id}", s.wrap(s.get))
			r.Put("/{id}", s.wrap(s.update))
			r.Delete("/{id}", s.wrap(s.delete))
		})
	})

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// hooks run in order once the server has stopped, including when it failed
// to start or stopped with an error.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration, hooks ...func(context.Context) error) (err error) {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	defer func() {
		hookCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		errs := []error{err}
		for _, hook := range hooks {
			if hookErr := hook(hookCtx); hookErr != nil {
				s.logger.Error("shutdown hook failed", slog.String("error", hookErr.Error()))
				errs = append(errs, hookErr)
			}
		}
		err = errors.Join(errs...)
		if err == nil {
			s.logger.Info("shutdown completed")
		}
	}()

	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

// logRequests logs one line per request with status and latency.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.InfoContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Int("bytes", ww.BytesWritten()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
