package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"hubhook/internal/channel"
	"hubhook/internal/eventlog"
	"hubhook/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// HTTP server timeouts
	HTTPReadTimeout  = 10 * time.Second
	HTTPWriteTimeout = 10 * time.Second
	HTTPIdleTimeout  = 60 * time.Second

	// Request timeout for middleware
	RequestTimeout = 60 * time.Second

	// ShutdownTimeout bounds graceful shutdown once the context is cancelled
	ShutdownTimeout = 10 * time.Second
)

// Options configures a Server
type Options struct {
	VerifyToken      string
	AppSecret        string
	EnforceSignature bool

	// Metrics defaults to a fresh registry
	Metrics *metrics.Metrics

	// Now defaults to time.Now
	Now func() time.Time
}

// Server represents the webhook gateway
type Server struct {
	Registry         *channel.Registry
	Store            eventlog.Store
	Logger           *slog.Logger
	Metrics          *metrics.Metrics
	VerifyToken      string
	EnforceSignature bool
	Now              func() time.Time

	appSecret string
}

// NewServer creates a new server instance
func NewServer(registry *channel.Registry, store eventlog.Store, logger *slog.Logger, opts Options) *Server {
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Server{
		Registry:         registry,
		Store:            store,
		Logger:           logger,
		Metrics:          m,
		VerifyToken:      opts.VerifyToken,
		EnforceSignature: opts.EnforceSignature,
		Now:              now,
		appSecret:        opts.AppSecret,
	}
}

// Router creates and configures the HTTP router
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	// Global middleware. The logger sits outside Recoverer so recovered
	// panics are logged with their 500 status.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	r.NotFound(s.HandleNotFound)
	r.MethodNotAllowed(s.HandleNotFound)

	// Routes
	r.Get("/", s.HandleIndex)
	r.Get("/health", s.HandleHealth)
	r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())

	for _, c := range s.Registry.List() {
		r.Get(c.Path(), s.HandleVerify(c))
		r.Post(c.Path(), s.HandleEvent(c))
	}

	return r
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	s.Logger.Info("Starting server",
		"addr", addr,
		"channels", channel.Names(s.Registry.List()),
		"signature_enforced", s.EnforceSignature,
		"app_secret_set", s.appSecret != "")

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  HTTPReadTimeout,
		WriteTimeout: HTTPWriteTimeout,
		IdleTimeout:  HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
