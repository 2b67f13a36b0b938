package relay

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/harun/literelay/internal/observability"
	"github.com/harun/literelay/internal/tracing"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// ServerOptions configures the relay HTTP server
type ServerOptions struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// Server is the relay HTTP server
type Server struct {
	options   ServerOptions
	service   *Service
	server    *http.Server
	logger    zerolog.Logger
	startTime time.Time
}

// NewServer creates a new relay server
func NewServer(options ServerOptions, service *Service, logger zerolog.Logger) (*Server, error) {
	// Set defaults
	if options.Port == 0 {
		options.Port = 8080
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if options.ShutdownTimeout == 0 {
		options.ShutdownTimeout = 15 * time.Second
	}

	if service == nil {
		return nil, fmt.Errorf("relay service is required")
	}

	return &Server{
		options:   options,
		service:   service,
		logger:    logger,
		startTime: time.Now(),
	}, nil
}

// Routes builds the HTTP routing tree
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestContext)

	r.Post("/chat", s.handleChat)
	r.Post("/reset", s.handleReset)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", observability.MetricsHandler())

	return r
}

// Start starts the relay server and blocks until it is shut down
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", s.options.Host, s.options.Port),
		Handler:     s.Routes(),
		ReadTimeout: 30 * time.Second,
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting relay server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start relay server: %w", err)
	}

	return nil
}

// Stop gracefully stops the relay server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Shutting down relay server")

	ctx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown relay server: %w", err)
	}

	s.logger.Info().Msg("Relay server stopped")
	return nil
}

// requestContext seeds every request with a trace ID and a request ID,
// then logs the request on completion
func (s *Server) requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID, _ := gonanoid.New()
		ctx := tracing.NewRequestContext(r.Context())
		ctx = tracing.WithRequestID(ctx, requestID)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		logger := tracing.LoggerFromContext(ctx, s.logger)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int64("duration", time.Since(start).Milliseconds()).
			Msg("Request completed")
	})
}
