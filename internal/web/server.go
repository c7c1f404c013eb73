// Package web serves the dashboard over HTTP.
package web

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/askiada/procdash/internal/dashboard"
)

const defaultMaxUploadBytes = 32 << 20

// Server serves the dashboard of a dashboard.Service.
type Server struct {
	logger         *zap.Logger
	svc            *dashboard.Service
	maxUploadBytes int64
	pages          *template.Template
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes limits the size of uploaded files.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// NewServer creates the dashboard server.
func NewServer(logger *zap.Logger, svc *dashboard.Service, opts ...Option) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		logger:         logger,
		svc:            svc,
		maxUploadBytes: defaultMaxUploadBytes,
		pages:          pages,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Handler returns the routes of the dashboard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /datasets/{id}", s.handleDataset)
	mux.HandleFunc("POST /datasets/{id}/name", s.handleRename)
	mux.HandleFunc("POST /datasets/{id}/delete", s.handleDelete)
	mux.HandleFunc("GET /datasets/{id}/export.csv", s.handleExport)
	mux.HandleFunc("GET /datasets/{id}/charts/{file}", s.handleChart)
	mux.HandleFunc("GET /api/datasets/{id}", s.handleAPIDataset)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return logRequests(s.logger, mux)
}

// HTTPConfig holds the timeouts of the HTTP server.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ListenAndServe serves the dashboard until ctx is done, then waits for requests in flight.
func (s *Server) ListenAndServe(ctx context.Context, cfg HTTPConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", cfg.Addr))
		errC <- srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		return errors.Wrap(err, "unable to serve dashboard")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down dashboard")

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return errors.Wrap(err, "unable to shut down dashboard")
	}

	if err := <-errC; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "unable to serve dashboard")
	}

	return nil
}
