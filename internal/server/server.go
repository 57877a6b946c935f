// Package server exposes a dashboard session over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
	"github.com/KaramelBytes/datadash-cli/internal/dashboard"
	"github.com/KaramelBytes/datadash-cli/internal/health"
)

// Server routes dashboard operations.
type Server struct {
	router    *chi.Mux
	session   *dashboard.Session
	monitor   *health.Monitor
	logger    *slog.Logger
	maxUpload int64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxUploadBytes bounds the accepted file size; larger files are rejected
// by the session with an input error.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// New returns a server for session. monitor provides the connectivity status.
func New(session *dashboard.Session, monitor *health.Monitor, opts ...Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		session:   session,
		monitor:   monitor,
		logger:    slog.Default(),
		maxUpload: dashboard.DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/status/probe", s.handleProbe)

		r.Get("/analysis", s.handleAnalysis)
		r.Get("/table", s.handleTable)
		r.Get("/axes", s.handleAxes)
		r.Post("/charts", s.handleChart)
		r.Post("/upload", s.handleUpload)

		r.Get("/download/csv", s.handleDownloadCSV)
		r.Get("/download/xlsx", s.handleDownloadXLSX)
		r.Get("/download/summary/{category}", s.handleDownloadSummary)

		r.Get("/notices", s.handleNotices)
		r.Delete("/notices/{id}", s.handleDismiss)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps session errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		ie *dashboard.InputError
		ce *dashboard.ConnectivityError
		se *analysis.SchemaError
		xe *dashboard.SerializationError
	)
	switch {
	case errors.As(err, &ie):
		return http.StatusBadRequest
	case errors.As(err, &ce), errors.As(err, &se):
		return http.StatusBadGateway
	case errors.As(err, &xe):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeDownload(w http.ResponseWriter, dl *dashboard.Download) {
	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Body)
}

// readUpload returns the "file" form field, reading at most limit+1 bytes so an
// oversized file is still detected.
func readUpload(r *http.Request, limit int64) (string, []byte, error) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, nil
		}
		return "", nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", nil, err
	}
	return hdr.Filename, data, nil
}
