// Package dashboard holds the state of one analysis session: the effective view
// model, notices, uploads and exports.
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/datadash-cli/internal/analysis"
	"github.com/KaramelBytes/datadash-cli/internal/health"
	"github.com/KaramelBytes/datadash-cli/internal/profile"
)

// DefaultMaxUploadBytes matches the 10MB limit of the upload form.
const DefaultMaxUploadBytes = 10 << 20

// Analyzer submits a CSV file for analysis.
type Analyzer interface {
	Analyze(ctx context.Context, filename string, data io.Reader) (*analysis.Result, error)
}

// Gate reports backend connectivity before an upload.
type Gate interface {
	Ensure(ctx context.Context) health.State
}

// Session is the in-memory dashboard state. It starts on the sample dataset and
// is updated once per completed upload attempt.
type Session struct {
	id       string
	analyzer Analyzer
	gate     Gate
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time

	uploadMu sync.Mutex

	mu          sync.RWMutex
	view        *analysis.Result
	usingSample bool
	filename    string
	notices     []Notice
}

// Option configures a Session.
type Option func(*Session)

// WithMaxUploadBytes overrides DefaultMaxUploadBytes.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for notices and export dates.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession returns a session showing the sample dataset.
func NewSession(analyzer Analyzer, gate Gate, opts ...Option) *Session {
	s := &Session{
		id:          uuid.NewString(),
		analyzer:    analyzer,
		gate:        gate,
		maxBytes:    DefaultMaxUploadBytes,
		logger:      slog.Default(),
		now:         time.Now,
		view:        analysis.Sample(),
		usingSample: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// View is a snapshot of the effective view model.
type View struct {
	SessionID   string           `json:"session_id"`
	Filename    string           `json:"filename,omitempty"`
	UsingSample bool             `json:"using_sample"`
	Result      *analysis.Result `json:"result"`
}

// View returns a copy of the effective view model.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		SessionID:   s.id,
		Filename:    s.filename,
		UsingSample: s.usingSample,
		Result:      s.view.Clone(),
	}
}

// Outcome describes a completed upload. A rejected result is not an error:
// Accepted is false and the view shows sample data.
type Outcome struct {
	Filename     string  `json:"filename"`
	Accepted     bool    `json:"accepted"`
	UnknownRatio float64 `json:"unknown_ratio"`

	// Profile is nil when the local preflight could not parse the file.
	Profile *profile.Profile `json:"-"`
}

// Upload validates and submits a CSV file, then updates the view model.
// Every failure is also recorded as a notice; the view model only changes
// when the backend answered with a well-formed result.
func (s *Session) Upload(ctx context.Context, filename string, data []byte) (*Outcome, error) {
	if err := s.checkInput(filename, data); err != nil {
		return nil, s.fail(err)
	}
	if !s.uploadMu.TryLock() {
		return nil, s.fail(&InputError{Reason: "upload already in progress"})
	}
	defer s.uploadMu.Unlock()

	name := filepath.Base(filename)
	prof, err := profile.Preflight(name, data, profile.DefaultOptions())
	switch {
	case errors.Is(err, profile.ErrNoHeader), errors.Is(err, profile.ErrNoRows):
		return nil, s.fail(&InputError{Reason: fmt.Sprintf("cannot read %s as CSV", name), Err: err})
	case err != nil:
		// The backend parses the file regardless.
		s.logger.Warn("local preflight failed, uploading anyway", "file", name, "err", err)
		prof = nil
	}

	if s.gate != nil {
		if state := s.gate.Ensure(ctx); state != health.StateOnline {
			return nil, s.fail(&ConnectivityError{Op: "health check", Err: ErrBackendOffline})
		}
	}

	start := s.now()
	res, err := s.analyzer.Analyze(ctx, name, bytes.NewReader(data))
	if err != nil {
		var se *analysis.SchemaError
		if errors.As(err, &se) {
			return nil, s.fail(err)
		}
		return nil, s.fail(&ConnectivityError{Op: "analyze", Err: err})
	}

	ratio, _ := analysis.UnknownRatio(res.Preview)
	out := &Outcome{Filename: name, UnknownRatio: ratio, Profile: prof, Accepted: res.Usable()}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filename = name
	if out.Accepted {
		s.view = res
		s.usingSample = false
		s.notify(SeveritySuccess, fmt.Sprintf("File %q analyzed successfully.", name))
	} else {
		s.view = analysis.Merge(analysis.Sample(), res)
		s.usingSample = true
		s.notify(SeverityInfo, fmt.Sprintf("File %q analyzed with sample data for better visualization.", name))
	}
	rows := -1
	if prof != nil {
		rows = prof.Rows
	}
	s.logger.Info("upload analyzed",
		"file", name, "accepted", out.Accepted, "unknown_ratio", ratio,
		"rows", rows, "elapsed", s.now().Sub(start))
	return out, nil
}

func (s *Session) checkInput(filename string, data []byte) error {
	if filename == "" && len(data) == 0 {
		return &InputError{Reason: "no file selected"}
	}
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return &InputError{Reason: fmt.Sprintf("%s: only .csv files are supported", filepath.Base(filename))}
	}
	if int64(len(data)) > s.maxBytes {
		return &InputError{Reason: fmt.Sprintf("%s: file exceeds %dMB", filepath.Base(filename), s.maxBytes>>20)}
	}
	return nil
}

// RejectInput records a request that was rejected before reaching the session,
// such as an unreadable upload form, and returns it as an *InputError.
func (s *Session) RejectInput(reason string, err error) error {
	return s.fail(&InputError{Reason: reason, Err: err})
}

// fail records err as a notice with the severity of its kind and returns it.
func (s *Session) fail(err error) error {
	sev := SeverityError
	var ie *InputError
	if errors.As(err, &ie) {
		sev = SeverityWarning
	}
	s.addNotice(sev, err.Error())
	return err
}

// TableRows returns the rows for the table view. The table tolerates more unknown
// cells than the analysis view; below that bar it shows the sample preview.
func (s *Session) TableRows() (rows []*analysis.Record, fallback bool) {
	s.mu.RLock()
	preview := s.view.Preview
	if analysis.TableUsable(preview) {
		rows = analysis.ClonePreview(preview)
	}
	s.mu.RUnlock()
	if rows != nil {
		return rows, false
	}
	return analysis.Sample().Preview, true
}
