package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/KaramelBytes/datadash-cli/internal/dashboard"
)

type statusResponse struct {
	State     string     `json:"state"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
	Error     string     `json:"error,omitempty"`
}

func (s *Server) status() statusResponse {
	state, at, err := s.monitor.Snapshot()
	resp := statusResponse{State: string(state)}
	if !at.IsZero() {
		resp.CheckedAt = &at
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	s.monitor.ProbeNow(r.Context())
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.View())
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	rows, fallback := s.session.TableRows()
	writeJSON(w, http.StatusOK, map[string]any{
		"using_sample": fallback,
		"rows":         rows,
	})
}

func (s *Server) handleAxes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.SuggestAxes())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	var req dashboard.ChartRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		writeError(w, s.session.RejectInput("invalid chart request", err))
		return
	}
	plan, err := s.session.PlanChart(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+(1<<20))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, s.session.RejectInput("invalid upload form", err))
		return
	}
	name, data, err := readUpload(r, s.maxUpload)
	if err != nil {
		writeError(w, s.session.RejectInput("cannot read uploaded file", err))
		return
	}
	out, err := s.session.Upload(r.Context(), name, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	dl, err := s.session.ExportCSV()
	if err != nil {
		writeError(w, err)
		return
	}
	writeDownload(w, dl)
}

func (s *Server) handleDownloadXLSX(w http.ResponseWriter, r *http.Request) {
	dl, err := s.session.ExportXLSX()
	if err != nil {
		writeError(w, err)
		return
	}
	writeDownload(w, dl)
}

func (s *Server) handleDownloadSummary(w http.ResponseWriter, r *http.Request) {
	dl, err := s.session.ExportSummary(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeDownload(w, dl)
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Notices())
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	if !s.session.Dismiss(chi.URLParam(r, "id")) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "notice not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
