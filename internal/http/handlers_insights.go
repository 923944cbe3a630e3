package http

import (
	"net/http"

	applog "subtrack/internal/log"
	"subtrack/internal/middleware/ratelimit"
	"subtrack/internal/middleware/security"
	"subtrack/internal/middleware/trace"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageBody{Message: "Subtrack API is running!", Status: "healthy"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.tracker.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, "Dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := s.tracker.Suggestions(r.Context())
	if err != nil {
		s.writeError(w, r, "Suggestions", err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Suggestions []string `json:"suggestions"`
	}{suggestions})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := s.tracker.Export(r.Context())
	if err != nil {
		s.writeError(w, r, "Export", err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

// handleSheetsExport pushes the export to the configured spreadsheet.
func (s *Server) handleSheetsExport(w http.ResponseWriter, r *http.Request) {
	if s.sheets == nil {
		writeDetail(w, http.StatusNotImplemented, "Google Sheets export is not configured")
		return
	}
	export, err := s.tracker.Export(r.Context())
	if err != nil {
		s.writeError(w, r, "Export", err)
		return
	}
	rows, err := s.sheets.WriteExport(r.Context(), export)
	if err != nil {
		applog.FromContext(r.Context(), applog.ComponentExport).ErrorContext(r.Context(), "Sheets export failed",
			applog.FieldError, err)
		writeDetail(w, http.StatusBadGateway, "Google Sheets export failed")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		Rows    int    `json:"rows"`
	}{"Export written to Google Sheets", rows})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Categories())
}

type healthBody struct {
	Status    string                    `json:"status"`
	Requests  trace.Metrics             `json:"requests"`
	RateLimit ratelimit.Metrics         `json:"rate_limit"`
	Security  security.DetectionMetrics `json:"security"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{
		Status:    "ok",
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
		Security:  s.detector.GetMetrics(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Ping(r.Context()); err != nil {
		applog.FromContext(r.Context(), applog.ComponentHTTP).WarnContext(r.Context(), "Readiness check failed",
			applog.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, messageBody{Message: "store unavailable", Status: "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "ready", Status: "ready"})
}
