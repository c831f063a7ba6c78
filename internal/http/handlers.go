package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"bikeshare/internal/core"
	"bikeshare/internal/log"
)

const (
	dashboardTitle = "Bike Share Dashboard"
	logoURL        = "https://joyride.city/wp-content/uploads/2022/06/Joyride-e-bike-rental-software-scaled.jpg"
	logoSourceURL  = "https://joyride.city/"
)

// pageData is the view model of the dashboard templates.
type pageData struct {
	Title      string
	LogoURL    string
	LogoSource string

	MinDate  string
	MaxDate  string
	Source   string
	LoadedAt time.Time

	Dashboard *core.Dashboard
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	}
	_ = writeJSON(w, http.StatusOK, health)
}

// handleReady reports whether templates are parsed and the dataset is loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	ds := s.dashboards.Dataset()
	if ds.Len() == 0 {
		checks["dataset"] = "failed: no records"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["dataset"] = map[string]any{
			"source":    ds.Source(),
			"records":   ds.Len(),
			"min_date":  ds.MinDate().String(),
			"max_date":  ds.MaxDate().String(),
			"loaded_at": ds.LoadedAt().Format(time.RFC3339),
			"status":    "ok",
		}
	}

	stats := s.dashboards.Cache().Stats()
	checks["cache"] = map[string]any{
		"entries": stats.Size,
		"hits":    stats.Hits,
		"misses":  stats.Misses,
		"status":  "ok",
	}

	if s.limiter != nil {
		checks["rate_limiter"] = map[string]any{
			"active_clients": s.limiter.ActiveClients(),
			"status":         "ok",
		}
	}

	_ = writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// render parses the range from r and computes the dashboard for it.
// The returned status is meaningful only when err is not nil.
func (s *Server) render(r *http.Request) (*core.Dashboard, int, error) {
	rng, err := ParseDateRange(r.URL.Query())
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	d, err := s.dashboards.Render(ctx, rng)
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Dashboard render failed",
			log.FieldError, err, log.FieldComponent, log.ComponentDashboard)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, http.StatusServiceUnavailable, err
		}
		return nil, http.StatusInternalServerError, err
	}
	return d, http.StatusOK, nil
}

func (s *Server) page(d *core.Dashboard) pageData {
	ds := s.dashboards.Dataset()
	return pageData{
		Title:      dashboardTitle,
		LogoURL:    logoURL,
		LogoSource: logoSourceURL,
		MinDate:    ds.MinDate().String(),
		MaxDate:    ds.MaxDate().String(),
		Source:     ds.Source(),
		LoadedAt:   ds.LoadedAt(),
		Dashboard:  d,
	}
}

func (s *Server) execute(name string, data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	d, status, err := s.render(r)
	if err != nil {
		if status == http.StatusBadRequest {
			http.Error(w, err.Error(), status)
			return
		}
		http.Error(w, "dashboard unavailable", status)
		return
	}

	body, err := s.execute("index.html", s.page(d))
	if err != nil {
		logger.ErrorContext(r.Context(), "Index template execution failed", log.FieldError, err, log.FieldTemplate, "index.html")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleDashboardPartial renders the metrics and panels as an HTMX fragment.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}

	d, status, err := s.render(r)
	if err != nil {
		if status == http.StatusBadRequest {
			BadRequestError(err.Error()).Write(w)
			return
		}
		ErrorResponse(status, "dashboard unavailable").Write(w)
		return
	}

	body, err := s.execute("dashboard", s.page(d))
	if err != nil {
		logger.ErrorContext(r.Context(), "Dashboard template execution failed", log.FieldError, err, log.FieldTemplate, "dashboard")
		InternalServerError("render failed").Write(w)
		return
	}

	resp := NewHTMXResponse().
		TriggerDashboardRefresh(d.Start, d.End).
		BodyHTML(body)
	if d.Empty() {
		resp.TriggerWarningNotification("No records in the selected range")
	}
	resp.Write(w)
}

// tableResponse carries one table for the single-table endpoints.
type tableResponse[T any] struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Rows  []T    `json:"rows"`
}

type summaryResponse struct {
	Start   string       `json:"start"`
	End     string       `json:"end"`
	Summary core.Summary `json:"summary"`
}

// serveAPI renders the dashboard for r and writes the value pick selects.
func (s *Server) serveAPI(w http.ResponseWriter, r *http.Request, pick func(*core.Dashboard) any) {
	d, status, err := s.render(r)
	if err != nil {
		if status == http.StatusBadRequest {
			writeAPIError(w, status, err.Error())
			return
		}
		writeAPIError(w, status, "dashboard unavailable")
		return
	}
	if err := writeData(w, r, http.StatusOK, pick(d)); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "API response encoding failed", log.FieldError, err)
	}
}

func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	s.serveAPI(w, r, func(d *core.Dashboard) any { return d })
}

func (s *Server) handleAPIHourly(w http.ResponseWriter, r *http.Request) {
	s.serveAPI(w, r, func(d *core.Dashboard) any {
		return tableResponse[core.HourlyRow]{Start: d.Start, End: d.End, Rows: d.Hourly}
	})
}

func (s *Server) handleAPIWeekday(w http.ResponseWriter, r *http.Request) {
	s.serveAPI(w, r, func(d *core.Dashboard) any {
		return tableResponse[core.WeekdayRow]{Start: d.Start, End: d.End, Rows: d.Weekday}
	})
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	s.serveAPI(w, r, func(d *core.Dashboard) any {
		return summaryResponse{Start: d.Start, End: d.End, Summary: d.Summary}
	})
}
