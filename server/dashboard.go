package server

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/tradescope/pkg/refresh"
)

// template names
const (
	templateDashboard = "dashboard.html"
	templateContent   = "dashboard-content"
	templateToggle    = "auto-refresh-toggle"
)

// pageData is passed to the dashboard page and the content partial
type pageData struct {
	View    refresh.View
	Poll    time.Duration
	Version string
	OOB     bool // add out-of-band updates of header elements
}

// dashboardHandler renders the full dashboard page
func (s *Server) dashboardHandler(w http.ResponseWriter, _ *http.Request) {
	s.render(w, templateDashboard, pageData{View: s.ctrl.View(), Poll: s.viewPoll(), Version: s.version})
}

// contentHandler renders the content region, polled by the page
func (s *Server) contentHandler(w http.ResponseWriter, r *http.Request) {
	s.render(w, templateContent, pageData{View: s.ctrl.View(), Poll: s.viewPoll(), OOB: isHTMX(r)})
}

// refreshHandler runs a manual refresh and renders the resulting content region.
// The fetch outlives the request, a client disconnect must not cancel the shared refresh.
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	outcome := s.ctrl.ManualRefresh(context.WithoutCancel(r.Context()))
	lgr.Printf("[DEBUG] manual refresh from %s: %s", r.RemoteAddr, outcome)
	s.render(w, templateContent, pageData{View: s.ctrl.View(), Poll: s.viewPoll(), OOB: isHTMX(r)})
}

// autoRefreshHandler flips auto-refresh and renders the toggle button
func (s *Server) autoRefreshHandler(w http.ResponseWriter, r *http.Request) {
	on := s.ctrl.ToggleAutoRefresh()
	lgr.Printf("[DEBUG] auto-refresh toggled to %v from %s", on, r.RemoteAddr)
	s.render(w, templateToggle, s.ctrl.View())
}

// render executes a template into a buffer so a failure doesn't leave a partial page
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		lgr.Printf("[WARN] failed to write %s: %v", name, err)
	}
}

// respondWithError logs the error and sends a plain text error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil {
		lgr.Printf("[ERROR] %s: %v", message, err)
	}
	http.Error(w, message, code)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
