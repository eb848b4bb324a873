package handlers

import (
	"html/template"
	"log"
	"net/http"

	"testdash/internal/service"
	"testdash/internal/session"
)

// DashboardHandler renders the student dashboard
type DashboardHandler struct {
	tests     *service.TestService
	session   *session.Manager
	templates *template.Template
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(tests *service.TestService, sessionManager *session.Manager, templates *template.Template) *DashboardHandler {
	return &DashboardHandler{
		tests:     tests,
		session:   sessionManager,
		templates: templates,
	}
}

// Dashboard renders the default view: the student's assigned tests, their
// statistics and their locally journaled attempt history.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user != nil && user.CanManageTests() {
		http.Redirect(w, r, "/teacher", http.StatusSeeOther)
		return
	}

	data := StudentDashboardViewData{
		Title: "Dashboard - TestDash",
		User:  user,
	}
	if r.URL.Query().Get("submitted") == "1" {
		data.Success = "Your answers were submitted successfully."
	}

	tests, stats, err := h.tests.StudentDashboard(r.Context())
	if err != nil {
		if handleUnauthorized(w, r, h.session, err) {
			return
		}
		log.Printf("Failed to load student dashboard: %v", err)
		data.Error = "Could not load your tests. Please try again."
	} else {
		data.Tests = tests
		data.Stats = stats
	}

	history, err := h.tests.History()
	if err != nil {
		log.Printf("Failed to load attempt history: %v", err)
	} else {
		data.History = history
	}

	if err := h.templates.ExecuteTemplate(w, "dashboard.tmpl", data); err != nil {
		log.Printf("Error rendering dashboard template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
