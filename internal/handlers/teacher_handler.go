package handlers

import (
	"html/template"
	"log"
	"net/http"
	"strconv"

	"testdash/internal/models"
	"testdash/internal/service"
	"testdash/internal/session"
)

// TeacherHandler handles test management for teachers and admins
type TeacherHandler struct {
	tests     *service.TestService
	session   *session.Manager
	templates *template.Template
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(tests *service.TestService, sessionManager *session.Manager, templates *template.Template) *TeacherHandler {
	return &TeacherHandler{
		tests:     tests,
		session:   sessionManager,
		templates: templates,
	}
}

// Dashboard renders the management view with every test on the platform
func (h *TeacherHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := TeacherDashboardViewData{
		Title: "Test Management - TestDash",
		User:  GetUserFromContext(r.Context()),
	}
	switch {
	case r.URL.Query().Get("created") == "1":
		data.Success = "Test created."
	case r.URL.Query().Get("deleted") == "1":
		data.Success = "Test deleted."
	}

	tests, err := h.tests.AllTests(r.Context())
	if err != nil {
		if handleUnauthorized(w, r, h.session, err) {
			return
		}
		log.Printf("Failed to load tests: %v", err)
		data.Error = "Could not load tests. Please try again."
	} else {
		data.Tests = tests
	}

	h.render(w, data)
}

// CreateTest handles the create-test form submission
func (h *TeacherHandler) CreateTest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form data", "", err)
		return
	}

	duration, _ := strconv.Atoi(r.FormValue("duration"))
	form := models.NewTest{
		Title:       r.FormValue("title"),
		Subject:     r.FormValue("subject"),
		Description: r.FormValue("description"),
		Duration:    duration,
	}

	if err := h.tests.CreateTest(r.Context(), form); err != nil {
		if handleUnauthorized(w, r, h.session, err) {
			return
		}

		// Re-render the management view with the form preserved.
		data := TeacherDashboardViewData{
			Title: "Test Management - TestDash",
			User:  GetUserFromContext(r.Context()),
			Form:  form,
			Error: err.Error(),
		}
		if tests, listErr := h.tests.AllTests(r.Context()); listErr == nil {
			data.Tests = tests
		}
		h.render(w, data)
		return
	}

	http.Redirect(w, r, "/teacher?created=1", http.StatusSeeOther)
}

// DeleteTest deletes a test
func (h *TeacherHandler) DeleteTest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid test ID", "", err)
		return
	}

	if err := h.tests.DeleteTest(r.Context(), id); err != nil {
		if handleUnauthorized(w, r, h.session, err) {
			return
		}
		respondWithError(w, http.StatusBadGateway, "Failed to delete test", "Delete test failed", err)
		return
	}

	http.Redirect(w, r, "/teacher?deleted=1", http.StatusSeeOther)
}

func (h *TeacherHandler) render(w http.ResponseWriter, data TeacherDashboardViewData) {
	if err := h.templates.ExecuteTemplate(w, "teacher.tmpl", data); err != nil {
		log.Printf("Error rendering teacher template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
