package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"testdash/internal/service"
	"testdash/internal/session"
)

// AttemptHandler runs the test-taking flow
type AttemptHandler struct {
	attempts  *service.AttemptService
	session   *session.Manager
	templates *template.Template
}

// NewAttemptHandler creates a new attempt handler
func NewAttemptHandler(attempts *service.AttemptService, sessionManager *session.Manager, templates *template.Template) *AttemptHandler {
	return &AttemptHandler{
		attempts:  attempts,
		session:   sessionManager,
		templates: templates,
	}
}

// Start begins an attempt at a test. An unloadable test or an empty question
// set renders the terminal "not available" view, whose only action leads
// back to the default view.
func (h *AttemptHandler) Start(w http.ResponseWriter, r *http.Request) {
	testID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid test ID", "", err)
		return
	}

	if err := h.attempts.Start(r.Context(), testID); err != nil {
		if handleUnauthorized(w, r, h.session, err) {
			return
		}
		if errors.Is(err, service.ErrTestNotAvailable) {
			h.renderUnavailable(w, r)
			return
		}
		respondWithError(w, http.StatusBadGateway, "Failed to start test", "Start attempt failed", err)
		return
	}

	http.Redirect(w, r, "/attempt", http.StatusSeeOther)
}

// Show renders the current question of the active attempt
func (h *AttemptHandler) Show(w http.ResponseWriter, r *http.Request) {
	view, err := h.attempts.View()
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.render(w, AttemptViewData{
		Title:   view.Title + " - TestDash",
		User:    GetUserFromContext(r.Context()),
		Attempt: view,
	})
}

// SelectAnswer records an answer for a question. This is a pure local state
// update; it never contacts the backend.
func (h *AttemptHandler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form data", "", err)
		return
	}

	questionID, err := strconv.ParseInt(r.FormValue("question_id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid question ID", "", err)
		return
	}
	optionID, err := strconv.ParseInt(r.FormValue("option_id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid option ID", "", err)
		return
	}

	if err := h.attempts.SelectAnswer(questionID, optionID); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/attempt", http.StatusSeeOther)
}

// Next advances to the next question
func (h *AttemptHandler) Next(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.attempts.Next)
}

// Previous moves back one question
func (h *AttemptHandler) Previous(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.attempts.Previous)
}

func (h *AttemptHandler) move(w http.ResponseWriter, r *http.Request, op func() error) {
	if err := op(); err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/attempt", http.StatusSeeOther)
}

// Submit turns in the attempt. A failed submission re-renders the attempt
// with the error; the user may re-trigger it.
func (h *AttemptHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := h.attempts.Submit(r.Context()); err != nil {
		if handleUnauthorized(w, r, h.session, err) {
			return
		}
		if errors.Is(err, service.ErrNoActiveAttempt) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}

		log.Printf("Submission failed: %v", err)
		view, viewErr := h.attempts.View()
		if viewErr != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		h.render(w, AttemptViewData{
			Title:   view.Title + " - TestDash",
			User:    GetUserFromContext(r.Context()),
			Attempt: view,
			Error:   "Submission failed. Please try again.",
		})
		return
	}

	http.Redirect(w, r, "/?submitted=1", http.StatusSeeOther)
}

// Exit tears the attempt down without submitting and returns to the default
// view. The countdown stops with it.
func (h *AttemptHandler) Exit(w http.ResponseWriter, r *http.Request) {
	h.attempts.Teardown()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RemainingTime reports the countdown as JSON so the attempt page can keep
// its clock display current without a full re-render
func (h *AttemptHandler) RemainingTime(w http.ResponseWriter, r *http.Request) {
	remaining, err := h.attempts.RemainingSeconds()
	if err != nil {
		http.Error(w, "No active attempt", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]int{"remaining_seconds": remaining}); err != nil {
		log.Printf("Error encoding remaining time: %v", err)
	}
}

func (h *AttemptHandler) render(w http.ResponseWriter, data AttemptViewData) {
	if err := h.templates.ExecuteTemplate(w, "take_test.tmpl", data); err != nil {
		log.Printf("Error rendering take_test template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *AttemptHandler) renderUnavailable(w http.ResponseWriter, r *http.Request) {
	data := UnavailableViewData{
		Title: "Test Not Available - TestDash",
		User:  GetUserFromContext(r.Context()),
	}
	if err := h.templates.ExecuteTemplate(w, "unavailable.tmpl", data); err != nil {
		log.Printf("Error rendering unavailable template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
