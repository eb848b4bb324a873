package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"testdash/internal/models"
	"testdash/internal/session"
	"testdash/internal/validation"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	session   *session.Manager
	templates *template.Template
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessionManager *session.Manager, templates *template.Template) *AuthHandler {
	return &AuthHandler{
		session:   sessionManager,
		templates: templates,
	}
}

// ShowLogin renders the login page
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	state := h.session.Snapshot()
	if state.IsAuthenticated {
		http.Redirect(w, r, session.LandingPath(state.User.Role), http.StatusSeeOther)
		return
	}

	data := LoginViewData{
		Title: "Login - TestDash",
		Error: state.LastError,
	}
	// The stored error is shown once and then cleared.
	h.session.ClearError()

	if r.URL.Query().Get("registered") == "1" {
		data.Success = "Registration successful. You can log in now."
	}

	h.render(w, "login.tmpl", data)
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form data", "", err)
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")

	landing, err := h.session.Login(r.Context(), email, password)
	if err != nil {
		// Rejection: re-render the login view in place, no navigation.
		var authErr *session.AuthError
		message := "Login failed"
		if errors.As(err, &authErr) {
			message = authErr.Message
		}
		h.render(w, "login.tmpl", LoginViewData{
			Title: "Login - TestDash",
			Error: message,
			Email: email,
		})
		return
	}

	http.Redirect(w, r, landing, http.StatusSeeOther)
}

// ShowRegister renders the registration page
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	state := h.session.Snapshot()
	if state.IsAuthenticated {
		http.Redirect(w, r, session.LandingPath(state.User.Role), http.StatusSeeOther)
		return
	}

	h.render(w, "register.tmpl", RegisterViewData{Title: "Register - TestDash"})
}

// Register handles registration form submission. Validation failures are
// caught here and never reach the backend.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid form data", "", err)
		return
	}

	reg := models.Registration{
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
	}
	confirmation := r.FormValue("password_confirmation")

	if err := h.validateRegistration(reg, confirmation); err != nil {
		h.render(w, "register.tmpl", RegisterViewData{
			Title:     "Register - TestDash",
			Error:     err.Error(),
			Email:     reg.Email,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
		})
		return
	}

	if err := h.session.Register(r.Context(), reg); err != nil {
		var authErr *session.AuthError
		message := "Registration failed"
		if errors.As(err, &authErr) {
			message = authErr.Message
		}
		h.render(w, "register.tmpl", RegisterViewData{
			Title:     "Register - TestDash",
			Error:     message,
			Email:     reg.Email,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
		})
		return
	}

	// Registration does not log the user in; send them to the login view.
	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// Logout ends the session and returns to the login view
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// validateRegistration runs the client-side checks for a registration form
func (h *AuthHandler) validateRegistration(reg models.Registration, confirmation string) error {
	if err := validation.ValidateEmail(reg.Email); err != nil {
		return err
	}
	if err := validation.ValidatePassword(reg.Password); err != nil {
		return err
	}
	if err := validation.ValidatePasswordConfirmation(reg.Password, confirmation); err != nil {
		return err
	}
	if err := validation.ValidateName("first name", reg.FirstName); err != nil {
		return err
	}
	return validation.ValidateName("last name", reg.LastName)
}

// render executes a template, falling back to a 500 on failure
func (h *AuthHandler) render(w http.ResponseWriter, name string, data interface{}) {
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("Error rendering %s: %v", name, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
