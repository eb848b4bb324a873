package handlers

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"time"

	"testdash/internal/models"
	"testdash/internal/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// UserContextKey holds the authenticated user in the request context
const UserContextKey ContextKey = "user"

// Middleware gates rendering of protected views behind session state. The
// session snapshot is taken fresh on every request, so a logout is observed
// immediately by the next request to a protected view.
type Middleware struct {
	session   *session.Manager
	templates *template.Template
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(sessionManager *session.Manager, templates *template.Template) *Middleware {
	return &Middleware{
		session:   sessionManager,
		templates: templates,
	}
}

// RequireAuth is middleware that requires an authenticated session. While
// the initial session check is still resolving it renders a neutral loading
// view rather than redirecting, so a stored session is never bounced to the
// login view prematurely.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := m.session.Snapshot()

		if state.IsLoading {
			m.renderLoading(w)
			return
		}

		if !state.IsAuthenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, state.User)
		next(w, r.WithContext(ctx))
	}
}

// RequireRoles composes on RequireAuth and additionally requires the user's
// role to be in the allowed set; otherwise the request is redirected to the
// default view.
func (m *Middleware) RequireRoles(roles ...models.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			for _, role := range roles {
				if user != nil && user.Role == role {
					next(w, r)
					return
				}
			}
			http.Redirect(w, r, "/", http.StatusSeeOther)
		})
	}
}

// renderLoading renders the neutral loading view, which refreshes itself
// until the session check settles
func (m *Middleware) renderLoading(w http.ResponseWriter) {
	data := LoadingViewData{Title: "Loading - TestDash"}
	if err := m.templates.ExecuteTemplate(w, "loading.tmpl", data); err != nil {
		log.Printf("Error rendering loading template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
