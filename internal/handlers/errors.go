package handlers

import (
	"errors"
	"log"
	"net/http"

	"testdash/internal/backend"
	"testdash/internal/session"
)

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	http.Error(w, userMsg, status)
}

// handleUnauthorized applies the process-wide 401 policy: the session ends
// unconditionally and the request is redirected to the login view, no matter
// which operation produced the 401. It reports whether err was handled.
func handleUnauthorized(w http.ResponseWriter, r *http.Request, sessionManager *session.Manager, err error) bool {
	if !errors.Is(err, backend.ErrUnauthorized) {
		return false
	}

	log.Printf("Backend rejected session on %s %s, forcing logout", r.Method, r.URL.Path)
	sessionManager.ForceLogout()
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}
