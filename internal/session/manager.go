// Package session owns authentication state for the process: the current
// user, the persisted credential triple, and the silent-refresh lifecycle.
// All session mutation funnels through the Manager; every other component
// reads state through Snapshot.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"testdash/internal/backend"
	"testdash/internal/models"
	"testdash/internal/store"
)

// AuthError is a login or registration rejection with a message fit for
// display to the user.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// State is a read-only snapshot of the session
type State struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
	LastError       string
}

// roleLanding maps a role to its landing view after login
var roleLanding = map[models.Role]string{
	models.RoleStudent: "/",
	models.RoleTeacher: "/teacher",
	models.RoleAdmin:   "/teacher",
}

// LandingPath returns the landing view for a role
func LandingPath(role models.Role) string {
	if path, ok := roleLanding[role]; ok {
		return path
	}
	return "/"
}

// Manager is the single source of truth for "who is logged in". It owns the
// credential store exclusively and serializes auth operations so at most one
// is in flight at a time.
type Manager struct {
	api           *backend.Client
	creds         *store.CredentialStore
	tokenValidity time.Duration
	now           func() time.Time

	// opMu serializes Initialize/Login/Register/Logout; it is held across
	// the operation's network calls.
	opMu sync.Mutex

	// mu guards the state fields below and is never held across a network
	// call, so AccessToken can be read mid-request.
	mu            sync.Mutex
	initialized   bool
	accessToken   string
	user          *models.User
	authenticated bool
	loading       bool
	lastError     string
}

// NewManager creates the session manager and its backend client. The manager
// starts in the loading state; Initialize settles it.
func NewManager(backendURL string, requestTimeout, tokenValidity time.Duration, creds *store.CredentialStore) *Manager {
	m := &Manager{
		creds:         creds,
		tokenValidity: tokenValidity,
		now:           time.Now,
		loading:       true,
	}
	m.api = backend.NewClient(backendURL, requestTimeout, m)
	return m
}

// Backend returns the API client sharing this manager's bearer token
func (m *Manager) Backend() *backend.Client {
	return m.api
}

// AccessToken implements backend.TokenSource
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

// Snapshot returns the current session state
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := State{
		IsAuthenticated: m.authenticated,
		IsLoading:       m.loading,
		LastError:       m.lastError,
	}
	if m.user != nil {
		user := *m.user
		state.User = &user
	}
	return state
}

// Initialize attempts silent re-authentication from persisted credentials.
// It runs once per process; every failure path settles unauthenticated with
// no surfaced error, since a stale session is indistinguishable from "never
// logged in" for the user.
func (m *Manager) Initialize(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return
	}
	m.initialized = true
	m.mu.Unlock()

	defer m.setLoading(false)

	creds, err := m.creds.Load()
	if err != nil {
		log.Printf("Failed to read stored credentials: %v", err)
		m.abandonStoredSession()
		return
	}
	if creds == nil {
		// No stored session; settle unauthenticated with no network call.
		return
	}

	if creds.IsExpired(m.now()) {
		pair, err := m.api.Refresh(ctx, creds.RefreshToken)
		if err != nil {
			log.Printf("Silent token refresh failed: %v", err)
			m.abandonStoredSession()
			return
		}
		creds, err = m.persistTokenPair(pair)
		if err != nil {
			log.Printf("Failed to persist refreshed tokens: %v", err)
			m.abandonStoredSession()
			return
		}
	}

	m.setAccessToken(creds.AccessToken)

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		log.Printf("Failed to fetch user for stored session: %v", err)
		m.abandonStoredSession()
		return
	}

	m.mu.Lock()
	m.user = user
	m.authenticated = true
	m.mu.Unlock()
}

// Login authenticates against the backend, persists the returned token pair
// and loads the user profile. On success it returns the role-appropriate
// landing path. Rejections come back as *AuthError with the backend's
// message and are also recorded as the session's last error.
func (m *Manager) Login(ctx context.Context, email, password string) (string, error) {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.beginOperation()
	defer m.setLoading(false)

	pair, err := m.api.Login(ctx, email, password)
	if err != nil {
		return "", m.fail(err, "Login failed")
	}

	creds, err := m.persistTokenPair(pair)
	if err != nil {
		return "", m.fail(err, "Login failed")
	}
	m.setAccessToken(creds.AccessToken)

	user, err := m.api.CurrentUser(ctx)
	if err != nil {
		m.abandonStoredSession()
		return "", m.fail(err, "Login failed")
	}

	m.mu.Lock()
	m.user = user
	m.authenticated = true
	m.mu.Unlock()

	return LandingPath(user.Role), nil
}

// Register creates a new account. It performs no session change; on success
// the caller navigates to the login view.
func (m *Manager) Register(ctx context.Context, reg models.Registration) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.beginOperation()
	defer m.setLoading(false)

	if err := m.api.Register(ctx, reg); err != nil {
		return m.fail(err, "Registration failed")
	}
	return nil
}

// Logout clears persisted credentials and in-memory state. It succeeds
// without any network call.
func (m *Manager) Logout() {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.abandonStoredSession()
}

// ForceLogout implements the process-wide unauthorized policy: any backend
// call answering 401 ends the session unconditionally.
func (m *Manager) ForceLogout() {
	m.Logout()
}

// ClearError resets the last error
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastError = ""
}

// persistTokenPair stores a fresh token pair with its validity window and
// returns the resulting credentials
func (m *Manager) persistTokenPair(pair *models.TokenPair) (*models.Credentials, error) {
	creds := models.Credentials{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		ExpiresAt:    m.expiryFor(pair.Access),
	}
	if err := m.creds.Save(creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// expiryFor derives the validity window for an access token: the JWT exp
// claim when the token parses as one (unverified — the backend holds the
// signing key, we only need the timestamp), else a fixed window from now.
func (m *Manager) expiryFor(accessToken string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err == nil {
		if claims.ExpiresAt != nil && claims.ExpiresAt.After(m.now()) {
			return claims.ExpiresAt.Time
		}
	}
	return m.now().Add(m.tokenValidity)
}

// abandonStoredSession clears persisted credentials and in-memory user state
func (m *Manager) abandonStoredSession() {
	if err := m.creds.Clear(); err != nil {
		log.Printf("Failed to clear stored credentials: %v", err)
	}

	m.mu.Lock()
	m.accessToken = ""
	m.user = nil
	m.authenticated = false
	m.mu.Unlock()
}

// beginOperation marks an auth operation in flight and clears the previous error
func (m *Manager) beginOperation() {
	m.mu.Lock()
	m.loading = true
	m.lastError = ""
	m.mu.Unlock()
}

// fail records a user-facing message for err and returns it as *AuthError.
// Backend rejections surface their detail message verbatim.
func (m *Manager) fail(err error, fallback string) error {
	message := fallback

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		message = apiErr.Detail
	} else if errors.Is(err, backend.ErrUnauthorized) {
		message = "Invalid credentials"
	}

	m.mu.Lock()
	m.lastError = message
	m.mu.Unlock()

	return &AuthError{Message: message}
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	m.loading = loading
	m.mu.Unlock()
}

func (m *Manager) setAccessToken(token string) {
	m.mu.Lock()
	m.accessToken = token
	m.mu.Unlock()
}
