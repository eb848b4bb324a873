// Package backend is the HTTP client for the remote test platform API.
// All platform data lives behind this client; testdash itself holds no
// platform persistence.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"testdash/internal/models"
)

// ErrUnauthorized is returned for any call the backend answers with 401.
// Callers treat it as a fatal session error regardless of which operation
// produced it.
var ErrUnauthorized = errors.New("backend: unauthorized")

// APIError is a non-401 rejection from the backend, carrying the
// human-readable detail message from the response body when present.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// TokenSource supplies the current bearer token for authenticated calls.
// An empty string means no token is attached.
type TokenSource interface {
	AccessToken() string
}

// Client talks to the platform's REST API
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewClient creates a new backend client. tokens may be nil for a client
// that only performs unauthenticated calls.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	body := map[string]string{"email": email, "password": password}
	var pair models.TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/login/", body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Register creates a new platform account. It does not log the account in.
func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	return c.do(ctx, http.MethodPost, "/auth/register/", reg, nil)
}

// Refresh exchanges a refresh token for a new token pair
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	body := map[string]string{"refresh": refreshToken}
	var pair models.TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/refresh/", body, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// CurrentUser fetches the profile of the authenticated user
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// StudentTests lists the tests assigned to the current student
func (c *Client) StudentTests(ctx context.Context) ([]models.Test, error) {
	var tests []models.Test
	if err := c.do(ctx, http.MethodGet, "/tests/student_tests/", nil, &tests); err != nil {
		return nil, err
	}
	return tests, nil
}

// AllTests lists every test; requires a teacher or admin account
func (c *Client) AllTests(ctx context.Context) ([]models.Test, error) {
	var tests []models.Test
	if err := c.do(ctx, http.MethodGet, "/tests/", nil, &tests); err != nil {
		return nil, err
	}
	return tests, nil
}

// TestDetail fetches metadata for a single test
func (c *Client) TestDetail(ctx context.Context, id int64) (*models.Test, error) {
	var test models.Test
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tests/%d/", id), nil, &test); err != nil {
		return nil, err
	}
	return &test, nil
}

// TestQuestions fetches the ordered question set for a test
func (c *Client) TestQuestions(ctx context.Context, id int64) ([]models.Question, error) {
	var questions []models.Question
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tests/%d/questions/", id), nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// CreateTest creates a new test; requires a teacher or admin account
func (c *Client) CreateTest(ctx context.Context, test models.NewTest) error {
	return c.do(ctx, http.MethodPost, "/tests/", test, nil)
}

// DeleteTest deletes a test; requires a teacher or admin account
func (c *Client) DeleteTest(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tests/%d/", id), nil, nil)
}

// SubmitAttempt turns in a completed attempt
func (c *Client) SubmitAttempt(ctx context.Context, sub models.Submission) error {
	return c.do(ctx, http.MethodPost, "/submissions/", sub, nil)
}

// StudentStats fetches aggregate statistics for the current student
func (c *Client) StudentStats(ctx context.Context) (*models.StudentStats, error) {
	var stats models.StudentStats
	if err := c.do(ctx, http.MethodGet, "/stats/student/", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// do performs one request against the backend. The stored bearer token is
// attached whenever one is available, mirroring the platform contract where
// every authenticated call carries the same header.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Detail: decodeDetail(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}

	return nil
}

// decodeDetail extracts the backend's error message from a rejection body
func decodeDetail(body io.Reader) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	return payload.Detail
}
