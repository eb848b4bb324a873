package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"testdash/internal/models"
)

type staticTokens struct {
	token string
}

func (s staticTokens) AccessToken() string { return s.token }

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(models.User{ID: 1, Email: "a@b.co"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, staticTokens{token: "tok-123"})
	if _, err := client.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer tok-123")
	}
}

func TestClientOmitsEmptyToken(t *testing.T) {
	var gotAuth string
	var hasAuth bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode(models.TokenPair{Access: "a", Refresh: "r"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, staticTokens{})
	if _, err := client.Login(context.Background(), "a@b.co", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if hasAuth {
		t.Errorf("Authorization header = %q, want none", gotAuth)
	}
}

func TestClientUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "token expired"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	_, err := client.StudentTests(context.Background())

	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("StudentTests() error = %v, want ErrUnauthorized", err)
	}
}

func TestClientAPIErrorDetail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{
			name:       "detail field present",
			status:     http.StatusBadRequest,
			body:       `{"detail": "No active account found"}`,
			wantDetail: "No active account found",
		},
		{
			name:       "no detail field",
			status:     http.StatusInternalServerError,
			body:       `{"error": "boom"}`,
			wantDetail: "",
		},
		{
			name:       "non-json body",
			status:     http.StatusBadGateway,
			body:       "<html>gateway</html>",
			wantDetail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, time.Second, nil)
			_, err := client.Login(context.Background(), "a@b.co", "pw")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Login() error = %v, want *APIError", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", apiErr.Detail, tt.wantDetail)
			}
		})
	}
}

func TestClientLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login/" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		if body["email"] != "a@b.co" || body["password"] != "pw" {
			t.Errorf("request body = %v", body)
		}

		json.NewEncoder(w).Encode(models.TokenPair{Access: "acc", Refresh: "ref"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	pair, err := client.Login(context.Background(), "a@b.co", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if pair.Access != "acc" || pair.Refresh != "ref" {
		t.Errorf("Login() = %+v, want access %q refresh %q", pair, "acc", "ref")
	}
}

func TestClientSubmitAttempt(t *testing.T) {
	var got models.Submission
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/submissions/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("failed to decode submission: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, nil)
	sub := models.Submission{
		TestID: 7,
		Answers: []models.Answer{
			{QuestionID: 1, SelectedOptionID: 11},
			{QuestionID: 2, SelectedOptionID: 22},
		},
	}
	if err := client.SubmitAttempt(context.Background(), sub); err != nil {
		t.Fatalf("SubmitAttempt() error = %v", err)
	}

	if got.TestID != 7 || len(got.Answers) != 2 {
		t.Errorf("submission received = %+v", got)
	}
	if got.Answers[0].QuestionID != 1 || got.Answers[0].SelectedOptionID != 11 {
		t.Errorf("first answer = %+v", got.Answers[0])
	}
}

func TestClientTrimsTrailingSlash(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tests/" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/tests/")
		}
		json.NewEncoder(w).Encode([]models.Test{})
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second, nil)
	if _, err := client.AllTests(context.Background()); err != nil {
		t.Fatalf("AllTests() error = %v", err)
	}
}
