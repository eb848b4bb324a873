package models

import (
	"testing"
	"time"
)

func TestUserFullName(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected string
	}{
		{
			name:     "both names",
			user:     User{FirstName: "Ada", LastName: "Lovelace"},
			expected: "Ada Lovelace",
		},
		{
			name:     "first name only",
			user:     User{FirstName: "Ada"},
			expected: "Ada",
		},
		{
			name:     "last name only",
			user:     User{LastName: "Lovelace"},
			expected: "Lovelace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.FullName(); got != tt.expected {
				t.Errorf("FullName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestUserCanManageTests(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{role: RoleStudent, expected: false},
		{role: RoleTeacher, expected: true},
		{role: RoleAdmin, expected: true},
		{role: Role("proctor"), expected: false},
	}

	for _, tt := range tests {
		user := User{Role: tt.role}
		if got := user.CanManageTests(); got != tt.expected {
			t.Errorf("CanManageTests() for role %q = %v, want %v", tt.role, got, tt.expected)
		}
	}
}

func TestCredentialsIsExpired(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		expected  bool
	}{
		{
			name:      "future expiry",
			expiresAt: now.Add(time.Hour),
			expected:  false,
		},
		{
			name:      "past expiry",
			expiresAt: now.Add(-time.Minute),
			expected:  true,
		},
		{
			name:      "exactly now",
			expiresAt: now,
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := Credentials{ExpiresAt: tt.expiresAt}
			if got := creds.IsExpired(now); got != tt.expected {
				t.Errorf("IsExpired() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAttemptRecordAnsweredPercent(t *testing.T) {
	tests := []struct {
		name     string
		record   AttemptRecord
		expected int
	}{
		{
			name:     "fully answered",
			record:   AttemptRecord{AnsweredCount: 10, QuestionCount: 10},
			expected: 100,
		},
		{
			name:     "partially answered",
			record:   AttemptRecord{AnsweredCount: 3, QuestionCount: 4},
			expected: 75,
		},
		{
			name:     "nothing answered",
			record:   AttemptRecord{AnsweredCount: 0, QuestionCount: 5},
			expected: 0,
		},
		{
			name:     "no questions",
			record:   AttemptRecord{AnsweredCount: 0, QuestionCount: 0},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.AnsweredPercent(); got != tt.expected {
				t.Errorf("AnsweredPercent() = %d, want %d", got, tt.expected)
			}
		})
	}
}
