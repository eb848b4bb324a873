package models

import "time"

// Role is a user's access level on the platform
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// User represents the authenticated platform account
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// CanManageTests reports whether the user may author and delete tests
func (u *User) CanManageTests() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}

// Credentials is the persisted token triple for the current session.
// Absence of any field means there is no stored session.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// IsExpired checks if the access token's validity window has passed
func (c *Credentials) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// TokenPair is the backend's response to login and refresh calls
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Registration is the payload for creating a new platform account
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
