// Package auth handles user authentication, session management, and password
// security for Canvass. It provides registration, login, logout, and
// per-request identity resolution from a signed, stateless session cookie.
//
// This is a CORE plugin -- every other plugin reads the Principal it stores.
package auth

import (
	"time"
)

// User represents a registered Canvass user. This is the domain model used
// throughout the application. Database scanning and JSON marshaling use this
// struct directly.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Principal is the authenticated identity attached to a request. It is
// loaded from storage on every request and never cached across requests.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Principal returns the request identity for this user.
func (u *User) Principal() *Principal {
	return &Principal{ID: u.ID, Email: u.Email, Name: u.Name}
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the data submitted by the registration form.
type RegisterRequest struct {
	Email      string `json:"email" form:"email"`
	Name       string `json:"name" form:"name"`
	Password   string `json:"password" form:"password"`
	Confirm    string `json:"confirm" form:"confirm"`
	RedirectTo string `form:"redirectTo"`
}

// LoginRequest holds the data submitted by the login form.
type LoginRequest struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	RedirectTo string `form:"redirectTo"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the validated input for creating a new user.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// LoginInput is the validated input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}
