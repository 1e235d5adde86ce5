package domain

import (
	"errors"
	"time"
)

// User is the core user entity. PasswordHash never leaves the service layer;
// every outward-facing path goes through Sanitized.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// SanitizedUser is the outward projection of a user: no password hash, no
// session linkage.
type SanitizedUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
	Active   bool   `json:"isActive"`
}

// Sanitized returns the outward projection of u.
func (u *User) Sanitized() *SanitizedUser {
	if u == nil {
		return nil
	}
	return &SanitizedUser{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		Active:   u.Active,
	}
}

// Validate validates the user for persistence. Returns an error describing the
// first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
