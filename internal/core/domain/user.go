package domain

import (
	"strings"
	"time"
)

// User models an authenticated principal. The role is assigned once at
// registration and never changes afterwards.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	PhoneNumber  string    `json:"phoneNumber,omitempty"`
	Location     string    `json:"location,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DisplayName returns "First Last", falling back to the email.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// NormalizeEmail is the key used for case-insensitive email uniqueness.
func NormalizeEmail(email string) string {
	return strings.ToUpper(strings.TrimSpace(email))
}
