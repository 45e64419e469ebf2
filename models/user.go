package models

import "time"

// User is identified by email; there is no separate numeric id anywhere
// in this system.
type User struct {
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	DataConsent  bool      `json:"data_consent"`
	CreatedAt    time.Time `json:"created_at"`
	PasswordHash string    `json:"-"` // Not exposed in API responses
}
