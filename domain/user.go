package domain

import "time"

// User represents an identity issued by the session provider.
type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email,omitempty"`
	Role         string                 `json:"role,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	ConfirmedAt  *time.Time             `json:"confirmed_at,omitempty"`
}

// IsConfirmed reports whether the provider has confirmed the email address.
func (u *User) IsConfirmed() bool {
	return u != nil && u.ConfirmedAt != nil
}
