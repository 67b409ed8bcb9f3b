package domain

import "time"

// Session is the provider-issued proof of identity held by this client.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// ExpiresWithin reports whether the session expires before reference+margin.
func (s *Session) ExpiresWithin(reference time.Time, margin time.Duration) bool {
	if s == nil {
		return true
	}
	return s.IsExpired(reference.Add(margin))
}

// UserOrNil returns the session's user, tolerating a nil session.
func (s *Session) UserOrNil() *User {
	if s == nil {
		return nil
	}
	return s.User
}

// SessionSnapshot is a session (possibly nil) read at a given provider sequence.
type SessionSnapshot struct {
	Session *Session
	Seq     uint64
}

// SignUpResult is what the provider returns for a new registration. Session
// is nil when the provider requires email confirmation first.
type SignUpResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session,omitempty"`
}
