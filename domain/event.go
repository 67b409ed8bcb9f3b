package domain

// AuthEventKind names a session change reported by the provider.
type AuthEventKind string

const (
	EventInitialSession AuthEventKind = "INITIAL_SESSION"
	EventSignedIn       AuthEventKind = "SIGNED_IN"
	EventSignedOut      AuthEventKind = "SIGNED_OUT"
	EventTokenRefreshed AuthEventKind = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEventKind = "USER_UPDATED"
)

// AuthEvent carries the session as it stood right after the change. Seq is
// strictly increasing per provider instance.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
	Seq     uint64
}
