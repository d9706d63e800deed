package auth

// Identity is the public view of a signed-in user.
type Identity struct {
	ID           string
	Email        string
	Name         string
	AvatarURL    string
	IsSuperadmin bool
}

// Session is the resolved authentication state of a request.
// The zero value is a guest session.
type Session struct {
	identity *Identity
	id       string
}

// Guest returns an unauthenticated session.
func Guest() Session { return Session{} }

// NewSession returns an authenticated session for identity.
func NewSession(id string, identity Identity) Session {
	return Session{id: id, identity: &identity}
}

// IsAuthenticated reports whether a user is attached.
func (s Session) IsAuthenticated() bool { return s.identity != nil }

// ID returns the server-side session id, or "" for guests.
func (s Session) ID() string { return s.id }

// Identity returns the signed-in user. ok is false for guests.
func (s Session) Identity() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// UserID returns the signed-in user's id, or "" for guests.
func (s Session) UserID() string {
	if s.identity == nil {
		return ""
	}
	return s.identity.ID
}
