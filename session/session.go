package session

import (
	"sync"
	"time"
)

// Session is the explicit login state handed to the reconciler and anything
// else that needs to know who the user is. It is created on login and ended
// on logout; nothing reads login state from ambient storage.
type Session struct {
	email       string
	dataConsent bool
	createdAt   time.Time

	mu     sync.Mutex
	active bool
}

func New(email string, dataConsent bool) *Session {
	return &Session{
		email:       email,
		dataConsent: dataConsent,
		createdAt:   time.Now().UTC(),
		active:      true,
	}
}

func (s *Session) Email() string {
	return s.email
}

func (s *Session) DataConsent() bool {
	return s.dataConsent
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Active reports whether the session is still live. The reconciler checks
// this between reward issuances so a logout stops the cycle without
// interrupting an in-flight write.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// End marks the session logged out. In-flight work may still observe the
// old state until its next Active check.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}
