// Package session holds the current user identity shared by every feature
// store. Stores read the live identity at request time, never a snapshot
// taken at construction, so a sign-out is visible to the very next request.
package session

import (
	"errors"
	"strings"
	"sync"

	"lifeassistant/internal/log"
)

var (
	// ErrInvalidCredential is returned when sign-in or sign-up receives a
	// credential that carries no user identity.
	ErrInvalidCredential = errors.New("credential carries no user identity")
	// ErrNotAuthenticated is returned by stores when an operation needs an
	// identity and nobody is signed in.
	ErrNotAuthenticated = errors.New("no user is signed in")
)

// Credential is the opaque handoff from the platform sign-in flow. The
// backend knows users only by this identifier.
type Credential struct {
	UserID string
}

// Session is safe for concurrent use: stores on any goroutine read the
// latest identity, and updates are atomic with respect to those reads.
type Session struct {
	mu            sync.RWMutex
	userID        string
	authenticated bool
	logger        *log.Logger
}

func New(logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Session{logger: logger.WithComponent(log.ComponentSession)}
}

// SignIn authenticates the session with the given credential. On failure the
// session stays unauthenticated and the error is surfaced to the caller.
func (s *Session) SignIn(cred Credential) error {
	return s.authenticate(cred, log.OpSignIn)
}

// SignUp registers and authenticates in one step; the backend treats an
// unknown identifier as a new user, so the client-side contract is the same
// as SignIn.
func (s *Session) SignUp(cred Credential) error {
	return s.authenticate(cred, "sign_up")
}

func (s *Session) authenticate(cred Credential, op string) error {
	id := strings.TrimSpace(cred.UserID)
	if id == "" {
		return ErrInvalidCredential
	}

	s.mu.Lock()
	s.userID = id
	s.authenticated = true
	s.mu.Unlock()

	s.logger.Info("Session authenticated", log.FieldOperation, op, log.FieldUserID, id)
	return nil
}

// SignOut clears identity and authentication state.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.userID = ""
	s.authenticated = false
	s.mu.Unlock()

	s.logger.Info("Session cleared", log.FieldOperation, log.OpSignOut)
}

// CurrentIdentity returns the live user identifier, and false when no user
// is signed in.
func (s *Session) CurrentIdentity() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID, s.authenticated
}
