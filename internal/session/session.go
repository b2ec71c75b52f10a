package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/craftline/cartengine/pkg/enums"
	"github.com/craftline/cartengine/pkg/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the subset of the backend's access token the engine reads.
// The engine is a client; it never verifies the signature — the server is
// the verifier. Claims are only used for display identity and a cheap
// expiry check before issuing network calls.
type Claims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

var claimsParser = jwt.NewParser(jwt.WithoutClaimsValidation())

// Session holds the bearer credential for the current storefront user.
// It is passed explicitly into the synchronizer and assembler; there is
// no ambient global credential state.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims *Claims
	now    func() time.Time
}

// New returns an unauthenticated session.
func New() *Session {
	return &Session{now: time.Now}
}

// SetToken installs a bearer token, decoding its claims. An undecodable
// token is rejected and the previous credential is kept.
func (s *Session) SetToken(token string) error {
	claims := &Claims{}
	if _, _, err := claimsParser.ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("decode access token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.claims = claims
	return nil
}

// Clear drops the credential, returning the session to unauthenticated.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.claims = nil
}

// Token returns the bearer token when an unexpired credential is present.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validLocked() {
		return "", false
	}
	return s.token, true
}

// User returns the profile decoded from the credential.
func (s *Session) User() (*types.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.validLocked() {
		return nil, false
	}
	return &types.User{ID: s.claims.UserID, Role: s.claims.Role}, true
}

// Authenticated reports whether an unexpired credential is present.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked()
}

func (s *Session) validLocked() bool {
	if s.token == "" || s.claims == nil {
		return false
	}
	if exp := s.claims.ExpiresAt; exp != nil && !exp.After(s.now()) {
		return false
	}
	return true
}
