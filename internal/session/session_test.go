package session

import (
	"testing"
	"time"

	"github.com/craftline/cartengine/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func mintToken(t *testing.T, userID uuid.UUID, role enums.UserRole, expiresAt time.Time) string {
	t.Helper()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return signed
}

func TestNewSessionIsUnauthenticated(t *testing.T) {
	t.Parallel()

	s := New()
	if s.Authenticated() {
		t.Fatal("fresh session should not be authenticated")
	}
	if _, ok := s.Token(); ok {
		t.Fatal("fresh session should have no token")
	}
	if _, ok := s.User(); ok {
		t.Fatal("fresh session should have no user")
	}
}

func TestSetTokenDecodesClaims(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	s := New()
	if err := s.SetToken(mintToken(t, userID, enums.UserRoleCustomer, time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("set token: %v", err)
	}

	if !s.Authenticated() {
		t.Fatal("session should be authenticated")
	}
	user, ok := s.User()
	if !ok {
		t.Fatal("expected user")
	}
	if user.ID != userID {
		t.Fatalf("user id = %s, want %s", user.ID, userID)
	}
	if user.Role != enums.UserRoleCustomer {
		t.Fatalf("role = %s, want customer", user.Role)
	}
}

func TestSetTokenRejectsGarbage(t *testing.T) {
	t.Parallel()

	s := New()
	if err := s.SetToken(mintToken(t, uuid.New(), enums.UserRoleCustomer, time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.SetToken("not-a-jwt"); err == nil {
		t.Fatal("expected error for undecodable token")
	}
	if !s.Authenticated() {
		t.Fatal("previous credential should survive a rejected token")
	}
}

func TestExpiredTokenReadsAsUnauthenticated(t *testing.T) {
	t.Parallel()

	s := New()
	if err := s.SetToken(mintToken(t, uuid.New(), enums.UserRoleCustomer, time.Now().Add(-time.Minute))); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if s.Authenticated() {
		t.Fatal("expired credential should not authenticate")
	}
	if _, ok := s.Token(); ok {
		t.Fatal("expired credential should not yield a token")
	}
}

func TestClearDropsCredential(t *testing.T) {
	t.Parallel()

	s := New()
	if err := s.SetToken(mintToken(t, uuid.New(), enums.UserRoleAdmin, time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("set token: %v", err)
	}
	s.Clear()
	if s.Authenticated() {
		t.Fatal("cleared session should be unauthenticated")
	}
}
