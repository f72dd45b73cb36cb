package jwt

import (
	"testing"
	"time"

	"clinic-frontdesk/config"

	"github.com/google/uuid"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: time.Hour})
	userID, clinicID := uuid.New(), uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(userID, clinicID, "receptionist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != userID || claims.ClinicID != clinicID || claims.Role != "receptionist" || claims.TokenID != tokenID {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestJWTService_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService(config.JWTConfig{Secret: "a", AccessExpiry: time.Hour})
	verifier := NewJWTService(config.JWTConfig{Secret: "b", AccessExpiry: time.Hour})

	token, _, err := issuer.GenerateAccessToken(uuid.New(), uuid.New(), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestJWTService_RejectsMissingClinic(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: time.Hour})

	token, _, err := svc.GenerateAccessToken(uuid.New(), uuid.Nil, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected error for token without clinic")
	}
}

func TestJWTService_RejectsExpired(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s", AccessExpiry: -time.Minute})

	token, _, err := svc.GenerateAccessToken(uuid.New(), uuid.New(), "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestAccessTokenKey(t *testing.T) {
	id := uuid.MustParse("11111111-1111-4111-8111-111111111111")
	if got := AccessTokenKey(id, "abc"); got != "access_token:11111111-1111-4111-8111-111111111111:abc" {
		t.Errorf("unexpected key %s", got)
	}
}
