package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	tm := NewTokenManager("test-secret", "habitboard")
	userID := uuid.New()

	token, err := tm.GenerateToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("expected user %s, got %s", userID, claims.UserID)
	}
	if claims.Issuer != "habitboard" {
		t.Errorf("expected issuer habitboard, got %s", claims.Issuer)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", "habitboard")
	token, err := tm.GenerateToken(uuid.New(), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	other := NewTokenManager("secret-b", "habitboard")
	if _, err := other.ValidateToken(token); err == nil {
		t.Errorf("token signed with a different secret must not validate")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	tm := NewTokenManager("test-secret", "habitboard")
	token, err := tm.GenerateToken(uuid.New(), -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := tm.ValidateToken(token); err == nil {
		t.Errorf("expired token must not validate")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	tm := NewTokenManager("test-secret", "habitboard")
	if _, err := tm.ValidateToken("not.a.token"); err == nil {
		t.Errorf("malformed token must not validate")
	}
}
