package jwthandling

import (
	"testing"
	"time"
)

func TestAdminUserTokenRoundTrip(t *testing.T) {
	token, err := GenerateNewAdminUserToken(time.Minute, "id-1", "admin", "admin", "test-sign-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, valid, err := ValidateAdminUserToken(token, "test-sign-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !valid {
		t.Fatal("token should be valid")
	}
	if claims.ID != "id-1" || claims.Username != "admin" || claims.Role != "admin" {
		t.Errorf("unexpected claims: %v", claims)
	}
}

func TestAdminUserTokenWrongKey(t *testing.T) {
	token, err := GenerateNewAdminUserToken(time.Minute, "id-1", "admin", "admin", "test-sign-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, valid, err := ValidateAdminUserToken(token, "other-key")
	if err == nil {
		t.Error("expected validation error")
	}
	if valid {
		t.Error("token should not be valid")
	}
}

func TestAdminUserTokenExpired(t *testing.T) {
	token, err := GenerateNewAdminUserToken(-time.Minute, "id-1", "admin", "admin", "test-sign-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, valid, err := ValidateAdminUserToken(token, "test-sign-key")
	if err == nil {
		t.Error("expected validation error")
	}
	if valid {
		t.Error("token should not be valid")
	}
}
