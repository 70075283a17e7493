package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "slotify", time.Hour)

	signed, err := issuer.Issue("user-123", "bella-salon", []string{RoleManager})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := issuer.Verify(signed)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-123" {
		t.Errorf("expected subject user-123, got %s", claims.Subject)
	}
	if claims.Tenant != "bella-salon" {
		t.Errorf("expected tenant bella-salon, got %s", claims.Tenant)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != RoleManager {
		t.Errorf("unexpected roles: %v", claims.Roles)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", "slotify", time.Hour)
	other := NewTokenIssuer("secret-b", "slotify", time.Hour)

	signed, err := issuer.Issue("user-123", "bella-salon", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := other.Verify(signed); err == nil {
		t.Error("token signed with a different secret should not verify")
	}
}

func TestVerify_WrongIssuer(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "someone-else", time.Hour)
	verifier := NewTokenIssuer("test-secret", "slotify", time.Hour)

	signed, err := issuer.Issue("user-123", "bella-salon", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.Verify(signed); err == nil {
		t.Error("token from a different issuer should not verify")
	}
}

func TestVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "slotify", -time.Minute)

	signed, err := issuer.Issue("user-123", "bella-salon", nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := issuer.Verify(signed); err == nil {
		t.Error("expired token should not verify")
	}
}

func TestVerify_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", "slotify", time.Hour)
	if _, err := issuer.Verify("not.a.token"); err == nil {
		t.Error("garbage input should not verify")
	}
}
