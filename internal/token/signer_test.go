package token

import (
	"strings"
	"testing"
	"time"
)

func newTestSigner(ttl time.Duration) *Signer {
	return NewSigner("test-secret", "https://vault.example.com|invite", ttl)
}

func TestSignAndParseInvite(t *testing.T) {
	s := newTestSigner(time.Hour)

	signed, err := s.SignInvite("user-1", "a@x.com", "org-1", "member-1")
	if err != nil {
		t.Fatalf("SignInvite failed: %v", err)
	}
	if strings.Count(signed, ".") != 2 {
		t.Errorf("expected a three-part JWT, got %q", signed)
	}

	claims, err := s.ParseInvite(signed)
	if err != nil {
		t.Fatalf("ParseInvite failed: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected subject user-1, got %q", claims.Subject)
	}
	if claims.Email != "a@x.com" {
		t.Errorf("expected email a@x.com, got %q", claims.Email)
	}
	if claims.OrgID != "org-1" || claims.MemberID != "member-1" {
		t.Errorf("expected org/member ids to round-trip, got %q/%q", claims.OrgID, claims.MemberID)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected exp claim to be set")
	}
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != time.Hour {
		t.Errorf("expected 1h validity window, got %v", ttl)
	}
}

func TestParseInvite_WrongKey(t *testing.T) {
	signed, err := newTestSigner(time.Hour).SignInvite("user-1", "a@x.com", "org-1", "member-1")
	if err != nil {
		t.Fatalf("SignInvite failed: %v", err)
	}

	other := NewSigner("different-secret", "https://vault.example.com|invite", time.Hour)
	if _, err := other.ParseInvite(signed); err == nil {
		t.Error("expected parse to fail with a different secret")
	}
}

func TestParseInvite_WrongIssuer(t *testing.T) {
	attacker := NewSigner("test-secret", "https://evil.example.com|invite", time.Hour)
	signed, err := attacker.SignInvite("user-1", "a@x.com", "org-1", "member-1")
	if err != nil {
		t.Fatalf("SignInvite failed: %v", err)
	}

	if _, err := newTestSigner(time.Hour).ParseInvite(signed); err == nil {
		t.Error("expected parse to fail for a foreign issuer")
	}
}

func TestParseInvite_Expired(t *testing.T) {
	s := newTestSigner(time.Hour)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	signed, err := s.SignInvite("user-1", "a@x.com", "org-1", "member-1")
	if err != nil {
		t.Fatalf("SignInvite failed: %v", err)
	}

	verifier := newTestSigner(time.Hour)
	if _, err := verifier.ParseInvite(signed); err == nil {
		t.Error("expected parse to fail for an expired token")
	}
}

func TestSignInvite_NoSecret(t *testing.T) {
	s := NewSigner("", "iss", time.Hour)
	if _, err := s.SignInvite("u", "e", "o", "m"); err == nil {
		t.Error("expected error when no secret is configured")
	}
}
