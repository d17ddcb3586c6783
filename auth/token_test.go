package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := NewTokenService([]byte("test-signing-key"), time.Hour)

	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("issue: unexpected error: %v", err)
	}

	subject, err := svc.ExtractSubject(token)
	if err != nil {
		t.Fatalf("extract subject: %v", err)
	}
	if subject != "alice" {
		t.Fatalf("expected subject alice, got %q", subject)
	}

	if !svc.Validate(token, "alice") {
		t.Fatal("expected token to validate for alice")
	}
	if svc.Validate(token, "bob") {
		t.Fatal("token must not validate for a different subject")
	}
}

func TestTokenService_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	svc := NewTokenService([]byte("test-signing-key"), time.Hour)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(59 * time.Minute) }
	if !svc.Validate(token, "alice") {
		t.Fatal("token should be valid at t0+59m")
	}
	expired, err := svc.IsExpired(token)
	if err != nil {
		t.Fatalf("is expired: %v", err)
	}
	if expired {
		t.Fatal("token should not be expired at t0+59m")
	}

	svc.now = func() time.Time { return issuedAt.Add(61 * time.Minute) }
	if svc.Validate(token, "alice") {
		t.Fatal("token should be rejected at t0+61m")
	}
	expired, err = svc.IsExpired(token)
	if err != nil {
		t.Fatalf("is expired: %v", err)
	}
	if !expired {
		t.Fatal("token should be expired at t0+61m")
	}

	// Expiry does not affect subject extraction.
	if subject, err := svc.ExtractSubject(token); err != nil || subject != "alice" {
		t.Fatalf("extract subject after expiry: subject=%q err=%v", subject, err)
	}
}

func TestTokenService_WrongKey(t *testing.T) {
	issuer := NewTokenService([]byte("key-one"), time.Hour)
	verifier := NewTokenService([]byte("key-two"), time.Hour)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := verifier.ExtractSubject(token); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for foreign key, got %v", err)
	}
	if verifier.Validate(token, "alice") {
		t.Fatal("token signed with a different key must not validate")
	}
}

func TestTokenService_Garbage(t *testing.T) {
	svc := NewTokenService([]byte("test-signing-key"), time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := svc.ExtractSubject(token); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("token %q: expected ErrTokenMalformed, got %v", token, err)
		}
		if svc.Validate(token, "alice") {
			t.Fatalf("token %q must not validate", token)
		}
	}
}
