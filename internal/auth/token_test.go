package auth

import (
	"testing"
	"time"
)

func TestIssueAndVerifySessionToken(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s, err := IssueSessionToken("user-42", "faculty", secret, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := VerifySessionToken(s, secret, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.UserID != "user-42" {
		t.Fatalf("user id mismatch: %q", got.UserID)
	}
	if got.Role != "faculty" {
		t.Fatalf("role mismatch: %q", got.Role)
	}
}

func TestVerifySessionToken_Expired(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	s, err := IssueSessionToken("user-42", "faculty", secret, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := VerifySessionToken(s, secret, now.Add(13*time.Hour)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerifySessionToken_WrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s, err := IssueSessionToken("user-42", "faculty", "secret-a", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := VerifySessionToken(s, "secret-b", now); err == nil {
		t.Fatalf("expected signature error")
	}
}
