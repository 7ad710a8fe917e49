package sms

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyCallback(t *testing.T) {
	body := []byte(`{"messageId":"m-1","status":"delivered"}`)
	secret := "callback-secret"

	if !VerifyCallback(body, sign(body, secret), secret) {
		t.Fatalf("valid signature rejected")
	}
	if VerifyCallback(body, sign(body, "wrong"), secret) {
		t.Fatalf("signature from wrong secret accepted")
	}
	if VerifyCallback(body, "", secret) {
		t.Fatalf("empty signature accepted")
	}
	if VerifyCallback(body, sign(body, secret), "") {
		t.Fatalf("empty secret accepted")
	}
}
