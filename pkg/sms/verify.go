package sms

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifyCallback verifies a delivery-callback signature from the SMS
// gateway. Signature header is base64(HMAC_SHA256(body)).
func VerifyCallback(body []byte, sigHeader string, secret string) bool {
	if sigHeader == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sigHeader))
}
