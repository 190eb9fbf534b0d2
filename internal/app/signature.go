package app

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Verifier checks webhook authenticity with a hex-encoded HMAC-SHA256 over
// the raw request body. An empty secret disables the check entirely: every
// request passes. That default is meant for development; set a secret in
// production.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return v.secret != ""
}

// Verify compares the provided signature against HMAC-SHA256(secret, body)
// in constant time. With no secret configured it always returns true.
func (v *Verifier) Verify(body []byte, signature string) bool {
	if v.secret == "" {
		return true
	}
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
