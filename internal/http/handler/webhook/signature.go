package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrSignature is returned when a webhook signature is missing or invalid.
var ErrSignature = errors.New("invalid webhook signature")

// VerifySignature checks providedHash against
// hex(HMAC-SHA256(secret, "{version}:{timestamp}:{body}")) in constant time.
func VerifySignature(secret, version, timestamp string, body []byte, providedHash string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(version + ":" + timestamp + ":"))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(providedHash)))
}

// Sign returns the signature header value for body, in the "v0=<hex>" form.
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("v0:" + timestamp + ":"))
	mac.Write(body)
	return "v0=" + hex.EncodeToString(mac.Sum(nil))
}

// splitSignature splits "v0=<hex>" on the first "=".
func splitSignature(header string) (version, hash string, ok bool) {
	version, hash, ok = strings.Cut(header, "=")
	if !ok || version == "" || hash == "" {
		return "", "", false
	}
	return version, hash, true
}
