package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
)

// NewCSRFToken returns a random token bound to a session at creation time.
func NewCSRFToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read only fails when the OS entropy source is broken.
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// ValidCSRFToken compares a submitted token against the session's token in
// constant time.
func ValidCSRFToken(sess *Session, submitted string) bool {
	if sess == nil || sess.CSRFToken == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(sess.CSRFToken), []byte(submitted)) == 1
}
