package shared

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// CSRFFormField is the form field name carrying the CSRF token.
const CSRFFormField = "csrf_token"

// CSRFManager issues and verifies CSRF tokens bound to the session identity.
// Tokens are derived from a server secret, so no per-session storage is needed.
type CSRFManager struct {
	secret []byte
}

// NewCSRFManager returns a CSRFManager using the provided secret key.
func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// EnsureToken returns the CSRF token for the session.
func (m *CSRFManager) EnsureToken(sess Session) string {
	return m.tokenFor(sess)
}

// VerifyToken compares the supplied token with the expected session token.
func (m *CSRFManager) VerifyToken(sess Session, token string) error {
	if token == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(m.tokenFor(sess)), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

func (m *CSRFManager) tokenFor(sess Session) string {
	identity := sess.UserID
	if identity == "" {
		identity = "anonymous"
	}
	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(identity))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
