package shared

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the serialized session claims.
const SessionCookieName = "session"

// Role classifies what a logged-in principal may do.
type Role string

// Known roles.
const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleVoter Role = "voter"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleVoter:
		return true
	}
	return false
}

// Session holds the claims of an authenticated principal. The zero value is
// the anonymous session.
type Session struct {
	LoggedIn  bool   `json:"isLoggedIn"`
	UserID    string `json:"userId,omitempty"`
	Role      Role   `json:"role,omitempty"`
	Name      string `json:"name,omitempty"`
	StudentID string `json:"studentId,omitempty"`
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session {
	return Session{}
}

// IsAnonymous reports whether the session carries no usable identity.
// A session claiming to be logged in without a user ID counts as anonymous.
func (s Session) IsAnonymous() bool {
	return !s.LoggedIn || s.UserID == ""
}

// ErrMalformedSession indicates a cookie value that could not be decoded or
// whose signature did not verify. Callers degrade to the anonymous session.
var ErrMalformedSession = errors.New("malformed session cookie")

// SessionCodec serializes sessions to a signed, URL-safe cookie value.
// The payload is base64(JSON) followed by an HMAC-SHA256 signature so the
// value can be trusted without a store round-trip.
type SessionCodec struct {
	secret []byte
}

// NewSessionCodec returns a codec signing with the provided secret.
func NewSessionCodec(secret string) *SessionCodec {
	return &SessionCodec{secret: []byte(secret)}
}

// Encode serializes and signs the session. Encode and Decode round-trip.
func (c *SessionCodec) Encode(sess Session) (string, error) {
	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(data)
	return payload + "." + c.sign(payload), nil
}

// Decode verifies and parses a cookie value produced by Encode.
func (c *SessionCodec) Decode(value string) (Session, error) {
	payload, sig, ok := strings.Cut(value, ".")
	if !ok || payload == "" {
		return Anonymous(), ErrMalformedSession
	}
	if !hmac.Equal([]byte(c.sign(payload)), []byte(sig)) {
		return Anonymous(), ErrMalformedSession
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return Anonymous(), ErrMalformedSession
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Anonymous(), ErrMalformedSession
	}
	return sess, nil
}

func (c *SessionCodec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// SessionManager resolves sessions from request cookies and writes them back
// on login and logout. It performs no I/O and is safe for concurrent use from
// both the edge middleware and request handlers.
type SessionManager struct {
	codec      *SessionCodec
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		codec:      NewSessionCodec(secret),
		cookieName: SessionCookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Resolve returns the session for the request. It is total: a missing cookie,
// a malformed value, or a logged-in claim without a user ID all yield the
// anonymous session. A logged-in session without a valid role defaults to voter.
func (sm *SessionManager) Resolve(r *http.Request) Session {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return Anonymous()
	}
	sess, err := sm.codec.Decode(cookie.Value)
	if err != nil {
		return Anonymous()
	}
	if sess.IsAnonymous() {
		return Anonymous()
	}
	if !sess.Role.Valid() {
		sess.Role = RoleVoter
	}
	return sess
}

// Issue writes the session cookie for a freshly authenticated principal.
func (sm *SessionManager) Issue(w http.ResponseWriter, sess Session) error {
	value, err := sm.codec.Encode(sess)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sm.ttl),
	})
	return nil
}

// Clear expires the session cookie. Subsequent Resolve calls yield anonymous.
func (sm *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// Codec exposes the underlying codec for the login flow and tests.
func (sm *SessionManager) Codec() *SessionCodec {
	return sm.codec
}
