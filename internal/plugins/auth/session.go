package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie that carries the signed session.
const SessionCookieName = "__session"

// DefaultSessionTTL is how long a session cookie stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// minSecretLength is the shortest accepted signing secret in bytes.
const minSecretLength = 32

// ErrSecretTooShort is returned by NewSessionStore for weak secrets.
var ErrSecretTooShort = fmt.Errorf("session secret must be at least %d bytes", minSecretLength)

// SessionConfig configures a SessionStore.
type SessionConfig struct {
	// Secret is the HMAC key that signs every session.
	Secret []byte

	// TTL bounds both the token expiry and the cookie Max-Age.
	TTL time.Duration

	// Secure marks the cookie HTTPS-only. Enabled in production.
	Secure bool
}

// sessionClaims is the signed payload of a session cookie.
type sessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// SessionStore issues and verifies session cookies. All state lives in the
// cookie itself: the server keeps nothing, so a session cannot be revoked
// before it expires except by the browser dropping the cookie.
type SessionStore struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewSessionStore validates cfg and returns a store. A zero TTL means
// DefaultSessionTTL.
func NewSessionStore(cfg SessionConfig) (*SessionStore, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		secret: cfg.Secret,
		ttl:    ttl,
		secure: cfg.Secure,
		now:    time.Now,
	}, nil
}

// Create signs a session for userID and returns the cookie to set.
func (s *SessionStore) Create(userID string) (*http.Cookie, error) {
	if userID == "" {
		return nil, errors.New("creating session: empty user id")
	}

	now := s.now()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing session: %w", err)
	}

	return s.cookie(token, int(s.ttl.Seconds()), now.Add(s.ttl)), nil
}

// Read verifies a cookie value and returns the user ID it carries. Missing,
// malformed, tampered, foreign-signed and expired values all report
// ok=false. Read never fails loudly: a bad cookie is just no session.
func (s *SessionStore) Read(value string) (userID string, ok bool) {
	if value == "" {
		return "", false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(value, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", false
	}
	return claims.UserID, true
}

// ReadRequest reads the session cookie from r.
func (s *SessionStore) ReadRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	return s.Read(c.Value)
}

// Destroy returns a cookie that makes the browser discard the session.
func (s *SessionStore) Destroy() *http.Cookie {
	return s.cookie("", -1, time.Unix(0, 0))
}

func (s *SessionStore) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
