package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mkravchenko/sessiongate/internal/apperrors"
)

const (
	defaultCookieName    = "sessiongate"
	defaultSigningMethod = "HS256"
	defaultSessionTTL    = 24 * time.Hour
)

type sessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// Cookie manager config with sensible defaults
type CookieConfig struct {
	// Secret key to sign the session cookie
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Cookie name and session lifetime
	// If not set than default is used
	Name string
	TTL  time.Duration
}

// CookieManager carries the opaque session ID between requests inside a
// signed cookie. The cookie belongs to the hosting application and proves
// nothing to the identity API, it only locates the token record.
type CookieManager struct {
	key  string
	alg  jwt.SigningMethod
	name string
	ttl  time.Duration
}

func NewCookieManager(cfg CookieConfig) (*CookieManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}
	if cfg.Name == "" {
		cfg.Name = defaultCookieName
	}
	if cfg.TTL == 0 {
		cfg.TTL = defaultSessionTTL
	}

	return &CookieManager{
		key:  cfg.SecretKey,
		alg:  jwt.GetSigningMethod(cfg.Alg),
		name: cfg.Name,
		ttl:  cfg.TTL,
	}, nil
}

// Issue signs the session ID into a fresh cookie
func (m *CookieManager) Issue(sessionID string) (*http.Cookie, error) {
	now := time.Now().Truncate(time.Second)

	token := jwt.NewWithClaims(
		m.alg,
		sessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			},
			SessionID: sessionID,
		},
	)
	signed, err := token.SignedString([]byte(m.key))
	if err != nil {
		return nil, fmt.Errorf("error while signing session cookie. Err: %w", err)
	}

	return &http.Cookie{
		Name:     m.name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}, nil
}

// SessionID extracts and verifies the session ID from the request cookie
func (m *CookieManager) SessionID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(m.name)
	if err != nil {
		return "", apperrors.ErrNoSessionCookie
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(
		cookie.Value,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.key), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
	)
	if err != nil || claims.SessionID == "" {
		return "", apperrors.ErrNoSessionCookie
	}

	return claims.SessionID, nil
}

// Clear returns a cookie that makes the browser drop the session
func (m *CookieManager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
