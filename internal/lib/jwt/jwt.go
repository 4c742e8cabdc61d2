package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the signature checked out but the token is past its exp claim.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers everything else: bad signature, wrong algorithm, garbage input.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the payload carried by every token the service signs.
// Access and refresh tokens share the same shape; only the signing
// secret and the TTL tell them apart.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and verifies the two token kinds.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (m *Manager) AccessTTL() time.Duration { return m.accessTTL }

func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

// NewAccessToken signs a short-lived token for the given email.
func (m *Manager) NewAccessToken(email string) (string, error) {
	return sign(email, m.accessSecret, m.accessTTL)
}

// NewRefreshToken signs a long-lived token for the given email.
func (m *Manager) NewRefreshToken(email string) (string, error) {
	return sign(email, m.refreshSecret, m.refreshTTL)
}

// ParseAccess verifies an access token and returns its claims.
func (m *Manager) ParseAccess(token string) (Claims, error) {
	return parse(token, m.accessSecret)
}

// ParseRefresh verifies a refresh token and returns its claims.
// Callers must treat ErrTokenExpired and ErrTokenInvalid differently:
// an expired refresh token has to be evicted from the session store,
// a forged one must not touch it.
func (m *Manager) ParseRefresh(token string) (Claims, error) {
	return parse(token, m.refreshSecret)
}

func sign(email string, secret []byte, ttl time.Duration) (string, error) {
	const op = "jwt.sign"

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

func parse(tokenStr string, secret []byte) (Claims, error) {
	const op = "jwt.parse"

	var claims Claims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%s: unexpected signing method", op)
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}

	if !token.Valid {
		return Claims{}, ErrTokenInvalid
	}

	return claims, nil
}
