package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
	TokenTypeAdmin   TokenType = "admin"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

type Claims struct {
	UserID    string    `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	Type      TokenType `json:"type"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 tokens with a single shared secret.
type JWTManager struct {
	key []byte
	now func() time.Time
}

func NewJWTManager(secret string) *JWTManager {
	return &JWTManager{key: []byte(secret), now: time.Now}
}

// WithClock returns a copy of the manager that reads time from now.
func (m *JWTManager) WithClock(now func() time.Time) *JWTManager {
	return &JWTManager{key: m.key, now: now}
}

func (m *JWTManager) CreateToken(claims Claims, ttl time.Duration) (string, error) {
	if len(m.key) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	now := m.now()
	claims.Subject = claims.UserID
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.IssuedAt = jwt.NewNumericDate(now)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(m.key)
}

func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateTokenOfType additionally rejects tokens minted for another purpose.
func (m *JWTManager) ValidateTokenOfType(tokenString string, want TokenType) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != want {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
