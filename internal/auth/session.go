// Package auth holds the engine's authenticated session, established from a
// backend-issued JWT. The engine never creates accounts; it only proves who
// the local user is to the gateway.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when the session token cannot be validated.
var ErrInvalidToken = errors.New("auth: invalid session token")

// Session identifies the authenticated local user.
type Session struct {
	UserID      uint
	Email       string
	DisplayName string

	token string
}

// Token returns the raw bearer token for remote calls.
func (s *Session) Token() string {
	return s.token
}

// FromToken validates an HMAC-signed session token and extracts the actor's
// identity claims.
func FromToken(token, secret string) (*Session, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	userID, err := subjectID(claims)
	if err != nil {
		return nil, err
	}

	sess := &Session{
		UserID: userID,
		token:  token,
	}
	if email, ok := claims["email"].(string); ok {
		sess.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		sess.DisplayName = name
	}
	return sess, nil
}

// NewToken signs a session token. Used by local tooling and tests; real
// tokens come from the backend's auth service.
func NewToken(userID uint, email, name, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   fmt.Sprintf("%d", userID),
		"email": email,
		"name":  name,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// subjectID reads the user ID from the sub claim, accepting both string and
// numeric encodings.
func subjectID(claims jwt.MapClaims) (uint, error) {
	switch sub := claims["sub"].(type) {
	case string:
		var id uint
		if _, err := fmt.Sscanf(sub, "%d", &id); err != nil || id == 0 {
			return 0, ErrInvalidToken
		}
		return id, nil
	case float64:
		if sub <= 0 {
			return 0, ErrInvalidToken
		}
		return uint(sub), nil
	default:
		return 0, ErrInvalidToken
	}
}
