package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, tampered and expired tokens
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the JWT payload of a session token
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Signer mints and verifies HS256 session tokens
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a Signer with the given HMAC secret and validity window
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the validity window of issued tokens
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// Sign issues a token whose subject is userID
func (s *Signer) Sign(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify returns the user id carried by a valid token
func (s *Signer) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.UserID == "" || claims.UserID != claims.Subject {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
