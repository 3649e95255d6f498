package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "devmarks"

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid session token")

type sessionClaims struct {
	Sid   string `json:"sid"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenClaims is what a verified session token asserts.
type TokenClaims struct {
	SID    string
	UserID string
	Email  string
}

// Tokens signs and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
}

// NewTokens creates a token signer using secret as the HMAC key.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

// Sign returns a compact JWT for the session.
func (t *Tokens) Sign(sid, userID, email string, issuedAt, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		Sid:   sid,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns its claims.
func (t *Tokens) Parse(raw string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &sessionClaims{},
		func(tok *jwt.Token) (interface{}, error) {
			if tok.Method != jwt.SigningMethodHS256 {
				return nil, ErrInvalidToken
			}
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Sid == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &TokenClaims{SID: claims.Sid, UserID: claims.Subject, Email: claims.Email}, nil
}
