package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gamelog/apiserver/types"
	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "gamelog-api"

// ErrInvalidToken is returned for any token that fails validation.
// Malformed input, a bad signature and expiry are deliberately not
// distinguished: callers treat all of them as "unauthenticated".
var ErrInvalidToken = errors.New("invalid token")

// Claims is the JWT claim set carried by issued tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and validates signed bearer tokens. It holds only the
// immutable signing key and TTL, so a single codec is safe for concurrent
// use across requests.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec constructs a codec from the signing secret and token TTL.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("signing secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	return &TokenCodec{
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

// Issue signs a token for the given subject and role, valid from now until
// now + TTL. The subject is an opaque account identifier.
func (c *TokenCodec) Issue(subject string, role types.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Validate parses and verifies a token, returning its subject and role.
// Any failure returns ErrInvalidToken.
func (c *TokenCodec) Validate(tokenString string) (string, types.Role, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, types.Role(claims.Role), nil
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}
