package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/domain"
)

// Issuer signs session tokens with a process-wide HMAC key.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer builds an issuer from the configured signing secret.
func NewIssuer(secret string) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("signing secret is empty")
	}
	return &Issuer{secret: []byte(secret), ttl: domain.TokenValidity}, nil
}

// Claims describes the JWT payload.
type Claims struct {
	jwt.RegisteredClaims
}

// Issue builds and signs a token for subject, valid for 24h from now.
func (i *Issuer) Issue(subject string, now time.Time) (domain.Token, error) {
	expiresAt := now.Add(i.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return domain.Token{}, err
	}
	return domain.Token{
		ID:        claims.ID,
		Subject:   subject,
		Signed:    signed,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Parse validates a token as a downstream verifier would, evaluating expiry at now.
func (i *Issuer) Parse(tokenStr string, now time.Time) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
