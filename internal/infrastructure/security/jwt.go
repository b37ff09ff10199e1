package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/movielist-api/internal/core/domain"
)

// Claims carries the user id; nothing else about the user goes in the token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// JWTIssuer implements ports.TokenIssuer with HS256.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty JWT secret", domain.ErrServerMisconfigured)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%w: non-positive token ttl", domain.ErrServerMisconfigured)
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (j *JWTIssuer) Issue(userID string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the user id carried by a valid, unexpired token. Every
// failure collapses to domain.ErrUnauthenticated.
func (j *JWTIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return j.secret, nil
	}, jwt.WithTimeFunc(j.now), jwt.WithExpirationRequired())
	if err != nil || !tkn.Valid {
		return "", errors.Join(domain.ErrUnauthenticated, err)
	}
	if claims.UserID == "" {
		return "", fmt.Errorf("%w: token has no user id", domain.ErrUnauthenticated)
	}
	return claims.UserID, nil
}
