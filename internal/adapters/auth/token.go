package auth

import (
	"errors"
	"fmt"
	"time"

	"conferencesessions/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// JWT signs and verifies HS256 tokens with a shared secret. It implements both
// domain.TokenIssuer and domain.TokenVerifier so the middleware and the login services
// share one key.
type JWT struct {
	secret []byte
	expiry time.Duration
}

// NewJWT returns a JWT signer/verifier. A zero expiry passed to Issue falls back to defaultExpiry.
func NewJWT(secret string, defaultExpiry time.Duration) *JWT {
	return &JWT{secret: []byte(secret), expiry: defaultExpiry}
}

// Issue signs a token for userID.
func (j *JWT) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = j.expiry
	}
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses the token, checks the signature and expiry and returns the subject.
func (j *JWT) Verify(tokenString string) (string, error) {
	var claims jwtClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, errors.New("token has no subject"))
	}
	return claims.Subject, nil
}
