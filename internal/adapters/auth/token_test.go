package auth

import (
	"errors"
	"testing"
	"time"

	"conferencesessions/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_Issue(t *testing.T) {
	secret := "test-secret"
	expiry := 24 * time.Hour
	signer := NewJWT(secret, expiry)

	token, err := signer.Issue("user-123", "u@example.com", []string{"organizer", "attendee"}, expiry)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Parse and verify claims
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, []string{"organizer", "attendee"}, claims.Roles)
}

func TestJWT_Verify(t *testing.T) {
	signer := NewJWT("test-secret", time.Hour)
	other := NewJWT("other-secret", time.Hour)

	valid, err := signer.Issue("user-123", "u@example.com", nil, 0)
	require.NoError(t, err)
	foreign, err := other.Issue("user-123", "u@example.com", nil, time.Hour)
	require.NoError(t, err)
	expiredClaims := jwtClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	reallyExpired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expiredClaims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantID  string
		wantErr bool
	}{
		{name: "valid token", token: valid, wantID: "user-123"},
		{name: "wrong secret", token: foreign, wantErr: true},
		{name: "expired", token: reallyExpired, wantErr: true},
		{name: "garbage", token: "not-a-jwt", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := signer.Verify(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrUnauthorized))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
