package auth

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var saltPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestBcryptHasher_GenerateSalt(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		salt, err := h.GenerateSalt()
		require.NoError(t, err)
		assert.Regexp(t, saltPattern, salt)
		assert.False(t, seen[salt], "salts must not repeat")
		seen[salt] = true
	}
}

func TestBcryptHasher_OrganizerCredentials(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)
	otherSalt, err := h.GenerateSalt()
	require.NoError(t, err)

	const password = "zk-week-organizer"
	hash, err := h.Hash(salt, password)
	require.NoError(t, err)
	assert.NotContains(t, hash, password)

	tests := []struct {
		name     string
		hash     string
		salt     string
		password string
		wantErr  bool
	}{
		{"same password and salt", hash, salt, password, false},
		{"wrong password", hash, salt, "zk-week-attendee", true},
		{"salt of another account", hash, otherSalt, password, true},
		{"passport account without a password", "", "", password, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Compare(tt.hash, tt.salt, tt.password)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBcryptHasher_UsesConfiguredCost(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost + 1)
	hash, err := h.Hash("salt", "password123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

// bcrypt alone ignores input past 72 bytes; the sha256 pre-hash keeps long passphrases distinct.
func TestBcryptHasher_LongPassphrasesStayDistinct(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	prefix := strings.Repeat("a", 80)

	hash, err := h.Hash("salt", prefix+"-one")
	require.NoError(t, err)

	assert.NoError(t, h.Compare(hash, "salt", prefix+"-one"))
	assert.Error(t, h.Compare(hash, "salt", prefix+"-two"))
}
