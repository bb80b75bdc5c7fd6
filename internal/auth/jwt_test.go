package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeline/storeline-golang/internal/models"
)

var testSecret = []byte("test-secret-key")

func TestTokenRoundTrip(t *testing.T) {
	identity := Identity{ID: 42, Email: "user@example.com", Role: models.RoleCustomer}

	token, err := GenerateToken(testSecret, identity)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := ValidateToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, identity, got)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, Identity{ID: 1, Email: "a@b.c", Role: models.RoleCustomer})
	require.NoError(t, err)

	_, err = ValidateToken([]byte("a-different-secret"), token)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken(testSecret, "not-a-token")
	assert.Error(t, err)
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, Identity{Role: models.RoleAdmin}.IsAdmin())
	assert.False(t, Identity{Role: models.RoleCustomer}.IsAdmin())
	assert.False(t, Identity{}.IsAdmin())
}
