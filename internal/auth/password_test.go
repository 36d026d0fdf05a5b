package auth_test

import (
	"testing"

	"catalog/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", hash)
	assert.True(t, auth.IsHash(hash))
	assert.True(t, hasher.Compare(hash, "password123"))
	assert.False(t, hasher.Compare(hash, "password124"))
	assert.False(t, hasher.Compare("not-a-hash", "password123"))

	again, err := hasher.Hash("password123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	hash, err := auth.NewPasswordHasher(99).Hash("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, auth.DefaultCost, cost)
	assert.False(t, auth.IsHash("plaintext"))
}
