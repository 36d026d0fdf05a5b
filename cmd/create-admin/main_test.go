package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"catalog/internal/auth"
	"catalog/internal/database"
	"catalog/internal/logger"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParseOptions(t *testing.T) {
	t.Setenv("ADMIN_NAME", "From Env")

	opts, err := parseOptions([]string{"--email", "root@example.com", "--password", "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", opts.Email)
	assert.Equal(t, "From Env", opts.Name)
	assert.Equal(t, "secret1", opts.Password)

	_, err = parseOptions([]string{"--email", "root@example.com", "--password", "a", "--password-hash", "b"})
	assert.ErrorContains(t, err, "mutually exclusive")

	_, err = parseOptions([]string{"--email", "root@example.com", "--password-hash", "plain"})
	assert.ErrorContains(t, err, "not a bcrypt hash")

	t.Setenv("ADMIN_NAME", "")
	_, err = parseOptions(nil)
	assert.ErrorContains(t, err, "--email is required")
	assert.ErrorContains(t, err, "--name is required")
}

func TestRun(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	// keeps the shared in-memory database alive between runs
	keep, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(keep) })

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info")
	opts := &options{
		Email:       "root@example.com",
		Name:        "Root",
		Password:    "secret1",
		DBDriver:    "sqlite",
		DatabaseDSN: dsn,
		BcryptCost:  bcrypt.MinCost,
	}

	require.NoError(t, run(context.Background(), opts, log))
	assert.Contains(t, buf.String(), "admin created")

	users := repositories.NewGORMUserRepository(keep)
	user, err := users.GetByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, 1, user.SessionVersion)

	hash, err := auth.NewPasswordHasher(bcrypt.MinCost).Hash("rotated")
	require.NoError(t, err)
	opts.Password = ""
	opts.PasswordHash = hash
	require.NoError(t, run(context.Background(), opts, log))
	assert.Contains(t, buf.String(), "admin updated")

	user, err = users.GetByEmail(context.Background(), "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, user.SessionVersion)
	require.NotNil(t, user.Password)
	assert.Equal(t, hash, *user.Password)
}
