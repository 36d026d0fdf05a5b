package database_test

import (
	"testing"

	"catalog/internal/database"
	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	db, err := database.Open("sqlite", "file:database_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.User{}))
	assert.True(t, db.Migrator().HasTable(&models.Product{}))
	assert.True(t, db.Migrator().HasIndex(&models.User{}, "Email"))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := database.Open("oracle", "dsn")
	assert.EqualError(t, err, `unsupported database driver "oracle"`)
}
