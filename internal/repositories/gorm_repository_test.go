package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"catalog/internal/apperrors"
	"catalog/internal/database"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func TestGORMUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(openTestDB(t))

	alice := &models.User{Name: "Alice", Email: "alice@example.com"}
	require.NoError(t, repo.Create(ctx, alice))
	assert.NotEmpty(t, alice.ID)
	assert.Equal(t, models.RoleUser, alice.Role)
	assert.Equal(t, 1, alice.SessionVersion)

	bob := &models.User{Name: "Bob", Email: "bob@example.com", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(ctx, bob))

	err := repo.Create(ctx, &models.User{Name: "Other", Email: "alice@example.com"})
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "got %v", err)

	found, err := repo.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, found.ID)
	assert.Equal(t, models.RoleAdmin, found.Role)

	users, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Bob", users[0].Name)
	assert.Equal(t, "Alice", users[1].Name)

	alice.Name = "Alice Liddell"
	alice.SessionVersion = 2
	require.NoError(t, repo.Update(ctx, alice))
	reloaded, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", reloaded.Name)
	assert.Equal(t, 2, reloaded.SessionVersion)

	alice.Email = "bob@example.com"
	err = repo.Update(ctx, alice)
	assert.True(t, errors.Is(err, apperrors.ErrConflict), "got %v", err)

	require.NoError(t, repo.Delete(ctx, alice.ID))
	_, err = repo.GetByID(ctx, alice.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, alice.ID), apperrors.ErrNotFound))
}

func TestGORMProductRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := repositories.NewGORMUserRepository(db)
	repo := repositories.NewGORMProductRepository(db)

	owner := &models.User{Name: "Owner", Email: "owner@example.com"}
	require.NoError(t, users.Create(ctx, owner))

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tea := &models.Product{Name: "Tea", Ingredients: "<b>Water</b>", CreatedByID: owner.ID, CreatedAt: base}
	coffee := &models.Product{Name: "Coffee", Ingredients: "<p>Beans</p>", CreatedByID: owner.ID, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, tea))
	require.NoError(t, repo.Create(ctx, coffee))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Coffee", all[0].Name, "newest first")

	latest, err := repo.GetLatestByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, coffee.ID, latest.ID)

	_, err = repo.GetLatestByOwner(ctx, "nobody")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	fetched, err := repo.GetByID(ctx, tea.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.CreatedBy)
	assert.Equal(t, "Owner", fetched.CreatedBy.Name)

	tea.Name = "Green Tea"
	require.NoError(t, repo.Update(ctx, tea))
	fetched, err = repo.GetByID(ctx, tea.ID)
	require.NoError(t, err)
	assert.Equal(t, "Green Tea", fetched.Name)
	assert.Equal(t, "<b>Water</b>", fetched.Ingredients)

	err = repo.Update(ctx, &models.Product{ID: "missing", Name: "x", Ingredients: "y"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	require.NoError(t, repo.Delete(ctx, tea.ID))
	assert.True(t, errors.Is(repo.Delete(ctx, tea.ID), apperrors.ErrNotFound))
	_, err = repo.GetByID(ctx, tea.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
