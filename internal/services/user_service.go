package services

import (
	"context"
	"errors"

	"catalog/internal/apperrors"
	"catalog/internal/auth"
	"catalog/internal/events"
	"catalog/internal/models"
	"catalog/internal/repositories"
)

// CreateUserInput carries the fields of a new account.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

// UpdateUserInput carries the fields to change; nil fields are left as is.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *models.Role
}

// UserService handles account administration.
type UserService struct {
	users     repositories.UserRepository
	hasher    *auth.PasswordHasher
	versions  *SessionVersions
	publisher events.Publisher
}

// NewUserService creates a new UserService.
func NewUserService(users repositories.UserRepository, hasher *auth.PasswordHasher, versions *SessionVersions,
	publisher events.Publisher) *UserService {
	return &UserService{
		users:     users,
		hasher:    hasher,
		versions:  versions,
		publisher: publisher,
	}
}

// List returns every user ordered by name descending.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.GetAll(ctx)
}

// Create adds an account. A taken email is a Conflict and leaves the
// existing account untouched.
func (s *UserService) Create(ctx context.Context, actorID string, in CreateUserInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Name:     in.Name,
		Email:    email,
		Password: &hash,
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	publish(ctx, s.publisher, events.New(events.UserCreated, user.ID, actorID))
	return user, nil
}

// Update applies in to the user with id. Changing the password or the role
// revokes every session the user holds.
func (s *UserService) Update(ctx context.Context, actorID, id string, in UpdateUserInput) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	revoke := false
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = &hash
		revoke = true
	}
	if in.Role != nil && *in.Role != user.Role {
		user.Role = *in.Role
		revoke = true
	}
	if revoke {
		user.SessionVersion++
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	if revoke {
		storeVersion(ctx, s.versions, user.ID, user.SessionVersion)
		publish(ctx, s.publisher, events.New(events.SessionRevoked, user.ID, actorID))
	}
	publish(ctx, s.publisher, events.New(events.UserUpdated, user.ID, actorID))
	return user, nil
}

// Delete removes the user with id. Its outstanding sessions stop resolving.
func (s *UserService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	forget(ctx, s.versions, id)
	publish(ctx, s.publisher, events.New(events.UserDeleted, id, actorID))
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return apperrors.Conflict("user with email %s already exists", email)
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	default:
		return err
	}
}

// EnsureAdmin creates or updates the account with email so that it holds the
// ADMIN role and passwordHash. An existing account has its sessions revoked.
// It reports whether the account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, passwordHash string) (*models.User, bool, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		user = &models.User{Name: name, Email: email, Password: &passwordHash, Role: models.RoleAdmin}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, false, err
		}
		publish(ctx, s.publisher, events.New(events.UserCreated, user.ID, ""))
		return user, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	user.Name = name
	user.Password = &passwordHash
	user.Role = models.RoleAdmin
	user.SessionVersion++
	if err := s.users.Update(ctx, user); err != nil {
		return nil, false, err
	}
	storeVersion(ctx, s.versions, user.ID, user.SessionVersion)
	publish(ctx, s.publisher, events.New(events.SessionRevoked, user.ID, ""))
	return user, false, nil
}
