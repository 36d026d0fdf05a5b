package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"catalog/internal/apperrors"
	"catalog/internal/auth"
	"catalog/internal/events"
	"catalog/internal/models"
	"catalog/internal/oauth"
	"catalog/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

var testHasher = auth.NewPasswordHasher(bcrypt.MinCost)

func hashed(t *testing.T, password string) *string {
	t.Helper()
	h, err := testHasher.Hash(password)
	require.NoError(t, err)
	return &h
}

func newAuthService(t *testing.T, repo *MockUserRepository, pub events.Publisher) (*services.AuthService, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	svc, err := services.NewAuthService(repo, tokens, testHasher, services.NewSessionVersions(repo, nil), pub)
	require.NoError(t, err)
	return svc, tokens
}

func TestAuthService_IssueSession(t *testing.T) {
	repo := new(MockUserRepository)
	svc, tokens := newAuthService(t, repo, events.Noop{})

	user := &models.User{ID: "u1", Email: "a@example.com", Password: hashed(t, "secret1"), Role: models.RoleAdmin, SessionVersion: 3}
	repo.On("GetByEmail", mock.Anything, "a@example.com").Return(user, nil).Once()

	session, err := svc.IssueSession(context.Background(), " A@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user, session.User)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	claims, err := tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, 3, claims.Version)
	repo.AssertExpectations(t)
}

func TestAuthService_IssueSessionFailuresAreIndistinguishable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(repo *MockUserRepository)
	}{
		{"unknown email", func(repo *MockUserRepository) {
			repo.On("GetByEmail", mock.Anything, "a@example.com").Return(nil, apperrors.NotFound("user not found"))
		}},
		{"wrong password", func(repo *MockUserRepository) {
			repo.On("GetByEmail", mock.Anything, "a@example.com").
				Return(&models.User{ID: "u1", Email: "a@example.com", Password: hashed(t, "other-password"), Role: models.RoleUser}, nil)
		}},
		{"account without password", func(repo *MockUserRepository) {
			repo.On("GetByEmail", mock.Anything, "a@example.com").
				Return(&models.User{ID: "u1", Email: "a@example.com", Role: models.RoleUser}, nil)
		}},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setup(repo)
			svc, _ := newAuthService(t, repo, events.Noop{})

			session, err := svc.IssueSession(context.Background(), "a@example.com", "secret1")
			assert.Nil(t, session)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
			assert.Equal(t, apperrors.ErrInvalidCredentials, err)
			messages = append(messages, err.Error())
		})
	}
	require.Len(t, messages, 3)
	assert.Equal(t, messages[0], messages[1])
	assert.Equal(t, messages[1], messages[2])
}

func TestAuthService_IssueSessionRepositoryError(t *testing.T) {
	repo := new(MockUserRepository)
	svc, _ := newAuthService(t, repo, events.Noop{})
	repo.On("GetByEmail", mock.Anything, "a@example.com").Return(nil, errors.New("db down"))

	_, err := svc.IssueSession(context.Background(), "a@example.com", "secret1")
	assert.EqualError(t, err, "db down")
}

func TestAuthService_ResolveSession(t *testing.T) {
	repo := new(MockUserRepository)
	svc, tokens := newAuthService(t, repo, events.Noop{})

	user := &models.User{ID: "u1", Role: models.RoleUser, SessionVersion: 1}
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Role: models.RoleUser, SessionVersion: 1}, nil).Once()
	principal, err := svc.ResolveSession(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, &auth.Principal{UserID: "u1", Role: models.RoleUser}, principal)

	t.Run("revoked by version bump", func(t *testing.T) {
		repo.On("GetByID", mock.Anything, "u1").Return(&models.User{ID: "u1", Role: models.RoleAdmin, SessionVersion: 2}, nil).Once()
		_, err := svc.ResolveSession(context.Background(), token)
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("deleted user", func(t *testing.T) {
		repo.On("GetByID", mock.Anything, "u1").Return(nil, apperrors.NotFound("user not found")).Once()
		_, err := svc.ResolveSession(context.Background(), token)
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ResolveSession(context.Background(), "not-a-token")
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	})

	t.Run("foreign secret", func(t *testing.T) {
		forged, _, err := auth.NewTokenManager("other-secret", time.Hour).Issue(user)
		require.NoError(t, err)
		_, err = svc.ResolveSession(context.Background(), forged)
		assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	})
	repo.AssertExpectations(t)
}

func TestAuthService_IssueExternalSession(t *testing.T) {
	t.Run("existing account", func(t *testing.T) {
		repo := new(MockUserRepository)
		pub := &recordingPublisher{}
		svc, _ := newAuthService(t, repo, pub)
		existing := &models.User{ID: "u1", Email: "octo@example.com", Role: models.RoleAdmin, SessionVersion: 1}
		repo.On("GetByEmail", mock.Anything, "octo@example.com").Return(existing, nil).Once()

		session, err := svc.IssueExternalSession(context.Background(), &oauth.Profile{Email: "Octo@example.com", Name: "Octo"})
		require.NoError(t, err)
		assert.Equal(t, existing, session.User)
		assert.Empty(t, pub.types)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("first sign in creates a user", func(t *testing.T) {
		repo := new(MockUserRepository)
		pub := &recordingPublisher{}
		svc, _ := newAuthService(t, repo, pub)
		repo.On("GetByEmail", mock.Anything, "octo@example.com").Return(nil, apperrors.NotFound("user not found")).Once()
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Email == "octo@example.com" && u.Role == models.RoleUser && u.Password == nil &&
				u.Image != nil && *u.Image == "https://a/1.png"
		})).Run(func(args mock.Arguments) {
			u := args.Get(1).(*models.User)
			u.ID = "new-id"
			u.SessionVersion = 1
		}).Return(nil).Once()

		session, err := svc.IssueExternalSession(context.Background(),
			&oauth.Profile{Email: "octo@example.com", Name: "Octo", AvatarURL: "https://a/1.png"})
		require.NoError(t, err)
		assert.Equal(t, "new-id", session.User.ID)
		assert.Equal(t, []string{events.UserCreated}, pub.types)
		repo.AssertExpectations(t)
	})
}
