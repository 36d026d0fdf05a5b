package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog/internal/apperrors"
	"catalog/internal/auth"
	"catalog/internal/events"
	"catalog/internal/models"
	"catalog/internal/oauth"
	"catalog/internal/repositories"
)

// Session is an issued session token together with its owner.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// AuthService issues and resolves sessions.
type AuthService struct {
	users     repositories.UserRepository
	tokens    *auth.TokenManager
	hasher    *auth.PasswordHasher
	versions  *SessionVersions
	publisher events.Publisher
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, tokens *auth.TokenManager, hasher *auth.PasswordHasher,
	versions *SessionVersions, publisher events.Publisher) (*AuthService, error) {
	// compared against when the email is unknown so both failures cost one bcrypt run
	dummy, err := hasher.Hash("catalog-dummy-password")
	if err != nil {
		return nil, err
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		versions:  versions,
		publisher: publisher,
		dummyHash: dummy,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IssueSession authenticates email and password and signs a session token.
// Every credential failure returns ErrInvalidCredentials.
func (s *AuthService) IssueSession(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.hasher.Compare(s.dummyHash, password)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasPassword() {
		s.hasher.Compare(s.dummyHash, password)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !s.hasher.Compare(*user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issue(user)
}

// IssueExternalSession signs a session for a provider-verified identity,
// creating a USER account without a password on first sign-in.
func (s *AuthService) IssueExternalSession(ctx context.Context, profile *oauth.Profile) (*Session, error) {
	email := normalizeEmail(profile.Email)
	if email == "" {
		return nil, apperrors.Unauthorized("external account has no email")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		user = &models.User{Name: profile.Name, Email: email, Role: models.RoleUser}
		if profile.AvatarURL != "" {
			image := profile.AvatarURL
			user.Image = &image
		}
		err = s.users.Create(ctx, user)
		if errors.Is(err, apperrors.ErrConflict) {
			// created concurrently by another sign-in
			user, err = s.users.GetByEmail(ctx, email)
		} else if err == nil {
			publish(ctx, s.publisher, events.New(events.UserCreated, user.ID, user.ID))
		}
	}
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ResolveSession verifies token and checks it has not been revoked.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired session")
	}

	current, err := s.versions.Current(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if current != claims.Version {
		return nil, apperrors.Unauthorized("session has been revoked")
	}

	return &auth.Principal{UserID: claims.UserID, Role: claims.Role}, nil
}
