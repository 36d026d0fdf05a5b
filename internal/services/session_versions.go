package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"catalog/internal/apperrors"
	"catalog/internal/cache"
	"catalog/internal/repositories"
)

const sessionVersionTTL = 5 * time.Minute

// deletedVersion marks a removed user in the cache.
const deletedVersion = "deleted"

// SessionVersions resolves the current session version of a user, reading
// through the cache before falling back to the database.
//
// Writers store the new version after every change. Readers only fill an
// absent key, so a reader holding a version it loaded before a change can
// never overwrite the newer value.
type SessionVersions struct {
	users repositories.UserRepository
	cache *cache.Client
}

// NewSessionVersions creates a resolver. c may be nil.
func NewSessionVersions(users repositories.UserRepository, c *cache.Client) *SessionVersions {
	return &SessionVersions{users: users, cache: c}
}

func sessionVersionKey(userID string) string {
	return "session_version:" + userID
}

// Current returns the session version tokens for userID must carry.
// A user that no longer exists yields an Unauthorized error.
func (s *SessionVersions) Current(ctx context.Context, userID string) (int, error) {
	key := sessionVersionKey(userID)
	if raw, _ := s.cache.Get(ctx, key); raw != nil {
		if string(raw) == deletedVersion {
			return 0, apperrors.Unauthorized("session is no longer valid")
		}
		if v, err := strconv.Atoi(string(raw)); err == nil {
			return v, nil
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.Unauthorized("session is no longer valid")
		}
		return 0, err
	}

	s.cache.SetNX(ctx, key, []byte(strconv.Itoa(user.SessionVersion)), sessionVersionTTL)
	return user.SessionVersion, nil
}

// Store records version as the current one for userID after it changed.
func (s *SessionVersions) Store(ctx context.Context, userID string, version int) error {
	return s.cache.Set(ctx, sessionVersionKey(userID), []byte(strconv.Itoa(version)), sessionVersionTTL)
}

// Forget records that userID was deleted.
func (s *SessionVersions) Forget(ctx context.Context, userID string) error {
	return s.cache.Set(ctx, sessionVersionKey(userID), []byte(deletedVersion), sessionVersionTTL)
}
