package services

import (
	"context"
	"log/slog"

	"catalog/internal/events"
	"catalog/internal/logger"
)

// publish delivers e best-effort. Broker failures never fail the request.
func publish(ctx context.Context, p events.Publisher, e events.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, e); err != nil {
		logger.FromContext(ctx).Warn("event publish failed",
			slog.String("type", e.Type),
			slog.String("subject_id", e.SubjectID),
			slog.Any("error", err),
		)
	}
}

// storeVersion writes the new session version of a user through to the
// cache, logging failures.
func storeVersion(ctx context.Context, versions *SessionVersions, userID string, version int) {
	if err := versions.Store(ctx, userID, version); err != nil {
		logger.FromContext(ctx).Error("failed to store session version",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}

// forget marks a deleted user in the cache, logging failures.
func forget(ctx context.Context, versions *SessionVersions, userID string) {
	if err := versions.Forget(ctx, userID); err != nil {
		logger.FromContext(ctx).Error("failed to mark deleted user",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}
