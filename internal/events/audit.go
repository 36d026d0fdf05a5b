package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// AuditHandler returns a consumer callback that records every received event
// in the structured log. Undecodable messages are rejected.
func AuditHandler(l *slog.Logger) func(body []byte) error {
	return func(body []byte) error {
		var e Event
		if err := json.Unmarshal(body, &e); err != nil {
			return fmt.Errorf("failed to decode event: %w", err)
		}
		if e.Type == "" {
			return fmt.Errorf("event %q has no type", e.ID)
		}
		l.Info("audit",
			slog.String("event_id", e.ID),
			slog.String("type", e.Type),
			slog.String("subject_id", e.SubjectID),
			slog.String("actor_id", e.ActorID),
			slog.Time("occurred_at", e.OccurredAt),
		)
		return nil
	}
}
