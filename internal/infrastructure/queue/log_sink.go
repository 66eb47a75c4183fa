package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tasknexus/tasknexus-api/internal/core/domain"
)

// LogSink delivers notifications by logging them. Used when no outbox is
// configured.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(_ context.Context, n domain.Notification) error {
	s.log.Info().
		Str("notification_id", n.ID).
		Str("kind", string(n.Kind)).
		Str("email", n.Email).
		Str("subject", n.Subject).
		Msg("notification")
	return nil
}
