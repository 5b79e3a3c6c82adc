// Package eventsink delivers ledger events to the external broadcast
// channel. Delivery is fire-and-forget: callers log publish failures but a
// mutation never fails because its notification did.
package eventsink

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/crickex/ledger/internal/domain"
)

// LogSink writes events to the structured log. Used in development and as
// a fallback when no broadcast channel is configured.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink creates a new LogSink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "eventsink").Logger()}
}

// Publish logs the event.
func (s *LogSink) Publish(_ context.Context, event domain.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	s.log.Info().
		Str("event_type", event.Type).
		Str("user_id", event.UserID).
		Str("market_key", event.MarketKey).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
