package ingest

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/fpang/selection-upload/internal/events"
	"github.com/fpang/selection-upload/internal/store"
)

// FinalizeSession marks the event selection-available. Any failure is
// returned as an *EventUpdateError.
func FinalizeSession(ctx context.Context, records store.SelectionStore, eventID string) error {
	if err := records.MarkSelectionAvailable(ctx, eventID); err != nil {
		return &EventUpdateError{EventID: eventID, Err: err}
	}
	log.Info().Str("eventId", eventID).Msg("Event marked selection-available")
	return nil
}

// announce publishes the SelectionAvailable event. Failures are logged and
// returned for the report only.
func announce(ctx context.Context, notifier events.Notifier, evt events.SelectionAvailable) error {
	if err := notifier.SelectionAvailable(ctx, evt); err != nil {
		log.Warn().Err(err).Str("selectionId", evt.SelectionID).Msg("SelectionAvailable notification failed")
		return err
	}
	return nil
}
