// Package events announces completed selections on an EventBridge bus.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	eventbridgetypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/rs/zerolog/log"
)

const (
	// Source is the EventBridge source of every event this package emits.
	Source = "selection-upload"
	// DetailTypeSelectionAvailable is emitted once an event is marked
	// selection-available.
	DetailTypeSelectionAvailable = "SelectionAvailable"
)

// SelectionAvailable is the detail payload of a SelectionAvailable event.
type SelectionAvailable struct {
	SelectionID  string    `json:"selectionId"`
	EventID      string    `json:"eventId"`
	Username     string    `json:"username"`
	ImageCount   int       `json:"imageCount"`
	ItemsWritten int       `json:"itemsWritten"`
	CompletedAt  time.Time `json:"completedAt"`
}

// Notifier publishes selection lifecycle events.
type Notifier interface {
	SelectionAvailable(ctx context.Context, event SelectionAvailable) error
}

// PutEventsAPI is the subset of *eventbridge.Client used here.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// BusNotifier sends events to a named EventBridge bus.
type BusNotifier struct {
	client  PutEventsAPI
	busName string
}

// NewBusNotifier returns a notifier for busName. An empty name targets the
// account's default bus.
func NewBusNotifier(client PutEventsAPI, busName string) *BusNotifier {
	return &BusNotifier{client: client, busName: busName}
}

func (n *BusNotifier) SelectionAvailable(ctx context.Context, event SelectionAvailable) error {
	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal SelectionAvailable: %w", err)
	}

	entry := eventbridgetypes.PutEventsRequestEntry{
		Source:     aws.String(Source),
		DetailType: aws.String(DetailTypeSelectionAvailable),
		Detail:     aws.String(string(detail)),
		Time:       aws.Time(event.CompletedAt),
	}
	if n.busName != "" {
		entry.EventBusName = aws.String(n.busName)
	}

	result, err := n.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []eventbridgetypes.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return fmt.Errorf("PutEvents: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for i, e := range result.Entries {
			if e.ErrorCode != nil || e.ErrorMessage != nil {
				return fmt.Errorf("PutEvents entry %d failed: %s - %s", i, aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage))
			}
		}
		return fmt.Errorf("PutEvents: %d entries failed", result.FailedEntryCount)
	}

	log.Debug().
		Str("selectionId", event.SelectionID).
		Str("eventId", event.EventID).
		Str("bus", n.busName).
		Msg("SelectionAvailable emitted to EventBridge")
	return nil
}

// Nop discards every event. It is used when no bus is configured.
type Nop struct{}

func (Nop) SelectionAvailable(context.Context, SelectionAvailable) error { return nil }
