// Package store persists selection records to the structured record store.
//
// Three DynamoDB tables are involved, each keyed by a single string
// attribute:
//
//	Selection      selectionId  one record per ingestion run
//	SelectionItem  imageName    one record per published image
//	Events         eventId      pre-existing; only selectionAvailable is set
//
// Writes are independent: there is no transaction spanning items, and nothing
// in this package deletes or rolls back records.
package store

import (
	"context"
	"errors"
)

// ErrEventNotFound is returned by MarkSelectionAvailable when the event
// record does not exist.
var ErrEventNotFound = errors.New("event not found")

// SelectionStore defines the persistence operations used by an ingestion run.
// Each method is safe for concurrent use.
type SelectionStore interface {
	// PutSelection creates the selection record. It fails if a record with
	// the same selectionId already exists.
	PutSelection(ctx context.Context, selection *Selection) error

	// GetSelection retrieves a selection by ID. Returns nil, nil if not found.
	GetSelection(ctx context.Context, selectionID string) (*Selection, error)

	// PutSelectionItem creates or replaces one item record.
	PutSelectionItem(ctx context.Context, item *SelectionItem) error

	// MarkSelectionAvailable sets selectionAvailable = true on an existing event.
	MarkSelectionAvailable(ctx context.Context, eventID string) error
}

// Tables holds the configurable table names.
type Tables struct {
	Selection     string
	SelectionItem string
	Events        string
}

// DefaultTables returns the default table names.
func DefaultTables() Tables {
	return Tables{
		Selection:     "Selection",
		SelectionItem: "SelectionItem",
		Events:        "Events",
	}
}

// Selection is the per-run session record (table Selection).
// UpdatedAt is stored as NULL until a curator edits the selection.
type Selection struct {
	SelectionID            string   `json:"selectionId" dynamodbav:"selectionId"`
	Username               string   `json:"username" dynamodbav:"username"`
	EventID                string   `json:"eventId" dynamodbav:"eventId"`
	EventTitle             string   `json:"eventTitle" dynamodbav:"eventTitle"`
	MaxNumberOfPhotos      int      `json:"maxNumberOfPhotos" dynamodbav:"maxNumberOfPhotos"`
	SelectedNumberOfPhotos int      `json:"selectedNumberOfPhotos" dynamodbav:"selectedNumberOfPhotos"`
	Blocked                bool     `json:"blocked" dynamodbav:"blocked"`
	CreatedAt              string   `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt              *string  `json:"updatedAt" dynamodbav:"updatedAt"`
	SelectedImages         []string `json:"selectedImages" dynamodbav:"selectedImages"`
}

// SelectionItem is one published image (table SelectionItem).
// ImageName is the file name without its extension and is the primary key.
type SelectionItem struct {
	ImageName   string  `json:"imageName" dynamodbav:"imageName"`
	SelectionID string  `json:"selectionId" dynamodbav:"selectionId"`
	EventID     string  `json:"eventId" dynamodbav:"eventId"`
	Username    string  `json:"username" dynamodbav:"username"`
	ObjectKey   string  `json:"objectKey" dynamodbav:"objectKey"`
	AccessURL   *string `json:"accessUrl,omitempty" dynamodbav:"accessUrl,omitempty"`
	Selected    bool    `json:"selected" dynamodbav:"selected"`
	ImageWidth  *int    `json:"imageWidth,omitempty" dynamodbav:"imageWidth,omitempty"`
	ImageHeight *int    `json:"imageHeight,omitempty" dynamodbav:"imageHeight,omitempty"`

	ImageFormat *string `json:"imageFormat,omitempty" dynamodbav:"imageFormat,omitempty"`
	SizeBytes   *int64  `json:"sizeBytes,omitempty" dynamodbav:"sizeBytes,omitempty"`
	ContentType string  `json:"contentType" dynamodbav:"contentType"`
	CapturedAt  *string `json:"capturedAt,omitempty" dynamodbav:"capturedAt,omitempty"`
	CameraModel *string `json:"cameraModel,omitempty" dynamodbav:"cameraModel,omitempty"`
	CreatedAt   string  `json:"createdAt" dynamodbav:"createdAt"`
}
