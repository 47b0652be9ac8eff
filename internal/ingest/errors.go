package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Stage names the pipeline step a per-item failure happened in.
type Stage string

const (
	// StageExtract failures are degraded, not excluded: the file is still
	// uploaded without metadata.
	StageExtract Stage = "extract"
	// StageName marks a file whose imageName would be empty, such as ".jpg".
	StageName Stage = "name"
	// StageDuplicate marks a file whose imageName was already taken by an
	// earlier file in directory order.
	StageDuplicate Stage = "duplicate"
	StageUpload    Stage = "upload"
	// StageURL failures keep the item; its record is written without a URL.
	StageURL    Stage = "url"
	StageRecord Stage = "record"
)

// ErrNoMetadata is the cause recorded for files whose header could not be
// decoded.
var ErrNoMetadata = errors.New("image metadata unavailable")

// ConfigurationError is a fatal error raised before any external call.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// SelectionCreationError means the Selection record could not be written.
// No item work is attempted after it.
type SelectionCreationError struct {
	SelectionID string
	Err         error
}

func (e *SelectionCreationError) Error() string {
	return fmt.Sprintf("create selection %s: %v", e.SelectionID, e.Err)
}

func (e *SelectionCreationError) Unwrap() error { return e.Err }

// EventUpdateError means the event could not be marked selection-available.
// It is fatal even when every item succeeded.
type EventUpdateError struct {
	EventID string
	Err     error
}

func (e *EventUpdateError) Error() string {
	return fmt.Sprintf("mark event %s selection-available: %v", e.EventID, e.Err)
}

func (e *EventUpdateError) Unwrap() error { return e.Err }

// ItemFailure is a recoverable failure for one file.
type ItemFailure struct {
	FileName string
	Stage    Stage
	Err      error
}

func (f ItemFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Stage, f.FileName, f.Err)
}

func (f ItemFailure) Unwrap() error { return f.Err }

// MarshalJSON renders the failure with its cause as a string.
func (f ItemFailure) MarshalJSON() ([]byte, error) {
	var msg string
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		FileName string `json:"fileName"`
		Stage    Stage  `json:"stage"`
		Error    string `json:"error"`
	}{f.FileName, f.Stage, msg})
}

// collectFailures flattens per-item failure slots, skipping empty ones.
func collectFailures(slots []*ItemFailure) []ItemFailure {
	var out []ItemFailure
	for _, f := range slots {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}
