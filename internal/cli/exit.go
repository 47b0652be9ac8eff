package cli

import (
	"errors"

	"github.com/fpang/selection-upload/internal/ingest"
)

// Process exit codes.
const (
	ExitOK                = 0
	ExitFailure           = 1
	ExitConfiguration     = 2
	ExitNoImages          = 3
	ExitSelectionCreation = 4
	ExitEventUpdate       = 5
)

// ExitCode maps a run outcome onto the process exit code.
func ExitCode(r *ingest.Report, err error) int {
	if err != nil {
		var cfgErr *ingest.ConfigurationError
		var selErr *ingest.SelectionCreationError
		var evtErr *ingest.EventUpdateError
		switch {
		case errors.As(err, &cfgErr):
			return ExitConfiguration
		case errors.As(err, &selErr):
			return ExitSelectionCreation
		case errors.As(err, &evtErr):
			return ExitEventUpdate
		default:
			return ExitFailure
		}
	}
	if r != nil && r.State == ingest.StateNoImagesFound {
		return ExitNoImages
	}
	return ExitOK
}
