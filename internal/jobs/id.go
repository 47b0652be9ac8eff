package jobs

import "github.com/google/uuid"

// NewSelectionID returns a random (v4) UUID used as the selection primary key.
func NewSelectionID() string {
	return uuid.NewString()
}
