package cli

import (
	"errors"
	"fmt"

	"github.com/ncruces/zenity"
)

// ErrPickCanceled is returned when the user closes the folder dialog.
var ErrPickCanceled = errors.New("directory selection canceled")

// PickDirectory opens the native folder dialog.
func PickDirectory(title string) (string, error) {
	selected, err := zenity.SelectFile(
		zenity.Directory(),
		zenity.Title(title),
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", ErrPickCanceled
		}
		return "", fmt.Errorf("directory dialog: %w", err)
	}
	return selected, nil
}
