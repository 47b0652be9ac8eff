package filehandler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

var (
	// ErrDirectoryNotFound is returned when the input directory does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")
	// ErrNotDirectory is returned when the input path is a regular file.
	ErrNotDirectory = errors.New("path is not a directory")
)

// ValidateDirectory checks that dirPath exists and is a directory, and returns
// its absolute form.
func ValidateDirectory(dirPath string) (string, error) {
	if dirPath == "" {
		return "", fmt.Errorf("%w: empty path", ErrDirectoryNotFound)
	}

	info, err := os.Stat(dirPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrDirectoryNotFound, dirPath)
		}
		return "", fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, dirPath)
	}

	absPath, err := filepath.Abs(dirPath)
	if err != nil {
		return dirPath, nil
	}
	return absPath, nil
}

// ScanDirectory lists dirPath (non-recursively) and returns every eligible
// image in directory order, with best-effort metadata. Subdirectories and
// files with other extensions are ignored. Symlinks to files are followed.
func ScanDirectory(dirPath string) ([]ImageFile, error) {
	log.Info().Str("path", dirPath).Msg("Scanning directory for images")

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var images []ImageFile
	var skipped int

	for _, entry := range entries {
		path := filepath.Join(dirPath, entry.Name())

		if entry.IsDir() {
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil || target.IsDir() {
				log.Debug().Str("path", path).Msg("Skipping unresolvable or directory symlink")
				continue
			}
		}

		if !IsImage(filepath.Ext(entry.Name())) {
			skipped++
			continue
		}

		images = append(images, LoadImageFile(path))
	}

	var degraded int
	for _, img := range images {
		if !img.HasMetadata() {
			degraded++
		}
	}

	log.Info().
		Int("total_images", len(images)).
		Int("without_metadata", degraded).
		Int("ignored", skipped).
		Str("directory", dirPath).
		Msg("Directory scan complete")

	return images, nil
}
