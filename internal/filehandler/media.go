// Package filehandler scans an event's input directory for selection images
// and extracts their descriptive metadata.
//
// Extraction is best-effort: a file whose header cannot be decoded is still
// returned, with every metadata field left nil, so the upload stage can
// publish it anyway. Nothing here resizes, re-encodes, or analyses pixels.
package filehandler

import (
	"path/filepath"
	"strings"
	"time"
)

// SupportedImageExtensions maps the eligible selection image extensions to the
// content type used when publishing them.
var SupportedImageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// DefaultContentType is used for any extension without an explicit mapping.
const DefaultContentType = "image/jpeg"

// ImageFile is one eligible file found in the input directory.
//
// Width, Height, Format and SizeBytes are either all set or all nil; nil means
// extraction failed for this file. CapturedAt and CameraModel come from EXIF
// and are independent of the other fields.
type ImageFile struct {
	FileName string
	Path     string

	Width     *int
	Height    *int
	Format    *string
	SizeBytes *int64

	CapturedAt  *time.Time
	CameraModel *string
}

// HasMetadata reports whether intrinsic metadata was extracted for the file.
func (f ImageFile) HasMetadata() bool {
	return f.Width != nil
}

// IsImage returns true if the extension is one of the eligible image types.
// The comparison is case-insensitive.
func IsImage(ext string) bool {
	_, ok := SupportedImageExtensions[strings.ToLower(ext)]
	return ok
}

// ContentType returns the upload content type for a file name.
// .png and .webp map to their own types; everything else is image/jpeg.
func ContentType(fileName string) string {
	if ct, ok := SupportedImageExtensions[strings.ToLower(filepath.Ext(fileName))]; ok {
		return ct
	}
	return DefaultContentType
}

// ImageName strips the final extension from a file name.
// "sunset.jpg" -> "sunset", "a.b.png" -> "a.b".
func ImageName(fileName string) string {
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
