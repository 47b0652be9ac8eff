// Package ingest publishes one event's selection images: it uploads the
// files, derives access URLs, writes the Selection and SelectionItem records
// and finally marks the event selection-available.
//
// Each stage works on the full output of the previous one. Per-item work in
// a stage runs concurrently on jobs.ForEach; a failing item is reported and
// either dropped or degraded, never allowed to stop its siblings. Only the
// Selection write and the event update can fail a run.
package ingest

import (
	"github.com/fpang/selection-upload/internal/filehandler"
)

// UploadedImage is an ImageFile whose bytes are in object storage.
type UploadedImage struct {
	filehandler.ImageFile

	ObjectKey         string
	ContentType       string
	UploadedSizeBytes int64
}

// ImageWithURL is an UploadedImage plus its access URL. AccessURL is nil when
// URL generation failed.
type ImageWithURL struct {
	UploadedImage

	AccessURL *string
}
