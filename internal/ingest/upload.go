package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/selection-upload/internal/filehandler"
	"github.com/fpang/selection-upload/internal/jobs"
	"github.com/fpang/selection-upload/internal/objectstore"
)

// ObjectKey returns the storage key for a file. Re-running the same event
// overwrites rather than duplicates.
func ObjectKey(username, eventID, fileName string) string {
	return fmt.Sprintf("%s/%s/selection/%s", username, eventID, fileName)
}

// RejectEmptyNames drops files with no base name. Their SelectionItem would
// have an empty key, which the record store refuses.
func RejectEmptyNames(images []filehandler.ImageFile) ([]filehandler.ImageFile, []ItemFailure) {
	kept := make([]filehandler.ImageFile, 0, len(images))
	var failures []ItemFailure

	for _, img := range images {
		if strings.TrimSpace(filehandler.ImageName(img.FileName)) == "" {
			log.Warn().Str("file", img.FileName).Msg("Image has an empty name, skipping file")
			failures = append(failures, ItemFailure{
				FileName: img.FileName,
				Stage:    StageName,
				Err:      fmt.Errorf("file %q has an empty image name", img.FileName),
			})
			continue
		}
		kept = append(kept, img)
	}
	return kept, failures
}

// RejectDuplicateNames drops every file whose imageName was already claimed
// by an earlier file. "img.jpg" and "img.png" would otherwise share the same
// SelectionItem key and the later write would silently replace the earlier.
func RejectDuplicateNames(images []filehandler.ImageFile) ([]filehandler.ImageFile, []ItemFailure) {
	owner := make(map[string]string, len(images))
	kept := make([]filehandler.ImageFile, 0, len(images))
	var failures []ItemFailure

	for _, img := range images {
		name := filehandler.ImageName(img.FileName)
		if first, taken := owner[name]; taken {
			log.Warn().
				Str("file", img.FileName).
				Str("imageName", name).
				Str("keptFile", first).
				Msg("Duplicate image name, skipping file")
			failures = append(failures, ItemFailure{
				FileName: img.FileName,
				Stage:    StageDuplicate,
				Err:      fmt.Errorf("image name %q already used by %s", name, first),
			})
			continue
		}
		owner[name] = img.FileName
		kept = append(kept, img)
	}
	return kept, failures
}

// DegradedFiles reports files that will be published without metadata.
func DegradedFiles(images []filehandler.ImageFile) []ItemFailure {
	var failures []ItemFailure
	for _, img := range images {
		if !img.HasMetadata() {
			failures = append(failures, ItemFailure{FileName: img.FileName, Stage: StageExtract, Err: ErrNoMetadata})
		}
	}
	return failures
}

// UploadImages publishes every image under ObjectKey and returns the ones that
// made it. A file that cannot be read or stored is logged, reported and left
// out of the result. At most concurrency uploads run at once.
func UploadImages(ctx context.Context, objects objectstore.Store, images []filehandler.ImageFile, username, eventID string, concurrency int) ([]UploadedImage, []ItemFailure) {
	done := make([]*UploadedImage, len(images))
	failed := make([]*ItemFailure, len(images))

	jobs.ForEach(ctx, len(images), concurrency, func(ctx context.Context, i int) {
		img := images[i]
		fail := func(err error) {
			log.Warn().Err(err).Str("file", img.FileName).Msg("Upload failed, excluding image")
			failed[i] = &ItemFailure{FileName: img.FileName, Stage: StageUpload, Err: err}
		}

		if err := ctx.Err(); err != nil {
			fail(err)
			return
		}

		data, err := os.ReadFile(img.Path)
		if err != nil {
			fail(fmt.Errorf("read file: %w", err))
			return
		}

		key := ObjectKey(username, eventID, img.FileName)
		contentType := filehandler.ContentType(img.FileName)
		if err := objects.Put(ctx, key, data, contentType); err != nil {
			fail(err)
			return
		}

		log.Debug().
			Str("file", img.FileName).
			Str("key", key).
			Int("size", len(data)).
			Msg("Image uploaded")
		done[i] = &UploadedImage{
			ImageFile:         img,
			ObjectKey:         key,
			ContentType:       contentType,
			UploadedSizeBytes: int64(len(data)),
		}
	})

	uploaded := make([]UploadedImage, 0, len(images))
	for _, u := range done {
		if u != nil {
			uploaded = append(uploaded, *u)
		}
	}
	failures := collectFailures(failed)

	log.Info().
		Int("uploaded", len(uploaded)).
		Int("failed", len(failures)).
		Str("storage", objects.Location()).
		Msg("Upload stage complete")
	return uploaded, failures
}
