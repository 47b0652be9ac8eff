package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/selection-upload/internal/filehandler"
	"github.com/fpang/selection-upload/internal/jobs"
	"github.com/fpang/selection-upload/internal/store"
)

// RecordContext carries the run-level fields copied onto every item record.
type RecordContext struct {
	SelectionID string
	EventID     string
	Username    string
	CreatedAt   time.Time
}

// NewSelection builds the Selection record for a run. Counters start at zero,
// the selection is unblocked and nothing is selected yet.
func NewSelection(selectionID, username, eventID, eventTitle string, maxPhotos int, now time.Time) *store.Selection {
	return &store.Selection{
		SelectionID:            selectionID,
		Username:               username,
		EventID:                eventID,
		EventTitle:             eventTitle,
		MaxNumberOfPhotos:      maxPhotos,
		SelectedNumberOfPhotos: 0,
		Blocked:                false,
		CreatedAt:              formatTime(now),
		UpdatedAt:              nil,
		SelectedImages:         []string{},
	}
}

// BuildSelectionItem maps one image onto its SelectionItem record.
func BuildSelectionItem(img ImageWithURL, rc RecordContext) *store.SelectionItem {
	item := &store.SelectionItem{
		ImageName:   filehandler.ImageName(img.FileName),
		SelectionID: rc.SelectionID,
		EventID:     rc.EventID,
		Username:    rc.Username,
		ObjectKey:   img.ObjectKey,
		AccessURL:   img.AccessURL,
		Selected:    false,
		ImageWidth:  img.Width,
		ImageHeight: img.Height,
		ImageFormat: img.Format,
		SizeBytes:   img.SizeBytes,
		ContentType: img.ContentType,
		CameraModel: img.CameraModel,
		CreatedAt:   formatTime(rc.CreatedAt),
	}
	if img.CapturedAt != nil {
		captured := formatTime(*img.CapturedAt)
		item.CapturedAt = &captured
	}
	return item
}

// WriteItems writes one SelectionItem per image and returns how many writes
// succeeded. Writes are independent; a failed write is logged and reported
// and never undoes another.
func WriteItems(ctx context.Context, records store.SelectionStore, images []ImageWithURL, rc RecordContext, concurrency int) (int, []ItemFailure) {
	ok := make([]bool, len(images))
	failed := make([]*ItemFailure, len(images))

	jobs.ForEach(ctx, len(images), concurrency, func(ctx context.Context, i int) {
		img := images[i]
		if err := records.PutSelectionItem(ctx, BuildSelectionItem(img, rc)); err != nil {
			log.Warn().Err(err).Str("file", img.FileName).Msg("Item record write failed")
			failed[i] = &ItemFailure{FileName: img.FileName, Stage: StageRecord, Err: err}
			return
		}
		ok[i] = true
	})

	written := 0
	for _, w := range ok {
		if w {
			written++
		}
	}

	log.Info().
		Int("attempted", len(images)).
		Int("written", written).
		Str("selectionId", rc.SelectionID).
		Msg("Item record stage complete")
	return written, collectFailures(failed)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
