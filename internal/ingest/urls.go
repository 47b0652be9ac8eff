package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/selection-upload/internal/jobs"
	"github.com/fpang/selection-upload/internal/objectstore"
)

// AccessURLTTL is the validity window of every access URL (604800 s).
const AccessURLTTL = 7 * 24 * time.Hour

// RetryPolicy controls access URL retries. The zero value makes one attempt.
type RetryPolicy struct {
	Retries int
	// Backoff is multiplied by the attempt number before each retry.
	Backoff time.Duration
}

// GenerateAccessURLs signs an AccessURLTTL GET URL for every uploaded image.
// Items whose URL could not be generated are kept with a nil AccessURL so
// their records are still written.
func GenerateAccessURLs(ctx context.Context, objects objectstore.Store, uploaded []UploadedImage, concurrency int, retry RetryPolicy) ([]ImageWithURL, []ItemFailure) {
	out := make([]ImageWithURL, len(uploaded))
	failed := make([]*ItemFailure, len(uploaded))

	jobs.ForEach(ctx, len(uploaded), concurrency, func(ctx context.Context, i int) {
		img := uploaded[i]
		out[i] = ImageWithURL{UploadedImage: img}

		url, err := signWithRetry(ctx, objects, img.ObjectKey, retry)
		if err != nil {
			log.Warn().Err(err).Str("file", img.FileName).Str("key", img.ObjectKey).Msg("Access URL generation failed, keeping image without URL")
			failed[i] = &ItemFailure{FileName: img.FileName, Stage: StageURL, Err: err}
			return
		}
		out[i].AccessURL = &url
	})

	failures := collectFailures(failed)
	log.Info().
		Int("generated", len(uploaded)-len(failures)).
		Int("failed", len(failures)).
		Dur("ttl", AccessURLTTL).
		Msg("Access URL stage complete")
	return out, failures
}

func signWithRetry(ctx context.Context, objects objectstore.Store, key string, retry RetryPolicy) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= retry.Retries; attempt++ {
		if attempt > 0 {
			wait := retry.Backoff * time.Duration(attempt)
			log.Debug().Err(lastErr).Str("key", key).Int("attempt", attempt).Dur("wait", wait).Msg("Retrying access URL")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}

		url, err := objects.SignedGetURL(ctx, key, AccessURLTTL)
		if err == nil {
			return url, nil
		}
		lastErr = err
	}
	return "", lastErr
}
