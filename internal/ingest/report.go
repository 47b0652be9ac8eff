package ingest

import (
	"time"

	"go.uber.org/multierr"

	"github.com/fpang/selection-upload/internal/metrics"
)

// Report is the outcome of one run. Run returns it even when the run fails.
type Report struct {
	State       State  `json:"state"`
	SelectionID string `json:"selectionId,omitempty"`
	Username    string `json:"username"`
	EventID     string `json:"eventId"`
	Directory   string `json:"directory"`
	Storage     string `json:"storage,omitempty"`
	DryRun      bool   `json:"dryRun,omitempty"`

	ImagesFound    int `json:"imagesFound"`
	Uploaded       int `json:"uploaded"`
	URLsGenerated  int `json:"urlsGenerated"`
	ItemsAttempted int `json:"itemsAttempted"`
	ItemsWritten   int `json:"itemsWritten"`

	EventUpdated bool   `json:"eventUpdated"`
	NotifyError  string `json:"notifyError,omitempty"`

	// Files lists the eligible files found, in directory order.
	Files    []string      `json:"files,omitempty"`
	Failures []ItemFailure `json:"failures"`
	Error    string        `json:"error,omitempty"`

	StartedAt  time.Time `json:"startedAt"`
	DurationMs int64     `json:"durationMs"`
}

func (r *Report) addFailures(f []ItemFailure) {
	r.Failures = append(r.Failures, f...)
}

// FailuresAt counts the item failures recorded for stage.
func (r *Report) FailuresAt(stage Stage) int {
	n := 0
	for _, f := range r.Failures {
		if f.Stage == stage {
			n++
		}
	}
	return n
}

// ItemErrors combines every item failure into one error, or nil.
func (r *Report) ItemErrors() error {
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f)
	}
	return err
}

// Succeeded reports whether the run reached Done.
func (r *Report) Succeeded() bool {
	return r.State == StateDone
}

// Record copies the run counters onto an EMF recorder.
func (r *Report) Record(rec *metrics.Recorder) *metrics.Recorder {
	return rec.
		Count("ImagesFound", r.ImagesFound).
		Count("Uploaded", r.Uploaded).
		Count("UploadFailed", r.FailuresAt(StageUpload)).
		Count("UrlFailed", r.FailuresAt(StageURL)).
		Count("ItemsWritten", r.ItemsWritten).
		Count("ItemWriteFailed", r.FailuresAt(StageRecord)).
		Metric("DurationMs", float64(r.DurationMs), metrics.UnitMilliseconds).
		Property("state", string(r.State)).
		Property("selectionId", r.SelectionID).
		Property("eventId", r.EventID)
}
