package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fpang/selection-upload/internal/ingest"
)

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// PrintSummary writes the human-readable run summary.
func PrintSummary(w io.Writer, r *ingest.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "============================================")
	if r.DryRun {
		fmt.Fprintln(w, "Selection Upload (dry run)")
	} else {
		fmt.Fprintln(w, "Selection Upload")
	}
	fmt.Fprintln(w, "============================================")
	fmt.Fprintf(w, "Directory:  %s\n", r.Directory)
	fmt.Fprintf(w, "Event:      %s (user %s)\n", r.EventID, r.Username)
	if r.SelectionID != "" {
		fmt.Fprintf(w, "Selection:  %s\n", r.SelectionID)
	}
	if r.Storage != "" {
		fmt.Fprintf(w, "Storage:    %s\n", r.Storage)
	}
	fmt.Fprintf(w, "Outcome:    %s\n", r.State)
	fmt.Fprintf(w, "Duration:   %s\n", FormatDurationShort(time.Duration(r.DurationMs)*time.Millisecond))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Images found:     %d\n", r.ImagesFound)
	if r.DryRun {
		for _, name := range r.Files {
			fmt.Fprintf(w, "  %s\n", name)
		}
	} else {
		fmt.Fprintf(w, "Uploaded:         %d\n", r.Uploaded)
		fmt.Fprintf(w, "Access URLs:      %d\n", r.URLsGenerated)
		fmt.Fprintf(w, "Records written:  %d of %d\n", r.ItemsWritten, r.ItemsAttempted)
		fmt.Fprintf(w, "Event available:  %t\n", r.EventUpdated)
	}

	if len(r.Failures) > 0 {
		fmt.Fprintf(w, "\nSkipped or degraded (%d):\n", len(r.Failures))
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  [%s] %s: %v\n", f.Stage, f.FileName, f.Err)
		}
	}
	if r.NotifyError != "" {
		fmt.Fprintf(w, "\nWarning: notification not sent: %s\n", r.NotifyError)
	}
	if r.Error != "" {
		fmt.Fprintf(w, "\nError: %s\n", r.Error)
	}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *ingest.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
