package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/fpang/selection-upload/internal/config"
	"github.com/fpang/selection-upload/internal/ingest"
)

func TestFormatDurationShort(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{65 * time.Second, "1:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}
	for _, tt := range tests {
		if got := FormatDurationShort(tt.d); got != tt.want {
			t.Errorf("FormatDurationShort(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestPrompterString(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\n  alice \n"), &out)

	got, err := p.String("Username", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "alice" {
		t.Errorf("String() = %q, want alice", got)
	}
	if !strings.Contains(out.String(), "Username is required.") {
		t.Errorf("empty answer should be re-asked, output: %q", out.String())
	}
}

func TestPrompterDefault(t *testing.T) {
	p := NewPrompter(strings.NewReader("\n"), io.Discard)
	got, err := p.String("Bucket", "media")
	if err != nil || got != "media" {
		t.Errorf("String() = %q, %v; want media", got, err)
	}
}

func TestPrompterLastLineWithoutNewline(t *testing.T) {
	p := NewPrompter(strings.NewReader("ev1"), io.Discard)
	got, err := p.String("Event ID", "")
	if err != nil || got != "ev1" {
		t.Errorf("String() = %q, %v; want ev1", got, err)
	}
}

func TestPrompterInt(t *testing.T) {
	p := NewPrompter(strings.NewReader("many\n-2\n12\n"), io.Discard)
	got, err := p.Int("Max")
	if err != nil || got != 12 {
		t.Errorf("Int() = %d, %v; want 12", got, err)
	}

	p = NewPrompter(strings.NewReader("a\nb\nc\n"), io.Discard)
	if _, err := p.Int("Max"); err == nil {
		t.Error("expected error after repeated invalid input")
	}
}

func TestFillMissing(t *testing.T) {
	cfg := &config.Config{}
	cfg.Run.Directory = "/photos"
	cfg.Run.Username = "alice"

	input := strings.Join([]string{"ev1", "Spring Gala", "15", "media-bucket"}, "\n") + "\n"
	if err := FillMissing(NewPrompter(strings.NewReader(input), io.Discard), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Run.EventID != "ev1" || cfg.Run.EventTitle != "Spring Gala" || cfg.Run.MaxNumberOfPhotos != 15 || cfg.Storage.Bucket != "media-bucket" {
		t.Errorf("unexpected config after prompting: %+v %+v", cfg.Run, cfg.Storage)
	}
	if cfg.Run.Directory != "/photos" || cfg.Run.Username != "alice" {
		t.Error("values already set must not be prompted for")
	}
}

func TestFillMissingInputClosed(t *testing.T) {
	cfg := &config.Config{}
	if err := FillMissing(NewPrompter(strings.NewReader(""), io.Discard), cfg); err == nil {
		t.Error("expected error when stdin is closed")
	}
}

func TestExitCode(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		name   string
		report *ingest.Report
		err    error
		want   int
	}{
		{"done", &ingest.Report{State: ingest.StateDone}, nil, ExitOK},
		{"no images", &ingest.Report{State: ingest.StateNoImagesFound}, nil, ExitNoImages},
		{"configuration", nil, &ingest.ConfigurationError{Field: "directory", Err: cause}, ExitConfiguration},
		{"wrapped configuration", nil, fmt.Errorf("setup: %w", &ingest.ConfigurationError{Err: cause}), ExitConfiguration},
		{"selection", nil, &ingest.SelectionCreationError{Err: cause}, ExitSelectionCreation},
		{"event", nil, &ingest.EventUpdateError{Err: cause}, ExitEventUpdate},
		{"other", nil, cause, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.report, tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func sampleReport() *ingest.Report {
	return &ingest.Report{
		State:          ingest.StateDone,
		SelectionID:    "sel-1",
		Username:       "alice",
		EventID:        "ev1",
		Directory:      "/photos",
		Storage:        "s3://media",
		ImagesFound:    3,
		Uploaded:       2,
		URLsGenerated:  2,
		ItemsAttempted: 2,
		ItemsWritten:   2,
		EventUpdated:   true,
		Failures: []ingest.ItemFailure{
			{FileName: "c.jpg", Stage: ingest.StageUpload, Err: errors.New("timeout")},
		},
		DurationMs: 4200,
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, sampleReport())
	out := buf.String()

	for _, want := range []string{"Selection:  sel-1", "Outcome:    Done", "Records written:  2 of 2", "[upload] c.jpg: timeout", "Duration:   0:04"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportFile(t *testing.T) {
	dir := t.TempDir()

	decoders := map[string]func(io.Reader) (io.Reader, error){
		"report.json": func(r io.Reader) (io.Reader, error) { return r, nil },
		"report.json.gz": func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		},
		"report.json.zst": func(r io.Reader) (io.Reader, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		},
	}

	for name, decode := range decoders {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteReportFile(path, sampleReport()); err != nil {
				t.Fatalf("WriteReportFile: %v", err)
			}

			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			r, err := decode(f)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			var got map[string]interface{}
			if err := json.NewDecoder(r).Decode(&got); err != nil {
				t.Fatalf("report is not JSON: %v", err)
			}
			if got["selectionId"] != "sel-1" {
				t.Errorf("selectionId = %v", got["selectionId"])
			}
			failures := got["failures"].([]interface{})
			if f0 := failures[0].(map[string]interface{}); f0["stage"] != "upload" || f0["error"] != "timeout" {
				t.Errorf("failure = %v", f0)
			}
		})
	}
}
