package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/fpang/selection-upload/internal/ingest"
)

// WriteReportFile saves the JSON report to path. A .gz suffix writes gzip,
// .zst writes zstd; anything else is plain JSON.
func WriteReportFile(path string, r *ingest.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report file: %w", cerr)
		}
	}()

	var w io.WriteCloser
	switch {
	case strings.HasSuffix(path, ".gz"):
		w = gzip.NewWriter(f)
	case strings.HasSuffix(path, ".zst"):
		zw, zerr := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if zerr != nil {
			return fmt.Errorf("zstd writer: %w", zerr)
		}
		w = zw
	default:
		return WriteJSON(f, r)
	}

	if err := WriteJSON(w, r); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("flush compressed report: %w", err)
	}
	return nil
}
