package filehandler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"existing directory", dir, nil},
		{"missing", filepath.Join(dir, "nope"), ErrDirectoryNotFound},
		{"empty path", "", ErrDirectoryNotFound},
		{"regular file", file, ErrNotDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateDirectory(tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidateDirectory(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !filepath.IsAbs(got) {
				t.Errorf("ValidateDirectory(%q) = %q, want absolute path", tt.path, got)
			}
		})
	}
}

func TestScanDirectoryFiltersByExtension(t *testing.T) {
	dir := t.TempDir()

	writePNG(t, filepath.Join(dir, "a.png"), 4, 4)
	writeJPEG(t, filepath.Join(dir, "b.JPG"), 4, 4)
	writeJPEG(t, filepath.Join(dir, "c.jpeg"), 4, 4)
	for _, name := range []string{"d.webp", "notes.txt", "clip.mp4", "e.gif", "README"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.jpg"), 0o755); err != nil {
		t.Fatal(err)
	}

	images, err := ScanDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"a.png", "b.JPG", "c.jpeg", "d.webp"}
	if len(images) != len(want) {
		t.Fatalf("got %d images, want %d: %+v", len(images), len(want), images)
	}
	for i, name := range want {
		if images[i].FileName != name {
			t.Errorf("images[%d].FileName = %q, want %q", i, images[i].FileName, name)
		}
	}
}

func TestScanDirectoryKeepsDegradedFiles(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "good.png"), 4, 4)
	if err := os.WriteFile(filepath.Join(dir, "bad.jpg"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	images, err := ScanDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("got %d images, want 2", len(images))
	}

	byName := map[string]ImageFile{}
	for _, img := range images {
		byName[img.FileName] = img
	}

	bad, ok := byName["bad.jpg"]
	if !ok {
		t.Fatal("bad.jpg dropped from scan result")
	}
	if bad.HasMetadata() || bad.SizeBytes != nil || bad.Format != nil || bad.Height != nil {
		t.Errorf("bad.jpg should have no metadata, got %+v", bad)
	}
	if !byName["good.png"].HasMetadata() {
		t.Error("good.png should have metadata")
	}
}

func TestScanDirectoryEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	images, err := ScanDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("got %d images, want 0", len(images))
	}
}
