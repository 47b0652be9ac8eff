package filehandler

import (
	"testing"
)

func TestIsImage(t *testing.T) {
	tests := []struct {
		ext      string
		expected bool
	}{
		{".jpg", true},
		{".jpeg", true},
		{".JPG", true},
		{".JPEG", true},
		{".png", true},
		{".PNG", true},
		{".webp", true},
		{".WebP", true},
		{".gif", false},
		{".heic", false},
		{".mp4", false},
		{".txt", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			result := IsImage(tt.ext)
			if result != tt.expected {
				t.Errorf("IsImage(%q) = %v, want %v", tt.ext, result, tt.expected)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		fileName string
		expected string
	}{
		{"x.png", "image/png"},
		{"X.PNG", "image/png"},
		{"x.webp", "image/webp"},
		{"x.jpg", "image/jpeg"},
		{"x.jpeg", "image/jpeg"},
		{"x.tiff", "image/jpeg"},
		{"noext", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			if got := ContentType(tt.fileName); got != tt.expected {
				t.Errorf("ContentType(%q) = %q, want %q", tt.fileName, got, tt.expected)
			}
		})
	}
}

func TestImageName(t *testing.T) {
	tests := []struct {
		fileName string
		expected string
	}{
		{"sunset.jpg", "sunset"},
		{"a.b.png", "a.b"},
		{"IMG_0001.JPEG", "IMG_0001"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			if got := ImageName(tt.fileName); got != tt.expected {
				t.Errorf("ImageName(%q) = %q, want %q", tt.fileName, got, tt.expected)
			}
		})
	}
}

func TestHasMetadata(t *testing.T) {
	w := 10
	if (ImageFile{FileName: "a.jpg"}).HasMetadata() {
		t.Error("HasMetadata() = true for empty ImageFile, want false")
	}
	if !(ImageFile{FileName: "a.jpg", Width: &w}).HasMetadata() {
		t.Error("HasMetadata() = false with Width set, want true")
	}
}
