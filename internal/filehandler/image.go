package filehandler

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

// ImageMetadata is the intrinsic metadata read from an image header.
type ImageMetadata struct {
	Width     int
	Height    int
	Format    string
	SizeBytes int64
}

// ExifMetadata is the optional capture information read from EXIF.
type ExifMetadata struct {
	DateTaken   time.Time
	HasDate     bool
	CameraMake  string
	CameraModel string
}

// ExtractImageMetadata reads the dimensions and format of an image from its
// header without decoding pixel data. JPEG and PNG use the standard library
// decoders, WebP uses golang.org/x/image/webp.
func ExtractImageMetadata(filePath string) (*ImageMetadata, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	return &ImageMetadata{
		Width:     cfg.Width,
		Height:    cfg.Height,
		Format:    format,
		SizeBytes: info.Size(),
	}, nil
}

// ExtractExifMetadata reads capture date and camera details using the
// imagemeta library. Only the metadata segment is read, not the whole file.
//
// Date fallback order: DateTimeOriginal > CreateDate > ModifyDate.
func ExtractExifMetadata(filePath string) (*ExifMetadata, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	exifData, err := imagemeta.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode EXIF metadata: %w", err)
	}

	meta := &ExifMetadata{
		CameraMake:  strings.TrimSpace(exifData.Make),
		CameraModel: strings.TrimSpace(exifData.Model),
	}

	if !exifData.DateTimeOriginal().IsZero() {
		meta.DateTaken = exifData.DateTimeOriginal()
		meta.HasDate = true
	} else if !exifData.CreateDate().IsZero() {
		meta.DateTaken = exifData.CreateDate()
		meta.HasDate = true
	} else if !exifData.ModifyDate().IsZero() {
		meta.DateTaken = exifData.ModifyDate()
		meta.HasDate = true
	}

	return meta, nil
}

// LoadImageFile builds the ImageFile for one eligible path. It never fails:
// extraction errors are logged and leave the metadata fields nil.
func LoadImageFile(filePath string) ImageFile {
	name := filepath.Base(filePath)
	f := ImageFile{FileName: name, Path: filePath}

	meta, err := ExtractImageMetadata(filePath)
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("Failed to extract image metadata, continuing without it")
	} else {
		f.Width = &meta.Width
		f.Height = &meta.Height
		f.Format = &meta.Format
		f.SizeBytes = &meta.SizeBytes
	}

	exif, err := ExtractExifMetadata(filePath)
	if err != nil {
		log.Debug().Err(err).Str("file", name).Msg("No EXIF metadata")
		return f
	}
	if exif.HasDate {
		t := exif.DateTaken
		f.CapturedAt = &t
	}
	if camera := strings.TrimSpace(exif.CameraMake + " " + exif.CameraModel); camera != "" {
		f.CameraModel = &camera
	}

	return f
}
