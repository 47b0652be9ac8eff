package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	storage "github.com/supabase-community/storage-go"
)

// SupabaseAPI is the subset of *storage.Client used by SupabaseStore.
type SupabaseAPI interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error)
	CreateSignedUrl(bucketId string, filePath string, expiresIn int) (storage.SignedUrlResponse, error)
}

// SupabaseStore implements Store on a Supabase Storage bucket.
// The storage-go client takes no context, so cancellation is only checked
// before each call.
type SupabaseStore struct {
	client SupabaseAPI
	bucket string
}

// Compile-time interface check.
var _ Store = (*SupabaseStore)(nil)

// NewSupabaseStore creates a SupabaseStore for the project at supabaseURL
// using a service-role key.
func NewSupabaseStore(supabaseURL, serviceRoleKey, bucket string) *SupabaseStore {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)
	return NewSupabaseStoreWithAPI(client, bucket)
}

// NewSupabaseStoreWithAPI creates a SupabaseStore from an existing client.
func NewSupabaseStoreWithAPI(client SupabaseAPI, bucket string) *SupabaseStore {
	return &SupabaseStore{client: client, bucket: bucket}
}

func (s *SupabaseStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Debug().Str("bucket", s.bucket).Str("key", key).Int("size", len(body)).Msg("Uploading to Supabase Storage")

	upsert := true
	_, err := s.client.UploadFile(s.bucket, key, bytes.NewReader(body), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("supabase upload %s: %w", key, err)
	}
	return nil
}

func (s *SupabaseStore) SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	seconds := int(ttl / time.Second)
	if seconds <= 0 {
		return "", fmt.Errorf("signed URL ttl must be at least one second, got %s", ttl)
	}

	resp, err := s.client.CreateSignedUrl(s.bucket, key, seconds)
	if err != nil {
		return "", fmt.Errorf("supabase sign %s: %w", key, err)
	}
	if resp.SignedURL == "" {
		return "", fmt.Errorf("supabase sign %s: empty signed URL", key)
	}
	return resp.SignedURL, nil
}

func (s *SupabaseStore) Location() string {
	return "supabase://" + s.bucket
}
