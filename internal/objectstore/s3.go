package objectstore

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fpang/selection-upload/internal/s3util"
)

// S3Store implements Store on an S3 bucket.
type S3Store struct {
	client    s3util.PutObjectAPI
	presigner s3util.PresignGetObjectAPI
	bucket    string
}

// Compile-time interface check.
var _ Store = (*S3Store)(nil)

// NewS3Store creates an S3Store for bucket from an S3 client.
func NewS3Store(client *s3.Client, bucket string) *S3Store {
	return NewS3StoreWithAPI(client, s3.NewPresignClient(client), bucket)
}

// NewS3StoreWithAPI creates an S3Store from the narrow upload/presign APIs.
func NewS3StoreWithAPI(client s3util.PutObjectAPI, presigner s3util.PresignGetObjectAPI, bucket string) *S3Store {
	return &S3Store{client: client, presigner: presigner, bucket: bucket}
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	return s3util.UploadBytes(ctx, s.client, s.bucket, key, body, contentType)
}

func (s *S3Store) SignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return s3util.GeneratePresignedURL(ctx, s.presigner, s.bucket, key, ttl)
}

func (s *S3Store) Location() string {
	return "s3://" + s.bucket
}
