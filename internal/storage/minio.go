package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioSigner implements Signer using a MinIO (or any S3-compatible) backend.
// MinIO presigned PUT URLs do not bind the content type; the uploader must
// still send a matching Content-Type header.
type MinioSigner struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// MinioOptions configures a MinioSigner.
type MinioOptions struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string
	UseSSL     bool
}

// NewMinioSigner creates a MinIO client. Setting Region keeps URL signing
// local: the client never has to look up the bucket location.
func NewMinioSigner(opts MinioOptions) (*MinioSigner, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioSigner{
		client:     client,
		bucket:     opts.Bucket,
		publicBase: opts.PublicBase,
	}, nil
}

// EnsureBucket creates the bucket when missing and applies a public-read
// policy so issued public URLs resolve.
func (s *MinioSigner) EnsureBucket(ctx context.Context, logger *slog.Logger) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %q: %w", s.bucket, err)
		}
		logger.Info("storage: created bucket", slog.String("bucket", s.bucket))
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}
	return nil
}

// PresignPut issues a presigned PUT URL for key.
func (s *MinioSigner) PresignPut(ctx context.Context, key, _ string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, expiry)
	if err != nil {
		return "", fmt.Errorf("presign put %q: %w", key, err)
	}
	return u.String(), nil
}

// PublicURL returns the browser-accessible URL for the given key.
// For local MinIO: "http://localhost:9000/lodge-media/rooms/1700000000000-suite.jpg"
func (s *MinioSigner) PublicURL(key string) string {
	return publicURL(s.publicBase, key)
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
