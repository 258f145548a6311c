package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var loadDefaultAWSConfig = config.LoadDefaultConfig

// S3Options configures an S3Signer. Endpoint, AccessKey and SecretKey are
// optional; without keys the default AWS credential chain is used.
type S3Options struct {
	Endpoint   string
	Region     string
	AccessKey  string
	SecretKey  string
	Bucket     string
	PublicBase string
}

// S3Signer implements Signer with the AWS SDK presign client. The content
// type is part of the signature, so uploads must send the same header.
type S3Signer struct {
	presign    *s3.PresignClient
	bucket     string
	publicBase string
}

// NewS3Signer loads AWS configuration and builds a presign client.
func NewS3Signer(ctx context.Context, opts S3Options) (*S3Signer, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3SignerFromConfig(cfg, opts), nil
}

// NewS3SignerFromConfig builds a signer from an already loaded aws.Config.
func NewS3SignerFromConfig(cfg aws.Config, opts S3Options) *S3Signer {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Signer{
		presign:    s3.NewPresignClient(client),
		bucket:     opts.Bucket,
		publicBase: opts.PublicBase,
	}
}

// PresignPut issues a presigned PUT URL for key.
func (s *S3Signer) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := s.presign.PresignPutObject(ctx, in, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign put %q: %w", key, err)
	}
	return req.URL, nil
}

// PublicURL returns the browser-accessible URL for the given key.
func (s *S3Signer) PublicURL(key string) string {
	return publicURL(s.publicBase, key)
}
