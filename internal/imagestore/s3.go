package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// Presigned download URLs stay valid for seven days, matching the
// validity window LINE clients need to fetch message images.
const presignExpiry = 7 * 24 * time.Hour

// Config holds S3 storage configuration.
type Config struct {
	Bucket string

	// Region is the AWS region. R2-compatible endpoints use "auto".
	Region string

	// Endpoint, when set, points at an S3-compatible service such as
	// Cloudflare R2 and switches the client to path-style addressing.
	Endpoint string

	// Static credentials, optional. When empty the default credential
	// chain applies.
	AccessKeyID string
	SecretKey   string
}

// S3Storage is a Storage backed by S3 or any S3-compatible endpoint.
type S3Storage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// New creates an S3Storage from the given configuration.
func New(ctx context.Context, cfg Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("imagestore: bucket is required")
	}

	region := cfg.Region
	if region == "" && cfg.Endpoint != "" {
		region = "auto"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("imagestore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for R2
		}
	})

	return &S3Storage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// Upload puts the object and returns a presigned GET URL valid for
// seven days.
func (s *S3Storage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", wrapAPIError("upload", key, err)
	}

	presigned, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", wrapAPIError("presign", key, err)
	}

	return presigned.URL, nil
}

// wrapAPIError surfaces the service error code in the wrapped message
// so log lines name the S3 failure class.
func wrapAPIError(op, key string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("imagestore: %s %q: %s: %w", op, key, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("imagestore: %s %q: %w", op, key, err)
}
