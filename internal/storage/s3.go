package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	cfg "github.com/templui/filedrop/internal/config"
)

// Storage defines the object store operations the file lifecycle needs
type Storage interface {
	// PresignPut returns a URL that lets the holder PUT an object at key with the given content type
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)

	// PresignGet returns a URL that downloads key as an attachment named filename
	PresignGet(ctx context.Context, bucket, key, filename string, expiry time.Duration) (string, error)

	// Head reports existence, size and content type of an object. A missing object is an error.
	Head(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// Bucket returns the bucket new uploads are written to
	Bucket() string
}

// ObjectInfo is what HEAD tells us about an object.
// SizeBytes and ContentType are nil when the store does not report them.
type ObjectInfo struct {
	SizeBytes   *int64
	ContentType *string
}

// S3Storage implements Storage for S3-compatible storage
// Works with AWS S3, MinIO, localstack, Cloudflare R2, etc.
type S3Storage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
}

// S3Config holds configuration for S3 storage
type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string // Optional: for S3-compatible services
}

// New creates an S3-compatible storage instance from app config
func New(ctx context.Context, c *cfg.Config) (*S3Storage, error) {
	slog.Info("initializing S3 storage",
		"bucket", c.S3Bucket,
		"region", c.AWSRegion,
		"endpoint", c.S3Endpoint,
	)
	return NewS3Storage(ctx, S3Config{
		Region:    c.AWSRegion,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Endpoint:  c.S3Endpoint,
	})
}

// NewS3Storage creates a new S3 storage instance
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	// Add static credentials if provided
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	storage := NewWithClient(NewClient(awsCfg, cfg.Endpoint), cfg.Bucket)

	// Local S3-compatible services start empty: create the bucket on first run
	if cfg.Endpoint != "" {
		if err := storage.ensureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
		}
	}

	return storage, nil
}

// NewClient creates an S3 client with an optional custom endpoint
func NewClient(awsCfg aws.Config, endpoint string) *s3.Client {
	if endpoint == "" {
		return s3.NewFromConfig(awsCfg)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // Required for MinIO and some S3-compatible services
	})
}

// NewWithClient wraps an existing S3 client
func NewWithClient(client *s3.Client, bucket string) *S3Storage {
	return &S3Storage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        bucket,
	}
}

func (s *S3Storage) Bucket() string {
	return s.bucket
}

// ensureBucket checks if bucket exists, creates it if not
func (s *S3Storage) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil // Bucket exists
	}
	if !isNotFound(err) {
		return fmt.Errorf("failed to check bucket %q: %w", s.bucket, err)
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", s.bucket, err)
	}

	slog.Info("created S3 bucket", "bucket", s.bucket)
	return nil
}

// isNotFound reports whether err is an S3 "no such bucket/key" API error
func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchBucket", "NoSuchKey":
		return true
	}
	return false
}

// PresignPut generates a presigned upload URL. The client must send the same Content-Type.
func (s *S3Storage) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error) {
	presignedReq, err := s.presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign upload URL: %w", err)
	}

	return presignedReq.URL, nil
}

// PresignGet generates a presigned download URL that forces a download named filename
func (s *S3Storage) PresignGet(ctx context.Context, bucket, key, filename string, expiry time.Duration) (string, error) {
	presignedReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(AttachmentDisposition(filename)),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign download URL: %w", err)
	}

	return presignedReq.URL, nil
}

// Head fetches object metadata without the body
func (s *S3Storage) Head(ctx context.Context, bucket, key string) (*ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to head object %q: %w", key, err)
	}

	info := &ObjectInfo{
		SizeBytes: out.ContentLength,
	}
	if out.ContentType != nil && *out.ContentType != "" {
		info.ContentType = out.ContentType
	}

	return info, nil
}

// AttachmentDisposition builds a Content-Disposition header value for filename.
// Non-ASCII names are encoded per RFC 2231 by mime.FormatMediaType.
func AttachmentDisposition(filename string) string {
	v := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	if v == "" {
		return "attachment"
	}
	return v
}
