// Package storage keeps expense receipts in S3-compatible object storage.
// Browsers upload and download directly through presigned URLs, so receipt
// bytes never pass through the API.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	financeapp "github.com/fintermediary/backoffice/internal/application/finance"
	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ financeapp.ReceiptStorage = (*S3ReceiptStorage)(nil)

var ErrKeyRequired = errors.New("storage key is required")

const (
	defaultRegion            = "us-east-1"
	defaultPresignExpiration = 15 * time.Minute
)

// S3ReceiptStorage implements ReceiptStorage against AWS S3 or any
// compatible server such as MinIO.
type S3ReceiptStorage struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
	logger  *zap.Logger
}

type Option func(*S3ReceiptStorage)

func WithLogger(logger *zap.Logger) Option {
	return func(s *S3ReceiptStorage) { s.logger = logger.Named("storage") }
}

func NewS3ReceiptStorage(ctx context.Context, cfg config.StorageConfig, opts ...Option) (*S3ReceiptStorage, error) {
	switch {
	case cfg.Bucket == "":
		return nil, errors.New("storage bucket is required")
	case cfg.AccessKey == "" || cfg.SecretKey == "":
		return nil, errors.New("storage access key and secret key are required")
	}
	endpoint, err := normalizeEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	s := &S3ReceiptStorage{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		expiry:  cfg.PresignExpiration,
		logger:  zap.NewNop(),
	}
	if s.expiry <= 0 {
		s.expiry = defaultPresignExpiration
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// normalizeEndpoint turns host:port into a URL using useSSL to pick the
// scheme. An empty endpoint selects AWS itself.
func normalizeEndpoint(endpoint string, useSSL bool) (string, error) {
	if endpoint == "" {
		return "", nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		u, err = url.Parse(scheme + "://" + endpoint)
	}
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid storage endpoint %q", endpoint)
	}
	return u.String(), nil
}

// isMissing reports S3 "not found" answers, whichever code the server uses.
func isMissing(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}

// EnsureBucket creates the receipts bucket on first start.
func (s *S3ReceiptStorage) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	switch {
	case err == nil:
		return nil
	case !isMissing(err):
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}

	s.logger.Info("Creating receipts bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	var apiErr smithy.APIError
	if err != nil && !(errors.As(err, &apiErr) && apiErr.ErrorCode() == "BucketAlreadyOwnedByYou") {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

type presignFunc func(ctx context.Context, expires time.Duration) (*v4.PresignedHTTPRequest, error)

func (s *S3ReceiptStorage) presignURL(ctx context.Context, op, key string, expiresIn time.Duration, fn presignFunc) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrKeyRequired
	}
	if expiresIn <= 0 {
		expiresIn = s.expiry
	}
	req, err := fn(ctx, expiresIn)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign %s %s: %w", op, key, err)
	}
	return req.URL, time.Now().Add(expiresIn), nil
}

// GenerateUploadURL presigns a PUT. The browser must send the same Content-Type.
func (s *S3ReceiptStorage) GenerateUploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error) {
	return s.presignURL(ctx, "upload", key, expiresIn, func(ctx context.Context, d time.Duration) (*v4.PresignedHTTPRequest, error) {
		return s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			ContentType: aws.String(contentType),
		}, s3.WithPresignExpires(d))
	})
}

func (s *S3ReceiptStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	return s.presignURL(ctx, "download", key, expiresIn, func(ctx context.Context, d time.Duration) (*v4.PresignedHTTPRequest, error) {
		return s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(d))
	})
}

// ObjectExists reports whether the browser finished uploading key.
func (s *S3ReceiptStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrKeyRequired
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	switch {
	case err == nil:
		return true, nil
	case isMissing(err):
		return false, nil
	default:
		return false, fmt.Errorf("head object %s: %w", key, err)
	}
}

func (s *S3ReceiptStorage) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)}); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	s.logger.Debug("Receipt deleted", zap.String("key", key))
	return nil
}
