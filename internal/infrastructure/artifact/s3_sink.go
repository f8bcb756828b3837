package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/erp/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// S3API is the subset of the S3 client used by S3Sink
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3Sink writes artifacts to any S3-compatible object store (AWS S3, MinIO, RustFS)
type S3Sink struct {
	client    S3API
	bucket    string
	keyPrefix string
	layout    Layout
	logger    *zap.Logger
}

// S3SinkOption is a functional option for configuring S3Sink
type S3SinkOption func(*S3Sink)

// WithS3Logger sets the logger used by S3Sink
func WithS3Logger(logger *zap.Logger) S3SinkOption {
	return func(s *S3Sink) {
		s.logger = logger
	}
}

// WithS3Client replaces the SDK client
func WithS3Client(client S3API) S3SinkOption {
	return func(s *S3Sink) {
		s.client = client
	}
}

// WithS3Layout overrides the per-kind key prefixes
func WithS3Layout(layout Layout) S3SinkOption {
	return func(s *S3Sink) {
		s.layout = layout
	}
}

// NewS3Sink creates an S3 sink from configuration
func NewS3Sink(cfg *config.S3Config, opts ...S3SinkOption) (*S3Sink, error) {
	if cfg == nil {
		return nil, errors.New("s3 configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	sink := &S3Sink{
		bucket:    cfg.Bucket,
		keyPrefix: strings.Trim(cfg.KeyPrefix, "/"),
		layout:    DefaultLayout(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(sink)
	}
	if sink.client != nil {
		return sink, nil
	}

	if cfg.AccessKey == "" {
		return nil, errors.New("s3 access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("s3 secret key is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid s3 endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	sink.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})

	return sink, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
// Call this during application startup.
func (s *S3Sink) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating artifact bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

// Write uploads data under <prefix>/<kind prefix>/<name> and returns an s3:// URI
func (s *S3Sink) Write(ctx context.Context, kind Kind, name string, data []byte) (string, error) {
	key := s.key(kind, name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact %s: %w", key, err)
	}

	s.logger.Debug("Artifact uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

func (s *S3Sink) key(kind Kind, name string) string {
	parts := []string{s.layout.location(kind), SanitizeName(name)}
	if s.keyPrefix != "" {
		parts = append([]string{s.keyPrefix}, parts...)
	}
	return path.Join(parts...)
}

// Ensure S3Sink implements Sink
var _ Sink = (*S3Sink)(nil)
