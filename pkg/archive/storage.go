package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/axioniz/axioniz-api/pkg/logger"
	"github.com/axioniz/axioniz-api/pkg/metrics"
	"github.com/axioniz/axioniz-api/pkg/retry"
	"go.uber.org/zap"
)

const defaultPrefix = "consultations"

// ObjectPutter is the subset of the S3 API the archive needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Config holds the S3-compatible bucket settings.
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Endpoint        string
	Region          string
	Prefix          string
}

// StorageClient writes JSON snapshots of stored records to an S3-compatible bucket.
type StorageClient struct {
	s3Client ObjectPutter
	bucket   string
	prefix   string
	retry    retry.Config
}

// NewStorageClient creates an archive client. An empty endpoint targets AWS S3.
func NewStorageClient(cfg Config) (*StorageClient, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "eu-central-1"
	}

	opts := s3.Options{
		Region: cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	logger.Info("Consultation archive initialized",
		zap.String("bucket", cfg.Bucket),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", cfg.Region),
	)

	return NewStorageClientWithAPI(s3.New(opts), cfg.Bucket, cfg.Prefix), nil
}

// NewStorageClientWithAPI builds a client on top of an existing S3 API implementation.
func NewStorageClientWithAPI(api ObjectPutter, bucket, prefix string) *StorageClient {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = defaultPrefix
	}
	policy := retry.ArchiveConfig()
	policy.RetryableErrors = isTransient
	return &StorageClient{s3Client: api, bucket: bucket, prefix: prefix, retry: policy}
}

// isTransient rejects client errors such as a missing bucket or bad
// credentials; those fail the same way on every attempt.
func isTransient(err error) bool {
	if !retry.IsRetryable(err) {
		return false
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		code := respErr.HTTPStatusCode()
		return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
	}
	return true
}

// ObjectKey returns the key a record is archived under:
// {prefix}/{yyyy}/{mm}/{id}.json, partitioned by creation time in UTC.
func (s *StorageClient) ObjectKey(id int64, createdAt time.Time) string {
	createdAt = createdAt.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%d.json", s.prefix, createdAt.Year(), int(createdAt.Month()), id)
}

// Put serializes record as JSON and uploads it. It returns the object key.
func (s *StorageClient) Put(ctx context.Context, id int64, createdAt time.Time, record any) (string, error) {
	start := time.Now()
	operation := "putObject"
	key := s.ObjectKey(id, createdAt)

	body, err := json.Marshal(record)
	if err != nil {
		metrics.ArchiveRequestDuration.WithLabelValues(operation, "error").Observe(metrics.MeasureDuration(start))
		metrics.ArchiveRequestTotal.WithLabelValues(operation, "error").Inc()
		return "", fmt.Errorf("failed to encode archive record: %w", err)
	}

	err = retry.Do(ctx, s.retry, "archive."+operation, func() error {
		_, putErr := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		return putErr
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.ArchiveRequestDuration.WithLabelValues(operation, "error").Observe(duration)
		metrics.ArchiveRequestTotal.WithLabelValues(operation, "error").Inc()
		logger.LogAPICall("archive", operation, "error", duration,
			zap.Error(err),
			zap.String("key", key),
		)
		return "", fmt.Errorf("failed to upload archive object: %w", err)
	}

	metrics.ArchiveRequestDuration.WithLabelValues(operation, "success").Observe(duration)
	metrics.ArchiveRequestTotal.WithLabelValues(operation, "success").Inc()
	logger.LogAPICall("archive", operation, "success", duration,
		zap.String("key", key),
		zap.Int("size_bytes", len(body)),
	)

	return key, nil
}
