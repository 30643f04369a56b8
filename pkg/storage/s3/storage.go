package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/mosajjal/findinghec/pkg/models"
	"github.com/mosajjal/findinghec/pkg/storage"
)

// PutObjectAPI is the part of the S3 client the archive needs
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Storage implements S3 backend for storage
type Storage struct {
	client    PutObjectAPI
	bucket    string
	keyPrefix string
	now       func() time.Time
}

// NewStorage creates a new S3 storage backend
func NewStorage(cfg storage.StorageConfig, awsCfg aws.Config) (*Storage, error) {
	return NewStorageWithClient(cfg, s3.NewFromConfig(awsCfg))
}

// NewStorageWithClient creates a storage backend on top of an existing client
func NewStorageWithClient(cfg storage.StorageConfig, client PutObjectAPI) (*Storage, error) {
	if cfg.Provider != "" && cfg.Provider != storage.ProviderS3 {
		return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
	bucket, keyPrefix, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	return &Storage{
		client:    client,
		bucket:    bucket,
		keyPrefix: keyPrefix,
		now:       time.Now,
	}, nil
}

// ParseURL splits a virtual-hosted or path-style S3 URL into bucket and key prefix
func ParseURL(raw string) (bucket, keyPrefix string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 URL: %w", err)
	}

	switch {
	case u.Scheme == "s3":
		// s3://bucket/prefix
		bucket = u.Host
		keyPrefix = strings.Trim(u.Path, "/")
	case strings.Contains(u.Host, ".s3.") || strings.Contains(u.Host, ".s3-"):
		// Virtual-hosted-style URL: bucket.s3.region.amazonaws.com
		bucket = strings.SplitN(u.Host, ".", 2)[0]
		keyPrefix = strings.Trim(u.Path, "/")
	default:
		// Path-style URL: s3.region.amazonaws.com/bucket
		pathParts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 2)
		bucket = pathParts[0]
		if len(pathParts) > 1 {
			keyPrefix = pathParts[1]
		}
	}

	if bucket == "" {
		return "", "", fmt.Errorf("could not parse bucket name from URL: %s", raw)
	}
	return bucket, keyPrefix, nil
}

// Bucket returns the bucket events are written to
func (s *Storage) Bucket() string {
	return s.bucket
}

// Store writes the events as gzipped newline delimited HEC payloads to a
// single object.
func (s *Storage) Store(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}
	enc := json.NewEncoder(gz)
	for _, event := range events {
		if err := enc.Encode(event.Payload()); err != nil {
			gz.Close()
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to flush gzip: %w", err)
	}

	key := s.objectKey(s.now().UTC())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:          aws.String(s.bucket),
		Key:             aws.String(key),
		Body:            bytes.NewReader(buf.Bytes()),
		ContentType:     aws.String("application/x-ndjson"),
		ContentEncoding: aws.String("gzip"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

// objectKey is prefix/year/month/day/hour/timestamp-uuid.json.gz
func (s *Storage) objectKey(now time.Time) string {
	name := fmt.Sprintf("%d/%02d/%02d/%02d/%s-%s.json.gz",
		now.Year(),
		now.Month(),
		now.Day(),
		now.Hour(),
		now.Format("2006-01-02T15:04:05.000Z"),
		uuid.New().String(),
	)
	if s.keyPrefix == "" {
		return name
	}
	return s.keyPrefix + "/" + name
}

// Close cleans up resources
func (s *Storage) Close() error {
	return nil
}
