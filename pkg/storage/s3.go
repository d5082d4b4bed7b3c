// Package storage uploads report exports to object storage and issues
// short-lived download links.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/apperrors"
)

// Exports saves CSV exports and returns signed download URLs.
type Exports interface {
	SaveCSV(ctx context.Context, agencyID uuid.UUID, filename, content string) (string, error)
}

// Config holds export storage settings.
type Config struct {
	Bucket   string
	Region   string
	Endpoint string
	// SignedURLTTL is how long download links stay valid.
	SignedURLTTL time.Duration
}

type s3Exports struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

var _ Exports = (*s3Exports)(nil)

// NewS3Exports creates an Exports backed by S3 or any S3-compatible store.
func NewS3Exports(ctx context.Context, cfg Config, logger *zap.Logger) (Exports, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := cfg.SignedURLTTL
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	return &s3Exports{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		ttl:     ttl,
		logger:  logger.Named("exports"),
		now:     time.Now,
	}, nil
}

// SaveCSV uploads the export under exports/reports/<agencyID>/<ts>-<filename>
// and returns a signed download URL. Upload and signing failures are
// infrastructure errors; callers surface them, they are never swallowed.
func (e *s3Exports) SaveCSV(ctx context.Context, agencyID uuid.UUID, filename, content string) (string, error) {
	key := e.objectKey(agencyID, filename)

	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(content),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		e.logger.Error("CSV upload failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("failed to upload CSV export: %w: %w", apperrors.ErrStorageUnavailable, err)
	}

	signed, err := e.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(e.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to sign export URL: %w: %w", apperrors.ErrStorageUnavailable, err)
	}

	e.logger.Info("Saved CSV export",
		zap.String("key", key),
		zap.Duration("url_ttl", e.ttl))
	return signed.URL, nil
}

// objectKey builds the export path. The timestamp has colons and dots
// stripped so the key is safe across S3-compatible stores.
func (e *s3Exports) objectKey(agencyID uuid.UUID, filename string) string {
	ts := e.now().UTC().Format("2006-01-02T150405Z")
	return fmt.Sprintf("exports/reports/%s/%s-%s", agencyID, ts, filename)
}
