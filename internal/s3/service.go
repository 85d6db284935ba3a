package s3

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/flexprice/partnerbilling/internal/config"
	ierr "github.com/flexprice/partnerbilling/internal/errors"
	"github.com/flexprice/partnerbilling/internal/logger"
	"github.com/flexprice/partnerbilling/internal/sentry"
)

// Service archives raw usage import files
type Service interface {
	// UploadUsageImport stores the document and returns its object key
	UploadUsageImport(ctx context.Context, document *Document) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

type s3ServiceImpl struct {
	client *s3.Client
	config *config.S3Config
	sentry *sentry.Service
	logger *logger.Logger
}

// NewService returns nil when archiving is disabled
func NewService(config *config.Configuration, sentry *sentry.Service, logger *logger.Logger) (Service, error) {
	if !config.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(),
		awsConfig.WithRegion(config.S3.Region),
	)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load aws config").
			Mark(ierr.ErrHTTPClient)
	}

	return &s3ServiceImpl{
		config: &config.S3,
		client: s3.NewFromConfig(awsCfg),
		sentry: sentry,
		logger: logger,
	}, nil
}

// ObjectKey renders <prefix>/<YYYY-MM>/<reference>.<kind>
func ObjectKey(prefix string, document *Document) string {
	name := fmt.Sprintf("%s/%s.%s", document.Period, document.ID, document.Kind)
	if prefix == "" {
		return name
	}
	return fmt.Sprintf("%s/%s", prefix, name)
}

func (s *s3ServiceImpl) getContentType(kind DocumentKind) string {
	switch kind {
	case DocumentKindCSV:
		return "text/csv"
	case DocumentKindJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func (s *s3ServiceImpl) Exists(ctx context.Context, key string) (bool, error) {
	span, ctx := s.sentry.StartStorageSpan(ctx, "head_object", map[string]interface{}{
		"bucket": s.config.UsageImportBucket,
		"key":    key,
	})
	if span != nil {
		defer span.Finish()
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.UsageImportBucket),
		Key:    aws.String(key),
	})

	if err != nil {
		var nsk *types.NoSuchKey
		var nske *types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nske) {
			return false, nil
		}
		return false, ierr.WithError(err).
			WithHint("failed to check if usage import exists").
			Mark(ierr.ErrHTTPClient)
	}

	return true, nil
}

func (s *s3ServiceImpl) UploadUsageImport(ctx context.Context, document *Document) (string, error) {
	key := ObjectKey(s.config.KeyPrefix, document)

	span, ctx := s.sentry.StartStorageSpan(ctx, "put_object", map[string]interface{}{
		"bucket": s.config.UsageImportBucket,
		"key":    key,
		"size":   len(document.Data),
	})
	if span != nil {
		defer span.Finish()
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.UsageImportBucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(document.Data),
		ContentType: aws.String(s.getContentType(document.Kind)),
	})
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to upload usage import").
			WithMessagef("bucket:%s, key:%s", s.config.UsageImportBucket, key).
			Mark(ierr.ErrHTTPClient)
	}

	s.logger.Debugw("archived usage import",
		"bucket", s.config.UsageImportBucket,
		"key", key,
	)
	return key, nil
}
