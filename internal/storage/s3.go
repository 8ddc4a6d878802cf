package storage

import (
	"alcyxob/gymtracker/internal/config"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// maxDocumentSize caps what ReadDocument will buffer.
const maxDocumentSize = 4 << 20

// objectGetter is the part of *s3.Client the source needs.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Source reads template documents from an S3-compatible backend.
type s3Source struct {
	client objectGetter
	logger *slog.Logger
}

// NewS3Storage creates a DocumentSource for s3://bucket/key locations.
func NewS3Storage(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (DocumentSource, error) {
	// Custom resolver for S3-compatible endpoints (like MinIO)
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if cfg.Endpoint != "" {
			return aws.Endpoint{
				PartitionID:   "aws",
				URL:           cfg.Endpoint,
				SigningRegion: cfg.Region,
			}, nil
		}
		// Fallback to default AWS endpoint resolution if no custom endpoint is set
		return aws.Endpoint{}, &aws.EndpointNotFoundError{}
	})

	opts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithEndpointResolverWithOptions(customResolver),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	logger.Info("S3 document storage initialized", "endpoint", cfg.Endpoint, "region", cfg.Region)
	return &s3Source{client: s3Client, logger: logger}, nil
}

// ReadDocument fetches the object at an s3://bucket/key location.
func (s *s3Source) ReadDocument(ctx context.Context, location string) ([]byte, error) {
	bucket, key, ok := ParseS3Location(location)
	if !ok {
		return nil, fmt.Errorf("invalid S3 location %q", location)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var noSuchBucket *types.NoSuchBucket
		if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
			return nil, fmt.Errorf("%s: %w", location, ErrObjectNotFound)
		}
		s.logger.Error("failed to get S3 object", "bucket", bucket, "key", key, "error", err)
		return nil, err
	}
	defer out.Body.Close()

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(out.Body, maxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if n > maxDocumentSize {
		return nil, fmt.Errorf("%s: document larger than %d bytes", location, maxDocumentSize)
	}
	return buf.Bytes(), nil
}
