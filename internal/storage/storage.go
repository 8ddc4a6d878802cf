package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrObjectNotFound reports a document that does not exist at its location.
var ErrObjectNotFound = errors.New("object not found in storage")

// DocumentSource reads template documents by location.
type DocumentSource interface {
	ReadDocument(ctx context.Context, location string) ([]byte, error)
}

const s3Scheme = "s3://"

// ParseS3Location splits "s3://bucket/key" into its bucket and key.
func ParseS3Location(location string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(location, s3Scheme) {
		return "", "", false
	}
	bucket, key, found := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// LocalSource reads documents from the filesystem.
type LocalSource struct{}

func (LocalSource) ReadDocument(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(location)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", location, ErrObjectNotFound)
	}
	return data, err
}

// Router sends s3:// locations to S3 and everything else to Local.
// S3 may be nil when no object storage is configured.
type Router struct {
	Local DocumentSource
	S3    DocumentSource
}

func (r Router) ReadDocument(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, s3Scheme) {
		if r.S3 == nil {
			return nil, fmt.Errorf("no S3 storage configured for %s", location)
		}
		return r.S3.ReadDocument(ctx, location)
	}
	return r.Local.ReadDocument(ctx, location)
}
