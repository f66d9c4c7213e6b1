// Package storage provides the object store backends for uploaded images.
// The MinIO backend works with any S3-compatible provider; the S3 backend
// uses the AWS SDK and canned ACLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/djtrip/backend/internal/config"
)

// Storage is the interface for uploading and removing public objects.
type Storage interface {
	// Upload streams data to the store under the given key with public-read access.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
}

// publicReadACL is the canned ACL applied to every uploaded object.
const publicReadACL = "public-read"

// New builds the backend selected by cfg.StorageDriver.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverMinio:
		s, err := NewMinioStorage(ctx, MinioOptions{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			Region:    cfg.StorageRegion,
			UseSSL:    cfg.StorageUseSSL,
		}, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverS3:
		s, err := NewS3Storage(ctx, S3Options{
			Endpoint:  s3Endpoint(cfg.StorageEndpoint, cfg.StorageUseSSL),
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			Region:    cfg.StorageRegion,
		}, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// s3Endpoint turns a host[:port] into the URL the AWS SDK expects.
// An empty endpoint keeps the SDK's regional default.
func s3Endpoint(endpoint string, useSSL bool) string {
	if endpoint == "" || hasScheme(endpoint) {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func hasScheme(endpoint string) bool {
	return strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://")
}
