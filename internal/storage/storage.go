// Package storage provides object storage for generated site documents.
//
// Two implementations exist: LocalStorage writes to the filesystem for
// development, R2Storage writes to Cloudflare R2 (S3-compatible) for
// production. Generated documents are small HTML files, so the interface
// works on byte slices rather than streams.
package storage

import (
	"context"
	"time"
)

// Storage defines the interface for archived site documents.
//
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Store writes data at the specified key, replacing any existing
	// object. contentType is recorded as the object's MIME type.
	Store(ctx context.Context, key string, data []byte, contentType string) error

	// Retrieve returns the data at the specified key.
	// Returns ErrNotFound if the key doesn't exist.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object at the specified key.
	// Idempotent; no error is returned if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// URL returns a URL for accessing the object, presigned for the given
	// duration where the backend supports it.
	URL(ctx context.Context, key string, expires time.Duration) (string, error)

	// Exists checks whether an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)
}

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where objects are stored.
	BasePath string

	// BaseURL is the public URL prefix for accessing objects.
	// Example: "http://localhost:8080/files"
	BaseURL string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	// AccountID is the Cloudflare account ID.
	AccountID string

	// AccessKeyID is the R2 API access key ID.
	AccessKeyID string

	// SecretAccessKey is the R2 API secret key.
	SecretAccessKey string

	// BucketName is the name of the R2 bucket to use.
	BucketName string

	// PublicURL is the public URL for the bucket (if using a custom
	// domain). If empty, presigned URLs are used for all access.
	PublicURL string

	// Region is the AWS region string required by the SDK. R2 is
	// globally distributed; defaults to "auto".
	Region string
}

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"
)
