package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidConfig = errors.New("storage: invalid configuration")
	ErrNotConfigured = errors.New("storage: not configured")
	ErrNotFound      = errors.New("storage: object not found")
	ErrAccessDenied  = errors.New("storage: access denied")
	ErrEmptyFile     = errors.New("storage: file is empty")
	ErrUploadFailed  = errors.New("storage: upload failed")
	ErrDeleteFailed  = errors.New("storage: delete failed")
)

// Storage stores publicly readable objects.
type Storage interface {
	// Put writes body under key. size is sent as the content length.
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL of key.
	URL(key string) string
}

// RejectedError is returned by Upload when a file breaks the Policy.
// Message is safe to show to the user.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("storage: file rejected: %s", e.Message)
}

// Config holds S3 connection settings.
type Config struct {
	Bucket    string
	AccessKey string
	SecretKey string
	// Endpoint overrides the AWS endpoint for MinIO, R2 and friends.
	Endpoint string
	Region   string
	// PublicURL is the CDN prefix for object URLs. Defaults to the bucket URL.
	PublicURL string
	// PathStyle addresses the bucket as a path segment. MinIO needs it.
	PathStyle bool
}

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

func (c *Config) validate() error {
	switch {
	case c.Bucket == "":
		return fmt.Errorf("%w: bucket is required", ErrInvalidConfig)
	case c.AccessKey == "" || c.SecretKey == "":
		return fmt.Errorf("%w: credentials are required", ErrInvalidConfig)
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	return nil
}
