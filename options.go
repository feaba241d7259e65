// Package s3mirror provides functional options for configuring client behavior.
// These options follow the functional options pattern for clean, composable configuration.
package s3mirror

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/sirupsen/logrus"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) Option {
	return func(c *ClientConfig) {
		c.Region = region
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed SDK calls.
// Default is 3 retries. Set to 0 to disable retries.
func WithMaxRetries(maxRetries int) Option {
	return func(c *ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual S3 operations.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) Option {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
func WithEndpoint(endpoint string) Option {
	return func(c *ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
// Default is false (uses virtual-hosted style).
func WithForcePathStyle(forcePathStyle bool) Option {
	return func(c *ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
// Use this when you need fine-grained control over AWS SDK configuration.
func WithAWSConfig(config *aws.Config) Option {
	return func(c *ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithDefaultBucket sets a default bucket for operations that don't specify one.
// If no default bucket is configured, operations called with an empty bucket
// fall back to the DEFAULT_S3_BUCKET_NAME environment variable.
func WithDefaultBucket(bucket string) Option {
	return func(c *ClientConfig) {
		c.DefaultBucket = bucket
	}
}

// WithFilesystem sets a custom filesystem implementation for local file operations.
// This allows using in-memory filesystems for testing or virtual filesystems.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(c *ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger used for per-file transfer decisions.
// If not specified, the logrus standard logger is used.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// WithOverwrite makes a copy operation replace destination files that
// already exist. The default is false: existing destinations are
// reported as skipped and left untouched.
func WithOverwrite(overwrite bool) TransferOption {
	return func(c *TransferConfig) {
		c.Overwrite = overwrite
	}
}

// WithContentType sets the content type for uploaded objects,
// bypassing content detection.
func WithContentType(contentType string) TransferOption {
	return func(c *TransferConfig) {
		c.ContentType = contentType
	}
}

// WithMetadata attaches user metadata to uploaded objects.
func WithMetadata(metadata map[string]string) TransferOption {
	return func(c *TransferConfig) {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		for k, v := range metadata {
			c.Metadata[k] = v
		}
	}
}

// WithStorageClass sets the storage class for uploaded objects.
func WithStorageClass(storageClass StorageClass) TransferOption {
	return func(c *TransferConfig) {
		c.StorageClass = storageClass
	}
}

// WithACL sets the canned ACL for uploaded objects.
func WithACL(acl ObjectACL) TransferOption {
	return func(c *TransferConfig) {
		c.ACL = acl
	}
}

// WithDelimiter groups list results by common prefixes (e.g., "/" for directories).
func WithDelimiter(delimiter string) ListOption {
	return func(c *ListConfig) {
		c.Delimiter = delimiter
	}
}

// WithMaxKeys controls the page size of list operations (1-1000, default 1000).
func WithMaxKeys(maxKeys int32) ListOption {
	return func(c *ListConfig) {
		if maxKeys > 0 {
			c.MaxKeys = maxKeys
		}
	}
}

// WithStartAfter starts listing after the given key.
func WithStartAfter(startAfter string) ListOption {
	return func(c *ListConfig) {
		c.StartAfter = startAfter
	}
}

// WithContinuationToken continues a paginated listing from a previous page.
func WithContinuationToken(token string) ListOption {
	return func(c *ListConfig) {
		c.ContinuationToken = token
	}
}
