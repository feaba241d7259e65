// Package s3mirror provides client initialization and configuration.
//
// The Client provides a high-level interface for copying files and
// directory trees between a local filesystem and Amazon S3, with
// configurable options for credentials, endpoints and logging.
package s3mirror

import (
	"context"
	"net/http"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mlcloudtools/s3mirror/errors"
	"github.com/mlcloudtools/s3mirror/internal/s3api"
)

// DefaultBucketEnv is the environment variable consulted when neither
// the operation nor the client configuration names a bucket.
const DefaultBucketEnv = "DEFAULT_S3_BUCKET_NAME"

// loadDotenv loads a .env file into the environment once per process,
// so DefaultBucketEnv can be set from a project-local file.
var loadDotenv sync.Once

// Client copies files between a local filesystem and S3.
// It is safe for concurrent use.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// mu protects concurrent access to client configuration
	mu sync.RWMutex

	// fs is the filesystem abstraction for local file operations
	fs fs.Filesystem

	// log receives per-file transfer decisions at debug level
	log logrus.FieldLogger

	// defaultBucket is used when an operation is called with an empty bucket
	defaultBucket string
}

// New creates a new mirror client with the provided options.
// It loads AWS credentials using the default credential chain
// and applies the specified configuration options.
//
// Example:
//
//	client, err := s3mirror.New(
//	    s3mirror.WithRegion("us-west-2"),
//	    s3mirror.WithDefaultBucket("my-bucket"),
//	)
func New(opts ...Option) (*Client, error) {
	clientCfg := &ClientConfig{
		MaxRetries: 3, // Default retry count
		Timeout:    0, // No timeout by default
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	// Start with default AWS configuration or use custom config
	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	// Apply region from options if specified, otherwise ensure a region is set
	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1" // AWS default region
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	// Handle custom HTTP client for timeout
	if clientCfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	// Initialize filesystem - use provided one or default to OS filesystem
	var filesystem fs.Filesystem
	if clientCfg.Filesystem != nil {
		filesystem = clientCfg.Filesystem
	} else {
		// Default to OS filesystem rooted at /
		filesystem = billy.NewOSFS("/")
	}

	logger := clientCfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	client := &Client{
		s3Client:      s3Client,
		config:        cfg,
		fs:            filesystem,
		log:           logger,
		defaultBucket: clientCfg.DefaultBucket,
	}

	return client, nil
}

// NewWithClient creates a new mirror client with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API, opts ...Option) *Client {
	clientCfg := &ClientConfig{}
	for _, opt := range opts {
		opt(clientCfg)
	}

	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/") // Default to OS filesystem
	}

	logger := clientCfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		s3Client:      s3Client,
		config:        aws.Config{},
		fs:            filesystem,
		log:           logger,
		defaultBucket: clientCfg.DefaultBucket,
	}
}

// SetFilesystem sets the filesystem implementation for the client.
// This is useful for testing or when the filesystem needs to be changed after creation.
func (c *Client) SetFilesystem(filesystem fs.Filesystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fs = filesystem
}

// Close releases any resources held by the client.
// Currently a no-op but included for future extensibility.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return nil
}

// filesystem returns the current filesystem under the read lock.
func (c *Client) filesystem() fs.Filesystem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fs
}

// resolveBucket picks the bucket for an operation: the explicit argument,
// the configured default, or the DEFAULT_S3_BUCKET_NAME environment
// variable (with .env loading), in that order.
func (c *Client) resolveBucket(op, bucket string) (string, error) {
	if bucket != "" {
		return bucket, nil
	}

	c.mu.RLock()
	fallback := c.defaultBucket
	c.mu.RUnlock()
	if fallback != "" {
		return fallback, nil
	}

	loadDotenv.Do(func() {
		// A missing .env file is fine; plain environment variables still apply.
		_ = godotenv.Load()
	})
	if env := os.Getenv(DefaultBucketEnv); env != "" {
		return env, nil
	}

	return "", errors.NewError(op, errors.ErrNoBucket).
		WithMessage("bucket must be set by argument, client option, or the " + DefaultBucketEnv + " environment variable")
}
