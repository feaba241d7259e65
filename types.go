// Package s3mirror provides shared type definitions: configuration structs
// consumed by the functional options, and the result types returned by
// transfer and list operations.
package s3mirror

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/sirupsen/logrus"
)

// StorageClass represents the S3 storage class for uploaded objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassReducedRedundancy provides reduced redundancy storage
	StorageClassReducedRedundancy StorageClass = "REDUCED_REDUNDANCY"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA provides one zone infrequent access storage
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"

	// StorageClassDeepArchive provides Deep Archive storage
	StorageClassDeepArchive StorageClass = "DEEP_ARCHIVE"
)

// ObjectACL represents the access control list for uploaded objects.
type ObjectACL string

// Predefined object ACLs
const (
	// ACLPrivate grants private access (default)
	ACLPrivate ObjectACL = "private"

	// ACLPublicRead grants public read access
	ACLPublicRead ObjectACL = "public-read"

	// ACLAuthenticatedRead grants authenticated users read access
	ACLAuthenticatedRead ObjectACL = "authenticated-read"

	// ACLBucketOwnerRead grants bucket owner read access
	ACLBucketOwnerRead ObjectACL = "bucket-owner-read"

	// ACLBucketOwnerFullControl grants bucket owner full control
	ACLBucketOwnerFullControl ObjectACL = "bucket-owner-full-control"
)

// TransferStatus reports what a copy operation did with its file.
type TransferStatus string

const (
	// StatusCopied means the file was transferred to the destination
	StatusCopied TransferStatus = "copied"

	// StatusSkipped means the destination already existed and the
	// overwrite policy left it untouched
	StatusSkipped TransferStatus = "skipped"
)

// Object represents an S3 object with its basic metadata.
type Object struct {
	// Key is the S3 object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string

	// StorageClass is the S3 storage class
	StorageClass string
}

// TransferResult contains the result of a single-file copy operation.
type TransferResult struct {
	// Source describes where the file was read from
	Source string

	// Destination describes where the file was written to
	Destination string

	// Status reports whether the file was copied or skipped
	Status TransferStatus

	// Bytes is the number of bytes transferred (zero when skipped)
	Bytes int64

	// Duration is how long the operation took
	Duration time.Duration
}

// MirrorResult contains the result of a directory mirror operation.
type MirrorResult struct {
	// Root is the final destination root: the object key prefix for
	// uploads, the local directory for downloads
	Root string

	// FilesCopied is the number of files transferred
	FilesCopied int

	// FilesSkipped is the number of files left untouched because the
	// destination already existed
	FilesSkipped int

	// BytesCopied is the total bytes transferred
	BytesCopied int64

	// Duration is how long the mirror took
	Duration time.Duration
}

// ListResult contains one page of a list operation.
type ListResult struct {
	// Objects contains the listed objects
	Objects []Object

	// IsTruncated indicates if the results were truncated
	IsTruncated bool

	// NextContinuationToken is the token for the next page of results
	NextContinuationToken string

	// Duration is how long the operation took
	Duration time.Duration
}

// Configuration types for functional options

// ClientConfig holds configuration for the mirror client.
type ClientConfig struct {
	Region          string
	Endpoint        string
	MaxRetries      int
	Timeout         time.Duration
	ForcePathStyle  bool
	CustomAWSConfig *aws.Config
	DefaultBucket   string
	Filesystem      fs.Filesystem // Filesystem abstraction for local file operations
	Logger          logrus.FieldLogger
}

// TransferConfig holds the per-operation settings forwarded to the
// storage client. It replaces an open-ended option bag with named,
// typed fields.
type TransferConfig struct {
	// Overwrite replaces existing destination files. When false
	// (the default), existing destinations are skipped.
	Overwrite bool

	// ContentType overrides content detection for uploads
	ContentType string

	// Metadata is attached to uploaded objects
	Metadata map[string]string

	// StorageClass selects the storage class for uploads
	StorageClass StorageClass

	// ACL sets the canned ACL for uploads
	ACL ObjectACL
}

// ListConfig holds configuration for list operations via functional options.
type ListConfig struct {
	Delimiter         string
	MaxKeys           int32
	StartAfter        string
	ContinuationToken string
}

// Option is a functional option for configuring the mirror client.
type (
	Option func(*ClientConfig)
	// TransferOption is a functional option for configuring copy operations.
	TransferOption func(*TransferConfig)
	// ListOption is a functional option for configuring list operations.
	ListOption func(*ListConfig)
)
