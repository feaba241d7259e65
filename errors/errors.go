// Package errors provides error types and handling for mirror operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a mirror operation error with context about what failed.
// It wraps the underlying AWS SDK or filesystem error with the operation
// name and the bucket/key or local path involved.
type Error struct {
	// Op is the operation that failed (e.g., "uploadFile", "downloadDir")
	Op string

	// Bucket is the S3 bucket name (if applicable)
	Bucket string

	// Key is the S3 object key (if applicable)
	Key string

	// Path is the local file path (if applicable)
	Path string

	// Err is the underlying error from the AWS SDK or filesystem
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	switch {
	case e.Bucket != "" && e.Key != "" && e.Path != "":
		return fmt.Sprintf("s3mirror.%s %s/%s <-> %s: %v", e.Op, e.Bucket, e.Key, e.Path, e.Err)
	case e.Bucket != "" && e.Key != "":
		return fmt.Sprintf("s3mirror.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("s3mirror.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	case e.Path != "":
		return fmt.Sprintf("s3mirror.%s %s: %v", e.Op, e.Path, e.Err)
	default:
		return fmt.Sprintf("s3mirror.%s: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithPath adds local path context to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewTransferError creates an Error whose cause matches ErrTransferFailed.
// Use for I/O failures while copying: unreadable source, unwritable
// destination, missing credentials, missing bucket.
func NewTransferError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%w: %w", ErrTransferFailed, err),
	}
}

// NewNotFoundError creates an Error whose cause matches ErrNotFound.
// Use when the source of a copy does not exist.
func NewNotFoundError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf("%w: %w", ErrNotFound, err),
	}
}

// Sentinel errors for common mirror operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrNotFound indicates that the source of a copy does not exist,
	// whether a local file or an S3 object
	ErrNotFound = errors.New("s3mirror: source not found")

	// ErrTransferFailed indicates an I/O failure while copying a file
	ErrTransferFailed = errors.New("s3mirror: transfer failed")

	// ErrNoBucket indicates that no bucket name was given and none is
	// configured on the client or in the environment
	ErrNoBucket = errors.New("s3mirror: no bucket name configured")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("s3mirror: invalid input")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("s3mirror: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("s3mirror: invalid object key")
)

// IsNotFound checks if an error indicates a missing copy source.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransferFailed checks if an error indicates a failed transfer.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsTransferFailed(err error) bool {
	return errors.Is(err, ErrTransferFailed)
}

// IsNoBucket checks if an error indicates a missing bucket configuration.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsNoBucket(err error) bool {
	return errors.Is(err, ErrNoBucket)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
