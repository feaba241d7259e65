// Package s3mirror provides the mirror client and its core operations.
package s3mirror

import (
	"context"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"github.com/mlcloudtools/s3mirror/errors"
	"github.com/mlcloudtools/s3mirror/internal/validation"
)

const (
	// DefaultContentType is the default content type used when content type detection fails
	DefaultContentType = "application/octet-stream"
)

// UploadFile copies a local file to an S3 object.
//
// If the object already exists and overwrite is not enabled, the file is
// not transferred and the result reports StatusSkipped. An empty bucket
// falls back to the client default and then to the DEFAULT_S3_BUCKET_NAME
// environment variable.
//
// Errors:
//   - ErrNotFound: If the local file does not exist
//   - ErrInvalidInput: If the key is invalid or the path names a directory
//   - ErrNoBucket: If no bucket is given, configured, or in the environment
//   - ErrTransferFailed: If reading the file or writing the object fails
//
// Example:
//
//	result, err := client.UploadFile(ctx, "my-bucket", "docs/report.pdf", "/path/to/report.pdf")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s: %d bytes in %v\n", result.Status, result.Bytes, result.Duration)
func (c *Client) UploadFile(
	ctx context.Context,
	bucket, key, localPath string,
	opts ...TransferOption,
) (*TransferResult, error) {
	bucket, err := c.resolveBucket("uploadFile", bucket)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, errors.NewError("uploadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("uploadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if localPath == "" {
		return nil, errors.NewError("uploadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("local path cannot be empty")
	}

	filesystem := c.filesystem()

	info, err := filesystem.Stat(localPath)
	if err != nil {
		return nil, errors.NewNotFoundError("uploadFile", err).
			WithBucket(bucket).
			WithKey(key).
			WithPath(localPath)
	}
	if info.IsDir() {
		return nil, errors.NewError("uploadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("local path points to a directory, not a file")
	}

	config := newTransferConfig(opts)
	startTime := time.Now()
	result := &TransferResult{
		Source:      localPath,
		Destination: "s3://" + bucket + "/" + key,
	}

	if !config.Overwrite {
		exists, err := c.objectExists(ctx, bucket, key)
		if err != nil {
			return nil, errors.NewTransferError("uploadFile", err).WithBucket(bucket).WithKey(key)
		}
		if exists {
			c.logSkip(result)
			result.Status = StatusSkipped
			result.Duration = time.Since(startTime)
			return result, nil
		}
	}

	contentType := config.ContentType
	if contentType == "" {
		contentType = c.detectContentType(localPath)
	}

	file, err := filesystem.Open(localPath)
	if err != nil {
		return nil, errors.NewTransferError("uploadFile", err).
			WithBucket(bucket).
			WithKey(key).
			WithPath(localPath)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	}
	if len(config.Metadata) > 0 {
		input.Metadata = config.Metadata
	}
	if config.StorageClass != "" {
		input.StorageClass = types.StorageClass(config.StorageClass)
	}
	if config.ACL != "" {
		input.ACL = types.ObjectCannedACL(config.ACL)
	}

	if _, err := c.s3Client.PutObject(ctx, input); err != nil {
		return nil, errors.NewTransferError("uploadFile", err).
			WithBucket(bucket).
			WithKey(key).
			WithPath(localPath)
	}

	result.Status = StatusCopied
	result.Bytes = info.Size()
	result.Duration = time.Since(startTime)
	c.logCopy(result)
	return result, nil
}

// DownloadFile copies an S3 object to a local file, creating parent
// directories as needed.
//
// If the local file already exists and overwrite is not enabled, the object
// is not transferred and the result reports StatusSkipped.
//
// Errors:
//   - ErrNotFound: If the object does not exist
//   - ErrInvalidInput: If the key is invalid or the path is empty
//   - ErrNoBucket: If no bucket is given, configured, or in the environment
//   - ErrTransferFailed: If reading the object or writing the file fails
func (c *Client) DownloadFile(
	ctx context.Context,
	bucket, key, localPath string,
	opts ...TransferOption,
) (*TransferResult, error) {
	bucket, err := c.resolveBucket("downloadFile", bucket)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("downloadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if localPath == "" {
		return nil, errors.NewError("downloadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("local path cannot be empty")
	}

	filesystem := c.filesystem()

	config := newTransferConfig(opts)
	startTime := time.Now()
	result := &TransferResult{
		Source:      "s3://" + bucket + "/" + key,
		Destination: localPath,
	}

	if !config.Overwrite {
		exists, err := filesystem.Exists(localPath)
		if err != nil {
			return nil, errors.NewTransferError("downloadFile", err).WithPath(localPath)
		}
		if exists {
			c.logSkip(result)
			result.Status = StatusSkipped
			result.Duration = time.Since(startTime)
			return result, nil
		}
	}

	object, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundErr(err) {
			return nil, errors.NewNotFoundError("downloadFile", err).WithBucket(bucket).WithKey(key)
		}
		return nil, errors.NewTransferError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}
	defer object.Body.Close()

	if dir := filepath.Dir(localPath); dir != "." {
		if err := filesystem.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewTransferError("downloadFile", err).WithPath(localPath)
		}
	}

	file, err := filesystem.Create(localPath)
	if err != nil {
		return nil, errors.NewTransferError("downloadFile", err).WithPath(localPath)
	}

	written, err := io.Copy(file, object.Body)
	if err != nil {
		file.Close()
		return nil, errors.NewTransferError("downloadFile", err).
			WithBucket(bucket).
			WithKey(key).
			WithPath(localPath)
	}
	if err := file.Close(); err != nil {
		return nil, errors.NewTransferError("downloadFile", err).WithPath(localPath)
	}

	result.Status = StatusCopied
	result.Bytes = written
	result.Duration = time.Since(startTime)
	c.logCopy(result)
	return result, nil
}

// CopyLocalFile copies a file between two locations on the client
// filesystem, creating parent directories of the destination as needed.
// The same overwrite policy as the S3 operations applies: an existing
// destination is skipped unless overwrite is enabled.
//
// Errors:
//   - ErrNotFound: If the source file does not exist
//   - ErrInvalidInput: If either path is empty or the source is a directory
//   - ErrTransferFailed: If reading the source or writing the destination fails
func (c *Client) CopyLocalFile(
	ctx context.Context,
	srcPath, dstPath string,
	opts ...TransferOption,
) (*TransferResult, error) {
	if srcPath == "" || dstPath == "" {
		return nil, errors.NewError("copyLocalFile", errors.ErrInvalidInput).
			WithMessage("source and destination paths cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.NewTransferError("copyLocalFile", err)
	}

	filesystem := c.filesystem()

	info, err := filesystem.Stat(srcPath)
	if err != nil {
		return nil, errors.NewNotFoundError("copyLocalFile", err).WithPath(srcPath)
	}
	if info.IsDir() {
		return nil, errors.NewError("copyLocalFile", errors.ErrInvalidInput).
			WithPath(srcPath).
			WithMessage("source path points to a directory, not a file")
	}

	config := newTransferConfig(opts)
	startTime := time.Now()
	result := &TransferResult{
		Source:      srcPath,
		Destination: dstPath,
	}

	if !config.Overwrite {
		exists, err := filesystem.Exists(dstPath)
		if err != nil {
			return nil, errors.NewTransferError("copyLocalFile", err).WithPath(dstPath)
		}
		if exists {
			c.logSkip(result)
			result.Status = StatusSkipped
			result.Duration = time.Since(startTime)
			return result, nil
		}
	}

	src, err := filesystem.Open(srcPath)
	if err != nil {
		return nil, errors.NewTransferError("copyLocalFile", err).WithPath(srcPath)
	}
	defer src.Close()

	if dir := filepath.Dir(dstPath); dir != "." {
		if err := filesystem.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.NewTransferError("copyLocalFile", err).WithPath(dstPath)
		}
	}

	dst, err := filesystem.Create(dstPath)
	if err != nil {
		return nil, errors.NewTransferError("copyLocalFile", err).WithPath(dstPath)
	}

	written, err := io.Copy(dst, src)
	if err != nil {
		dst.Close()
		return nil, errors.NewTransferError("copyLocalFile", err).WithPath(dstPath)
	}
	if err := dst.Close(); err != nil {
		return nil, errors.NewTransferError("copyLocalFile", err).WithPath(dstPath)
	}

	result.Status = StatusCopied
	result.Bytes = written
	result.Duration = time.Since(startTime)
	c.logCopy(result)
	return result, nil
}

// UploadDir mirrors a local directory tree into an S3 prefix.
//
// The directory's own name becomes the last element of the destination
// prefix: uploading /data/models under the prefix "backups" writes keys
// under "backups/models/". Relative paths inside the tree are preserved.
// Files whose destination object already exists are skipped unless
// overwrite is enabled. Transfers run one file at a time; the first
// failure aborts the mirror and files already copied stay in place.
//
// Errors:
//   - ErrNotFound: If the local directory does not exist
//   - ErrInvalidInput: If the path names a file instead of a directory
//   - ErrNoBucket: If no bucket is given, configured, or in the environment
//   - ErrTransferFailed: If listing or any transfer fails
//
// Example:
//
//	result, err := client.UploadDir(ctx, "my-bucket", "backups", "/data/models")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("copied %d, skipped %d under %s\n",
//	    result.FilesCopied, result.FilesSkipped, result.Root)
func (c *Client) UploadDir(
	ctx context.Context,
	bucket, prefix, localDirPath string,
	opts ...TransferOption,
) (*MirrorResult, error) {
	bucket, err := c.resolveBucket("uploadDir", bucket)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, errors.NewError("uploadDir", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage(err.Error())
	}
	if localDirPath == "" {
		return nil, errors.NewError("uploadDir", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("local directory path cannot be empty")
	}

	filesystem := c.filesystem()

	info, err := filesystem.Stat(localDirPath)
	if err != nil {
		return nil, errors.NewNotFoundError("uploadDir", err).WithBucket(bucket).WithPath(localDirPath)
	}
	if !info.IsDir() {
		return nil, errors.NewError("uploadDir", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithPath(localDirPath).
			WithMessage("local path points to a file, not a directory")
	}

	config := newTransferConfig(opts)

	// The source directory is nested under the destination prefix by its
	// base name, mirroring how a recursive copy of a directory behaves.
	destRoot := path.Join(strings.TrimSuffix(prefix, "/"), filepath.Base(localDirPath))

	src := &localDir{fs: filesystem, root: localDirPath}
	dst := &bucketPrefix{client: c, bucket: bucket, prefix: destRoot, cfg: config}

	result, err := c.mirror(ctx, "uploadDir", src, dst, config, destRoot)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DownloadDir mirrors an S3 prefix into a local directory tree.
//
// The local directory must already exist. The prefix's last element
// becomes a subdirectory of it: downloading "backups/models" into /data
// writes files under /data/models/. Relative paths under the prefix are
// preserved. Files whose local destination already exists are skipped
// unless overwrite is enabled. Transfers run one file at a time; the
// first failure aborts the mirror and files already copied stay in place.
//
// Errors:
//   - ErrInvalidInput: If the local directory is missing or not a directory
//   - ErrNoBucket: If no bucket is given, configured, or in the environment
//   - ErrTransferFailed: If listing or any transfer fails
func (c *Client) DownloadDir(
	ctx context.Context,
	bucket, prefix, localDirPath string,
	opts ...TransferOption,
) (*MirrorResult, error) {
	bucket, err := c.resolveBucket("downloadDir", bucket)
	if err != nil {
		return nil, err
	}
	if prefix == "" {
		return nil, errors.NewError("downloadDir", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("prefix cannot be empty")
	}
	if localDirPath == "" {
		return nil, errors.NewError("downloadDir", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("local directory path cannot be empty")
	}

	filesystem := c.filesystem()

	info, err := filesystem.Stat(localDirPath)
	if err != nil {
		return nil, errors.NewError("downloadDir", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithPath(localDirPath).
			WithMessage("local directory must exist")
	}
	if !info.IsDir() {
		return nil, errors.NewError("downloadDir", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithPath(localDirPath).
			WithMessage("local path points to a file, not a directory")
	}

	config := newTransferConfig(opts)

	srcRoot := strings.TrimSuffix(prefix, "/")
	destRoot := filepath.Join(localDirPath, path.Base(srcRoot))

	src := &bucketPrefix{client: c, bucket: bucket, prefix: srcRoot, cfg: config}
	dst := &localDir{fs: filesystem, root: destRoot}

	result, err := c.mirror(ctx, "downloadDir", src, dst, config, destRoot)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListFiles returns the keys of every object under the given prefix,
// following pagination to the end. Keys ending in "/" (folder placeholders
// created by the S3 console) are included; callers that mirror directories
// use the endpoint listing instead, which filters them.
//
// Errors:
//   - ErrNoBucket: If no bucket is given, configured, or in the environment
//   - ErrTransferFailed: If the listing fails
func (c *Client) ListFiles(ctx context.Context, bucket, prefix string) ([]string, error) {
	bucket, err := c.resolveBucket("listFiles", bucket)
	if err != nil {
		return nil, err
	}

	var keys []string
	var continuationToken *string

	for {
		input := &s3.ListObjectsV2Input{
			Bucket:  aws.String(bucket),
			Prefix:  aws.String(prefix),
			MaxKeys: aws.Int32(1000),
		}
		if continuationToken != nil {
			input.ContinuationToken = continuationToken
		}

		result, err := c.s3Client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, errors.NewTransferError("listFiles", err).WithBucket(bucket)
		}

		for _, obj := range result.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}

		if !aws.ToBool(result.IsTruncated) {
			break
		}
		continuationToken = result.NextContinuationToken
	}

	return keys, nil
}

// List lists objects under a prefix with support for pagination and
// delimiter-based hierarchy navigation. Unlike ListFiles it returns a
// single page of results along with the continuation token for the next.
//
// Example:
//
//	result, err := client.List(ctx, "my-bucket", "photos/", s3mirror.WithMaxKeys(100))
//	if err != nil {
//	    return err
//	}
//	for _, obj := range result.Objects {
//	    fmt.Printf("%s (%d bytes)\n", obj.Key, obj.Size)
//	}
//	if result.IsTruncated {
//	    // Continue with result.NextContinuationToken
//	}
func (c *Client) List(ctx context.Context, bucket, prefix string, opts ...ListOption) (*ListResult, error) {
	bucket, err := c.resolveBucket("list", bucket)
	if err != nil {
		return nil, err
	}

	config := &ListConfig{
		MaxKeys: 1000, // Default max keys
	}
	for _, opt := range opts {
		opt(config)
	}

	startTime := time.Now()

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(config.MaxKeys),
	}
	if config.Delimiter != "" {
		input.Delimiter = aws.String(config.Delimiter)
	}
	if config.StartAfter != "" {
		input.StartAfter = aws.String(config.StartAfter)
	}
	if config.ContinuationToken != "" {
		input.ContinuationToken = aws.String(config.ContinuationToken)
	}

	result, err := c.s3Client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, errors.NewTransferError("list", err).WithBucket(bucket)
	}

	listResult := &ListResult{
		Objects:     make([]Object, 0, len(result.Contents)),
		IsTruncated: aws.ToBool(result.IsTruncated),
		Duration:    time.Since(startTime),
	}
	if result.NextContinuationToken != nil {
		listResult.NextContinuationToken = aws.ToString(result.NextContinuationToken)
	}

	for _, obj := range result.Contents {
		listResult.Objects = append(listResult.Objects, Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
			StorageClass: string(obj.StorageClass),
		})
	}

	return listResult, nil
}

// Exists checks if an object exists in S3 using a HEAD request.
// Returns true if the object exists, false if it doesn't exist.
// Returns an error for other types of failures (network issues, permissions, etc.).
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	bucket, err := c.resolveBucket("exists", bucket)
	if err != nil {
		return false, err
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, errors.NewError("exists", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	exists, err := c.objectExists(ctx, bucket, key)
	if err != nil {
		return false, errors.NewError("exists", err).WithBucket(bucket).WithKey(key)
	}
	return exists, nil
}

// objectExists performs the HEAD request behind Exists without input
// validation, for internal callers that already hold valid inputs.
func (c *Client) objectExists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFoundErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// isNotFoundErr reports whether an SDK error means the object is missing,
// by examining the error message.
func isNotFoundErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "NotFound") || strings.Contains(msg, "NoSuchKey")
}

// newTransferConfig applies transfer options over the defaults.
func newTransferConfig(opts []TransferOption) *TransferConfig {
	config := &TransferConfig{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

// logSkip records a skipped transfer at debug level.
func (c *Client) logSkip(result *TransferResult) {
	c.log.WithFields(logrus.Fields{
		"source":      result.Source,
		"destination": result.Destination,
	}).Debug("destination exists, skipping")
}

// logCopy records a completed transfer at debug level.
func (c *Client) logCopy(result *TransferResult) {
	c.log.WithFields(logrus.Fields{
		"source":      result.Source,
		"destination": result.Destination,
		"bytes":       result.Bytes,
	}).Debug("copied")
}

// detectContentType determines the content type using mimetype where possible,
// falling back to extension-based lookup when the path is not a local file.
func (c *Client) detectContentType(path string) string {
	filesystem := c.filesystem()

	// If the path points to an existing local file, prefer sniffing its content.
	info, err := filesystem.Stat(path)
	if err != nil || info.IsDir() {
		return c.detectContentTypeFromExtension(path)
	}

	file, err := filesystem.Open(path)
	if err != nil {
		return c.detectContentTypeFromExtension(path)
	}
	defer file.Close()

	// Read first 512 bytes for content detection
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String()
		}
	}

	return c.detectContentTypeFromExtension(path)
}

// detectContentTypeFromExtension detects content type from file extension
func (c *Client) detectContentTypeFromExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}
