// Package s3mirror copies files and directory trees between a local
// filesystem and Amazon S3. It wraps AWS SDK v2 to provide a small,
// predictable interface for mirroring data sets in and out of a bucket.
//
// Key features:
//   - Simple, zero-configuration usage with AWS credential chain
//   - Progressive enhancement through functional options
//   - Directory mirroring that preserves relative paths
//   - Skip-existing semantics by default, opt-in overwrite
//   - Default bucket from client option or DEFAULT_S3_BUCKET_NAME
//   - Comprehensive error handling with context
//
// Example usage:
//
//	client, err := s3mirror.New(s3mirror.WithRegion("us-east-1"))
//	if err != nil {
//	    return err
//	}
//
//	// Upload a file
//	result, err := client.UploadFile(ctx, "my-bucket", "path/file.txt", "/local/file.txt")
//	if err != nil {
//	    return err
//	}
//
//	// Mirror a directory
//	mirrored, err := client.UploadDir(ctx, "my-bucket", "backups", "/local/dataset")
//	if err != nil {
//	    return err
//	}
package s3mirror
