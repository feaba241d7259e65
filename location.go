// Package s3mirror provides transfer endpoints: the two places a mirror
// can read from or write to. A local directory and a bucket prefix expose
// the same small surface, so the mirror engine never cares which side is
// which.
package s3mirror

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// endpoint is one side of a mirror operation. Paths are relative to the
// endpoint root and always slash-separated, regardless of the OS.
type endpoint interface {
	// list enumerates the files under the endpoint root, sorted.
	list(ctx context.Context) ([]string, error)

	// exists reports whether the file already exists at the endpoint.
	exists(ctx context.Context, rel string) (bool, error)

	// open returns the file contents and size for reading.
	open(ctx context.Context, rel string) (io.ReadCloser, int64, error)

	// write stores the file contents, creating parents as needed.
	write(ctx context.Context, rel string, body io.Reader, size int64) error

	// locate renders the absolute address of a file for logs and results.
	locate(rel string) string
}

// localDir is an endpoint rooted at a directory on the client filesystem.
type localDir struct {
	fs   fs.Filesystem
	root string
}

func (d *localDir) list(_ context.Context) ([]string, error) {
	var files []string
	err := d.fs.Walk(d.root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (d *localDir) exists(_ context.Context, rel string) (bool, error) {
	return d.fs.Exists(d.locate(rel))
}

func (d *localDir) open(_ context.Context, rel string) (io.ReadCloser, int64, error) {
	p := d.locate(rel)
	info, err := d.fs.Stat(p)
	if err != nil {
		return nil, 0, err
	}
	f, err := d.fs.Open(p)
	if err != nil {
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (d *localDir) write(_ context.Context, rel string, body io.Reader, _ int64) error {
	p := d.locate(rel)
	if dir := filepath.Dir(p); dir != "." {
		if err := d.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := d.fs.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (d *localDir) locate(rel string) string {
	return filepath.Join(d.root, filepath.FromSlash(rel))
}

// bucketPrefix is an endpoint rooted at a key prefix in an S3 bucket.
// Uploads through it carry the per-operation transfer settings.
type bucketPrefix struct {
	client *Client
	bucket string
	prefix string
	cfg    *TransferConfig
}

func (b *bucketPrefix) list(ctx context.Context) ([]string, error) {
	root := strings.TrimSuffix(b.prefix, "/")
	listPrefix := root
	if listPrefix != "" {
		listPrefix += "/"
	}

	var files []string
	var continuationToken *string

	for {
		input := &s3.ListObjectsV2Input{
			Bucket:  aws.String(b.bucket),
			Prefix:  aws.String(listPrefix),
			MaxKeys: aws.Int32(1000),
		}
		if continuationToken != nil {
			input.ContinuationToken = continuationToken
		}

		result, err := b.client.s3Client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, obj := range result.Contents {
			key := aws.ToString(obj.Key)
			// Folder placeholders created by the S3 console end in "/"
			if strings.HasSuffix(key, "/") {
				continue
			}
			files = append(files, strings.TrimPrefix(key, listPrefix))
		}

		if !aws.ToBool(result.IsTruncated) {
			break
		}
		continuationToken = result.NextContinuationToken
	}

	sort.Strings(files)
	return files, nil
}

func (b *bucketPrefix) exists(ctx context.Context, rel string) (bool, error) {
	return b.client.objectExists(ctx, b.bucket, b.key(rel))
}

func (b *bucketPrefix) open(ctx context.Context, rel string) (io.ReadCloser, int64, error) {
	result, err := b.client.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key(rel)),
	})
	if err != nil {
		return nil, 0, err
	}
	return result.Body, aws.ToInt64(result.ContentLength), nil
}

func (b *bucketPrefix) write(ctx context.Context, rel string, body io.Reader, size int64) error {
	key := b.key(rel)

	contentType := b.cfg.ContentType
	if contentType == "" {
		contentType = b.client.detectContentTypeFromExtension(key)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if len(b.cfg.Metadata) > 0 {
		input.Metadata = b.cfg.Metadata
	}
	if b.cfg.StorageClass != "" {
		input.StorageClass = types.StorageClass(b.cfg.StorageClass)
	}
	if b.cfg.ACL != "" {
		input.ACL = types.ObjectCannedACL(b.cfg.ACL)
	}

	_, err := b.client.s3Client.PutObject(ctx, input)
	return err
}

func (b *bucketPrefix) key(rel string) string {
	return path.Join(strings.TrimSuffix(b.prefix, "/"), rel)
}

func (b *bucketPrefix) locate(rel string) string {
	return "s3://" + b.bucket + "/" + b.key(rel)
}
