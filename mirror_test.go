// Package s3mirror provides tests for the directory mirror operations.
package s3mirror

import (
	"context"
	"errors"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3errors "github.com/mlcloudtools/s3mirror/errors"
)

// seedTree writes a file tree rooted at dir into the filesystem.
func seedTree(t *testing.T, filesystem *billy.FS, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		require.NoError(t, filesystem.WriteFile(dir+"/"+rel, []byte(content), 0o644))
	}
}

func TestClient_UploadDir(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors the tree under the directory base name", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		seedTree(t, filesystem, "/data/models", map[string]string{
			"a.txt":     "alpha",
			"sub/b.txt": "bravo",
		})

		result, err := client.UploadDir(ctx, "test-bucket", "backups", "/data/models")
		require.NoError(t, err)

		assert.Equal(t, "backups/models", result.Root)
		assert.Equal(t, 2, result.FilesCopied)
		assert.Zero(t, result.FilesSkipped)
		assert.Equal(t, int64(10), result.BytesCopied)

		assert.Equal(t, []string{"backups/models/a.txt", "backups/models/sub/b.txt"}, bucket.Keys())

		data, _ := bucket.Object("backups/models/sub/b.txt")
		assert.Equal(t, "bravo", string(data))
	})

	t.Run("empty prefix places the tree at the bucket root", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		seedTree(t, filesystem, "/data/models", map[string]string{"a.txt": "alpha"})

		result, err := client.UploadDir(ctx, "test-bucket", "", "/data/models")
		require.NoError(t, err)

		assert.Equal(t, "models", result.Root)
		assert.Equal(t, []string{"models/a.txt"}, bucket.Keys())
	})

	t.Run("second run skips everything", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		seedTree(t, filesystem, "/data/models", map[string]string{
			"a.txt":     "alpha",
			"sub/b.txt": "bravo",
		})

		_, err := client.UploadDir(ctx, "test-bucket", "backups", "/data/models")
		require.NoError(t, err)

		result, err := client.UploadDir(ctx, "test-bucket", "backups", "/data/models")
		require.NoError(t, err)

		assert.Zero(t, result.FilesCopied)
		assert.Equal(t, 2, result.FilesSkipped)
		assert.Zero(t, result.BytesCopied)
		assert.Equal(t, 2, bucket.Len())
	})

	t.Run("partial destination skips existing and copies the rest", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		seedTree(t, filesystem, "/data/models", map[string]string{
			"a.txt":     "new",
			"sub/b.txt": "bravo",
		})
		bucket.Seed("backups/models/a.txt", []byte("old"))

		result, err := client.UploadDir(ctx, "test-bucket", "backups", "/data/models")
		require.NoError(t, err)

		assert.Equal(t, 1, result.FilesSkipped)
		assert.Equal(t, 1, result.FilesCopied)

		data, _ := bucket.Object("backups/models/a.txt")
		assert.Equal(t, "old", string(data), "skipped file must keep its old content")

		data, _ = bucket.Object("backups/models/sub/b.txt")
		assert.Equal(t, "bravo", string(data))
	})

	t.Run("overwrite replaces existing objects", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		seedTree(t, filesystem, "/data/models", map[string]string{"a.txt": "new"})
		bucket.Seed("backups/models/a.txt", []byte("old"))

		result, err := client.UploadDir(ctx, "test-bucket", "backups", "/data/models",
			WithOverwrite(true))
		require.NoError(t, err)

		assert.Equal(t, 1, result.FilesCopied)
		data, _ := bucket.Object("backups/models/a.txt")
		assert.Equal(t, "new", string(data))
	})

	t.Run("empty directory copies nothing", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		require.NoError(t, filesystem.MkdirAll("/data/empty", 0o755))

		result, err := client.UploadDir(ctx, "test-bucket", "backups", "/data/empty")
		require.NoError(t, err)

		assert.Zero(t, result.FilesCopied)
		assert.Zero(t, result.FilesSkipped)
		assert.Zero(t, bucket.Len())
	})

	t.Run("missing directory", func(t *testing.T) {
		client, _, _ := newTestClient(t)

		_, err := client.UploadDir(ctx, "test-bucket", "backups", "/data/missing")
		require.Error(t, err)
		assert.True(t, s3errors.IsNotFound(err))
	})

	t.Run("path is a file", func(t *testing.T) {
		client, _, filesystem := newTestClient(t)
		require.NoError(t, filesystem.WriteFile("/data/file.txt", []byte("x"), 0o644))

		_, err := client.UploadDir(ctx, "test-bucket", "backups", "/data/file.txt")
		require.Error(t, err)
		assert.True(t, s3errors.IsInvalidInput(err))
	})

	t.Run("first failure aborts and keeps earlier copies", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		seedTree(t, filesystem, "/data/models", map[string]string{
			"a.txt": "alpha",
			"b.txt": "bravo",
			"c.txt": "charlie",
		})
		bucket.PutErrs = map[string]error{
			"backups/models/b.txt": errors.New("access denied"),
		}

		_, err := client.UploadDir(ctx, "test-bucket", "backups", "/data/models")
		require.Error(t, err)
		assert.True(t, s3errors.IsTransferFailed(err))

		// Files are visited in sorted order, so a.txt lands and c.txt is never attempted.
		assert.Equal(t, []string{"backups/models/a.txt"}, bucket.Keys())
	})

	t.Run("cancelled context aborts the mirror", func(t *testing.T) {
		client, _, filesystem := newTestClient(t)
		seedTree(t, filesystem, "/data/models", map[string]string{"a.txt": "alpha"})

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.UploadDir(cancelled, "test-bucket", "backups", "/data/models")
		require.Error(t, err)
		assert.True(t, s3errors.IsTransferFailed(err))
	})
}

func TestClient_DownloadDir(t *testing.T) {
	ctx := context.Background()

	t.Run("mirrors the prefix under its base name", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		bucket.Seed("backups/models/a.txt", []byte("alpha"))
		bucket.Seed("backups/models/sub/b.txt", []byte("bravo"))
		require.NoError(t, filesystem.MkdirAll("/restore", 0o755))

		result, err := client.DownloadDir(ctx, "test-bucket", "backups/models", "/restore")
		require.NoError(t, err)

		assert.Equal(t, "/restore/models", result.Root)
		assert.Equal(t, 2, result.FilesCopied)
		assert.Equal(t, int64(10), result.BytesCopied)

		data, err := filesystem.ReadFile("/restore/models/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "alpha", string(data))

		data, err = filesystem.ReadFile("/restore/models/sub/b.txt")
		require.NoError(t, err)
		assert.Equal(t, "bravo", string(data))
	})

	t.Run("skips folder placeholder keys", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		bucket.Seed("backups/models/", []byte(""))
		bucket.Seed("backups/models/a.txt", []byte("alpha"))
		require.NoError(t, filesystem.MkdirAll("/restore", 0o755))

		result, err := client.DownloadDir(ctx, "test-bucket", "backups/models", "/restore")
		require.NoError(t, err)
		assert.Equal(t, 1, result.FilesCopied)
	})

	t.Run("second run skips everything", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		bucket.Seed("backups/models/a.txt", []byte("alpha"))
		require.NoError(t, filesystem.MkdirAll("/restore", 0o755))

		_, err := client.DownloadDir(ctx, "test-bucket", "backups/models", "/restore")
		require.NoError(t, err)

		result, err := client.DownloadDir(ctx, "test-bucket", "backups/models", "/restore")
		require.NoError(t, err)
		assert.Zero(t, result.FilesCopied)
		assert.Equal(t, 1, result.FilesSkipped)
	})

	t.Run("local directory must exist", func(t *testing.T) {
		client, bucket, _ := newTestClient(t)
		bucket.Seed("backups/models/a.txt", []byte("alpha"))

		_, err := client.DownloadDir(ctx, "test-bucket", "backups/models", "/missing")
		require.Error(t, err)
		assert.True(t, s3errors.IsInvalidInput(err))
	})

	t.Run("local path must be a directory", func(t *testing.T) {
		client, _, filesystem := newTestClient(t)
		require.NoError(t, filesystem.WriteFile("/restore", []byte("x"), 0o644))

		_, err := client.DownloadDir(ctx, "test-bucket", "backups/models", "/restore")
		require.Error(t, err)
		assert.True(t, s3errors.IsInvalidInput(err))
	})

	t.Run("empty prefix copies nothing", func(t *testing.T) {
		client, _, filesystem := newTestClient(t)
		require.NoError(t, filesystem.MkdirAll("/restore", 0o755))

		result, err := client.DownloadDir(ctx, "test-bucket", "backups/models", "/restore")
		require.NoError(t, err)
		assert.Zero(t, result.FilesCopied)
		assert.Zero(t, result.FilesSkipped)
	})

	t.Run("get failure aborts the mirror", func(t *testing.T) {
		client, bucket, filesystem := newTestClient(t)
		bucket.Seed("backups/models/a.txt", []byte("alpha"))
		bucket.Seed("backups/models/b.txt", []byte("bravo"))
		bucket.GetErrs = map[string]error{
			"backups/models/b.txt": errors.New("connection reset"),
		}
		require.NoError(t, filesystem.MkdirAll("/restore", 0o755))

		_, err := client.DownloadDir(ctx, "test-bucket", "backups/models", "/restore")
		require.Error(t, err)
		assert.True(t, s3errors.IsTransferFailed(err))

		// a.txt sorts first, so it was copied before the failure.
		data, err := filesystem.ReadFile("/restore/models/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "alpha", string(data))
	})
}

// TestMirror_RoundTrip uploads a tree and downloads it back, asserting the
// restored tree is byte-identical to the original.
func TestMirror_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client, _, filesystem := newTestClient(t)

	files := map[string]string{
		"a.txt":           "alpha",
		"sub/b.txt":       "bravo",
		"sub/inner/c.bin": "charlie",
	}
	seedTree(t, filesystem, "/data/models", files)
	require.NoError(t, filesystem.MkdirAll("/restore", 0o755))

	up, err := client.UploadDir(ctx, "test-bucket", "backups", "/data/models")
	require.NoError(t, err)
	assert.Equal(t, len(files), up.FilesCopied)

	down, err := client.DownloadDir(ctx, "test-bucket", "backups/models", "/restore")
	require.NoError(t, err)
	assert.Equal(t, len(files), down.FilesCopied)
	assert.Equal(t, up.BytesCopied, down.BytesCopied)

	for rel, content := range files {
		data, err := filesystem.ReadFile("/restore/models/" + rel)
		require.NoError(t, err, rel)
		assert.Equal(t, content, string(data), rel)
	}
}
