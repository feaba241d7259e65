package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bucket, key and path",
			err:  &Error{Op: "uploadFile", Bucket: "b", Key: "k", Path: "/p", Err: cause},
			want: "s3mirror.uploadFile b/k <-> /p: boom",
		},
		{
			name: "bucket and key",
			err:  &Error{Op: "downloadFile", Bucket: "b", Key: "k", Err: cause},
			want: "s3mirror.downloadFile b/k: boom",
		},
		{
			name: "bucket only",
			err:  &Error{Op: "listFiles", Bucket: "b", Err: cause},
			want: "s3mirror.listFiles bucket b: boom",
		},
		{
			name: "path only",
			err:  &Error{Op: "copyLocalFile", Path: "/p", Err: cause},
			want: "s3mirror.copyLocalFile /p: boom",
		},
		{
			name: "operation only",
			err:  &Error{Op: "uploadDir", Err: cause},
			want: "s3mirror.uploadDir: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewError("op", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestError_With(t *testing.T) {
	err := NewError("op", errors.New("boom")).
		WithBucket("b").
		WithKey("k").
		WithPath("/p").
		WithMessage("context")

	assert.Equal(t, "b", err.Bucket)
	assert.Equal(t, "k", err.Key)
	assert.Equal(t, "/p", err.Path)
	assert.Contains(t, err.Error(), "context: boom")
}

func TestSentinelMatching(t *testing.T) {
	cause := errors.New("underlying")

	t.Run("transfer error", func(t *testing.T) {
		err := NewTransferError("uploadDir", cause)
		assert.True(t, IsTransferFailed(err))
		assert.True(t, errors.Is(err, cause), "the cause must stay reachable")
		assert.False(t, IsNotFound(err))
	})

	t.Run("not found error", func(t *testing.T) {
		err := NewNotFoundError("downloadFile", cause)
		assert.True(t, IsNotFound(err))
		assert.True(t, errors.Is(err, cause))
		assert.False(t, IsTransferFailed(err))
	})

	t.Run("no bucket", func(t *testing.T) {
		err := NewError("uploadFile", ErrNoBucket)
		assert.True(t, IsNoBucket(err))
	})

	t.Run("invalid input", func(t *testing.T) {
		err := NewError("uploadFile", ErrInvalidInput).WithMessage("bad key")
		assert.True(t, IsInvalidInput(err))
	})

	t.Run("wrapped another level", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", NewTransferError("op", cause))
		require.Error(t, err)
		assert.True(t, IsTransferFailed(err))
	})
}
