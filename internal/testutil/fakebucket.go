package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mlcloudtools/s3mirror/internal/s3api"
)

// FakeBucket is an in-memory implementation of the S3API interface that
// behaves like a single bucket. Unlike MockS3Client it is stateful:
// uploaded objects can be listed, headed and downloaded back, which lets
// mirror tests assert end-to-end behavior without a real bucket.
type FakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte

	// PutErrs forces PutObject to fail for specific keys.
	PutErrs map[string]error

	// GetErrs forces GetObject to fail for specific keys.
	GetErrs map[string]error

	// ListErr forces ListObjectsV2 to fail.
	ListErr error

	// HeadErr forces HeadObject to fail.
	HeadErr error
}

// NewFakeBucket creates an empty fake bucket.
func NewFakeBucket() *FakeBucket {
	return &FakeBucket{
		objects: make(map[string][]byte),
	}
}

// Seed stores an object directly, bypassing PutObject.
func (f *FakeBucket) Seed(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = append([]byte(nil), data...)
}

// Object returns the stored contents of a key.
func (f *FakeBucket) Object(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	return data, ok
}

// Keys returns all stored keys, sorted.
func (f *FakeBucket) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored objects.
func (f *FakeBucket) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// PutObject stores the object body under its key.
func (f *FakeBucket) PutObject(
	_ context.Context,
	params *s3.PutObjectInput,
	_ ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	key := aws.ToString(params.Key)

	f.mu.Lock()
	err := f.PutErrs[key]
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	data, readErr := io.ReadAll(params.Body)
	if readErr != nil {
		return nil, readErr
	}

	f.mu.Lock()
	f.objects[key] = data
	f.mu.Unlock()

	return &s3.PutObjectOutput{}, nil
}

// GetObject returns the stored object body, or NoSuchKey if absent.
func (f *FakeBucket) GetObject(
	_ context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	key := aws.ToString(params.Key)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.GetErrs[key]; err != nil {
		return nil, err
	}

	data, ok := f.objects[key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

// HeadObject reports object metadata, or NotFound if absent.
func (f *FakeBucket) HeadObject(
	_ context.Context,
	params *s3.HeadObjectInput,
	_ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.HeadErr != nil {
		return nil, f.HeadErr
	}

	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}

	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

// ListObjectsV2 lists stored keys with prefix filtering and pagination.
func (f *FakeBucket) ListObjectsV2(
	_ context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return nil, f.ListErr
	}

	prefix := aws.ToString(params.Prefix)
	after := aws.ToString(params.ContinuationToken)
	if s := aws.ToString(params.StartAfter); s > after {
		after = s
	}

	maxKeys := int32(1000)
	if params.MaxKeys != nil && *params.MaxKeys > 0 {
		maxKeys = *params.MaxKeys
	}

	var matched []string
	for key := range f.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		// ContinuationToken is the last key of the previous page.
		if after != "" && key <= after {
			continue
		}
		matched = append(matched, key)
	}
	sort.Strings(matched)

	output := &s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
	}

	truncated := int32(len(matched)) > maxKeys
	if truncated {
		matched = matched[:maxKeys]
		output.IsTruncated = aws.Bool(true)
		output.NextContinuationToken = aws.String(matched[len(matched)-1])
	}

	now := time.Now()
	for _, key := range matched {
		output.Contents = append(output.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(f.objects[key]))),
			LastModified: aws.Time(now),
			ETag:         aws.String(`"fake"`),
			StorageClass: types.ObjectStorageClassStandard,
		})
	}
	output.KeyCount = aws.Int32(int32(len(matched)))

	return output, nil
}

// Verify that FakeBucket implements the S3API interface
var _ s3api.S3API = (*FakeBucket)(nil)
