package objstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// ObjectStoreMock is an ObjectStore whose methods are supplied as funcs.
type ObjectStoreMock struct {
	PutFunc    func(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error
	GetFunc    func(ctx context.Context, bucket, obj string) (io.ReadCloser, error)
	DeleteFunc func(ctx context.Context, bucket, obj string) error
}

func (m *ObjectStoreMock) Put(ctx context.Context, bucket, obj string, reader io.Reader, size int64, contentType string) error {
	return m.PutFunc(ctx, bucket, obj, reader, size, contentType)
}

func (m *ObjectStoreMock) Get(ctx context.Context, bucket, obj string) (io.ReadCloser, error) {
	return m.GetFunc(ctx, bucket, obj)
}

func (m *ObjectStoreMock) Delete(ctx context.Context, bucket, obj string) error {
	return m.DeleteFunc(ctx, bucket, obj)
}

// NewMemoryObjectStoreMock returns a mock that keeps objects in memory,
// keyed by "bucket/obj".
func NewMemoryObjectStoreMock() (*ObjectStoreMock, map[string][]byte) {
	var mu sync.Mutex
	objects := map[string][]byte{}

	return &ObjectStoreMock{
		PutFunc: func(_ context.Context, bucket, obj string, reader io.Reader, _ int64, _ string) error {
			data, err := io.ReadAll(reader)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			objects[bucket+"/"+obj] = data
			return nil
		},
		GetFunc: func(_ context.Context, bucket, obj string) (io.ReadCloser, error) {
			mu.Lock()
			defer mu.Unlock()
			data, ok := objects[bucket+"/"+obj]
			if !ok {
				return nil, fmt.Errorf("object %s/%s not found", bucket, obj)
			}
			return io.NopCloser(bytes.NewReader(data)), nil
		},
		DeleteFunc: func(_ context.Context, bucket, obj string) error {
			mu.Lock()
			defer mu.Unlock()
			delete(objects, bucket+"/"+obj)
			return nil
		},
	}, objects
}
