package blobstore

import (
	"context"
	"io"

	"github.com/hupe1980/megamerge/internal/resource"
)

// ThrottledStore wraps a BlobStore and limits write throughput.
type ThrottledStore struct {
	BlobStore
	rc *resource.Controller
}

// NewThrottledStore limits writes through inner to bytesPerSec. A
// non-positive limit returns inner unchanged.
func NewThrottledStore(inner BlobStore, bytesPerSec int64) BlobStore {
	if bytesPerSec <= 0 {
		return inner
	}
	return &ThrottledStore{
		BlobStore: inner,
		rc:        resource.NewController(resource.Config{IOLimitBytesPerSec: bytesPerSec}),
	}
}

// Create returns a writer that waits for IO budget before every write.
func (s *ThrottledStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	w, err := s.BlobStore.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{
		WritableBlob: w,
		w:            resource.NewRateLimitedWriter(ctx, s.rc, w),
	}, nil
}

// Put waits for IO budget, then writes through.
func (s *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.rc.AcquireIO(ctx, len(data)); err != nil {
		return err
	}
	return s.BlobStore.Put(ctx, name, data)
}

type throttledBlob struct {
	WritableBlob
	w io.Writer
}

func (b *throttledBlob) Write(p []byte) (int, error) {
	return b.w.Write(p)
}

func (b *throttledBlob) Abort() error {
	return Abort(b.WritableBlob)
}
