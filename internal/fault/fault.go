// Package fault wraps a BlobStore to inject I/O errors in tests.
//
//	fs := fault.NewStore(blobstore.NewMemoryStore())
//	fs.AddRule(".tsv", fault.Fault{FailAfterBytes: 1024})
package fault

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hupe1980/megamerge/blobstore"
)

// ErrInjected is the error returned when a Fault has no Err of its own.
var ErrInjected = errors.New("fault: injected error")

// Fault describes how blobs matching a rule fail.
type Fault struct {
	FailOpen       bool
	FailAfterBytes int64 // fail writes past this many bytes, -1 disables
	FailOnSync     bool
	FailOnClose    bool
	Err            error
}

func (f Fault) err() error {
	if f.Err != nil {
		return f.Err
	}
	return ErrInjected
}

// Store is a BlobStore that fails according to its rules.
type Store struct {
	blobstore.BlobStore

	// Default applies to names that match no rule.
	Default Fault

	mu      sync.Mutex
	rules   map[string]Fault
	aborted []string
}

// NewStore wraps inner. Without rules the store behaves like inner.
func NewStore(inner blobstore.BlobStore) *Store {
	return &Store{
		BlobStore: inner,
		Default:   Fault{FailAfterBytes: -1},
		rules:     make(map[string]Fault),
	}
}

// AddRule applies f to names containing pattern. The longest matching
// pattern wins.
func (s *Store) AddRule(pattern string, f Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[pattern] = f
}

// Aborted returns the names of writers that were aborted, in order.
func (s *Store) Aborted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.aborted...)
}

func (s *Store) fault(name string) Fault {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, best := s.Default, -1
	for pattern, rule := range s.rules {
		if strings.Contains(name, pattern) && len(pattern) > best {
			f, best = rule, len(pattern)
		}
	}
	return f
}

// Open implements blobstore.BlobStore.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if f := s.fault(name); f.FailOpen {
		return nil, f.err()
	}
	return s.BlobStore.Open(ctx, name)
}

// Create implements blobstore.BlobStore.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	w, err := s.BlobStore.Create(ctx, name)
	if err != nil {
		return nil, err
	}
	return &writer{WritableBlob: w, store: s, name: name, fault: s.fault(name)}, nil
}

// Put implements blobstore.BlobStore.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	f := s.fault(name)
	if f.FailAfterBytes >= 0 && int64(len(data)) > f.FailAfterBytes {
		return f.err()
	}
	if f.FailOnClose {
		return f.err()
	}
	return s.BlobStore.Put(ctx, name, data)
}

var _ blobstore.Aborter = (*writer)(nil)

type writer struct {
	blobstore.WritableBlob
	store   *Store
	name    string
	fault   Fault
	written int64
}

func (w *writer) Write(p []byte) (int, error) {
	if w.fault.FailAfterBytes >= 0 && w.written+int64(len(p)) > w.fault.FailAfterBytes {
		return 0, w.fault.err()
	}
	n, err := w.WritableBlob.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *writer) Sync() error {
	if w.fault.FailOnSync {
		return w.fault.err()
	}
	return w.WritableBlob.Sync()
}

func (w *writer) Close() error {
	if w.fault.FailOnClose {
		_ = blobstore.Abort(w.WritableBlob)
		return w.fault.err()
	}
	return w.WritableBlob.Close()
}

// Abort records the name and aborts the inner writer.
func (w *writer) Abort() error {
	w.store.mu.Lock()
	w.store.aborted = append(w.store.aborted, w.name)
	w.store.mu.Unlock()
	return blobstore.Abort(w.WritableBlob)
}
