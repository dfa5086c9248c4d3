package blobstore

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbort(t *testing.T) {
	stores := map[string]func(t *testing.T) BlobStore{
		"local":  func(t *testing.T) BlobStore { return NewLocalStore(t.TempDir()) },
		"memory": func(*testing.T) BlobStore { return NewMemoryStore() },
	}

	for name, mk := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := mk(t)

			w, err := store.Create(ctx, "runs/partial.tsv")
			require.NoError(t, err)
			_, err = w.Write([]byte("segment\tdata_index\n0\t1\n"))
			require.NoError(t, err)

			require.NoError(t, Abort(w))
			require.NoError(t, w.Close())

			_, err = store.Open(ctx, "runs/partial.tsv")
			assert.ErrorIs(t, err, ErrNotFound)

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestAbort_LeavesExistingBlob(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())
	require.NoError(t, store.Put(ctx, "out.tsv", []byte("v1")))

	w, err := store.Create(ctx, "out.tsv")
	require.NoError(t, err)
	_, err = w.Write([]byte("v2 partial"))
	require.NoError(t, err)
	require.NoError(t, Abort(w))

	got, err := ReadAll(ctx, store, "out.tsv")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(got))

	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type closeOnly struct{ closed bool }

func (c *closeOnly) Close() error {
	c.closed = true
	return nil
}

func TestAbort_FallsBackToClose(t *testing.T) {
	var c closeOnly
	require.NoError(t, Abort(io.Closer(&c)))
	assert.True(t, c.closed)
}
