package cli

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/hupe1980/megamerge/blobstore"
	"github.com/hupe1980/megamerge/blobstore/minio"
	"github.com/hupe1980/megamerge/blobstore/s3"
)

// Location is a blob inside a store.
type Location struct {
	// URI is the location as given by the user.
	URI string
	// Base identifies the store root, e.g. "s3://bucket" or a directory.
	Base  string
	Store blobstore.BlobStore
	Name  string
}

// Sibling returns a location in the same store with name's extension
// replaced by suffix.
func (l Location) Sibling(suffix string) Location {
	name := strings.TrimSuffix(l.Name, path.Ext(l.Name)) + suffix
	uri := strings.TrimSuffix(l.URI, l.Name) + name
	return Location{URI: uri, Base: l.Base, Store: l.Store, Name: name}
}

// StoreOpener opens the store for a bucket.
type StoreOpener func(ctx context.Context, bucket string) (blobstore.BlobStore, error)

// Resolver maps URIs to stores. Plain paths resolve to a LocalStore on the
// parent directory.
type Resolver struct {
	openers map[string]StoreOpener
	cache   map[string]blobstore.BlobStore
}

// NewResolver registers the s3 and minio schemes from cfg.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		openers: map[string]StoreOpener{},
		cache:   map[string]blobstore.BlobStore{},
	}
	r.Register("s3", func(ctx context.Context, bucket string) (blobstore.BlobStore, error) {
		var opts []func(*s3.Options)
		if cfg.S3.Region != "" {
			opts = append(opts, s3.WithRegion(cfg.S3.Region))
		}
		if cfg.S3.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(cfg.S3.Endpoint))
		}
		return s3.New(ctx, bucket, opts...)
	})
	r.Register("minio", func(ctx context.Context, bucket string) (blobstore.BlobStore, error) {
		return minio.Dial(ctx, cfg.MinIO.store(bucket))
	})
	return r
}

// Register adds or replaces a scheme.
func (r *Resolver) Register(scheme string, open StoreOpener) {
	r.openers[scheme] = open
}

// Resolve parses uri. Stores are opened once per scheme and bucket.
func (r *Resolver) Resolve(ctx context.Context, uri string) (Location, error) {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		abs, err := filepath.Abs(uri)
		if err != nil {
			return Location{}, err
		}
		dir := filepath.Dir(abs)
		return Location{
			URI:   uri,
			Base:  dir,
			Store: r.cached("file://"+dir, func() blobstore.BlobStore { return blobstore.NewLocalStore(dir) }),
			Name:  filepath.Base(abs),
		}, nil
	}

	open, ok := r.openers[scheme]
	if !ok {
		return Location{}, fmt.Errorf("unsupported location scheme %q in %s", scheme, uri)
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, fmt.Errorf("parse %s: %w", uri, err)
	}
	bucket := u.Host
	name := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || name == "" {
		return Location{}, fmt.Errorf("location %s needs %s://bucket/key", rest, scheme)
	}

	base := scheme + "://" + bucket
	store, ok := r.cache[base]
	if !ok {
		store, err = open(ctx, bucket)
		if err != nil {
			return Location{}, fmt.Errorf("open %s: %w", base, err)
		}
		r.cache[base] = store
	}

	return Location{URI: uri, Base: base, Store: store, Name: name}, nil
}

func (r *Resolver) cached(key string, mk func() blobstore.BlobStore) blobstore.BlobStore {
	if s, ok := r.cache[key]; ok {
		return s
	}
	s := mk()
	r.cache[key] = s
	return s
}
