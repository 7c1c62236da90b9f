// Package store is the blob boundary every ledger document and model
// artifact goes through. Writes replace the whole object; there is no
// compare-and-swap, so a single active writer is assumed.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("store: key not found")

// Store is a key -> bytes object store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// Options tune backend construction.
type Options struct {
	// Prefix is prepended to every key, e.g. "staging/".
	Prefix string
	// AWSRegion and S3Endpoint apply to s3:// URLs only.
	AWSRegion  string
	S3Endpoint string
}

// Open builds a Store from a URL. Supported schemes are mem, file, redis,
// rediss, postgres, postgresql, sqlite and s3.
func Open(ctx context.Context, rawURL string, opts Options) (Store, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}

	var s Store
	switch u.Scheme {
	case "mem", "memory":
		s = NewMemory()
	case "file":
		s, err = NewFile(localPath(u))
	case "redis", "rediss":
		s, err = NewRedis(ctx, rawURL)
	case "postgres", "postgresql":
		s, err = NewPostgres(ctx, rawURL)
	case "sqlite":
		s, err = NewSQLite(ctx, localPath(u))
	case "s3":
		s, err = NewS3(ctx, S3Config{
			Bucket:   u.Host,
			Prefix:   strings.TrimPrefix(u.Path, "/"),
			Region:   opts.AWSRegion,
			Endpoint: opts.S3Endpoint,
		})
	default:
		return nil, fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}
	if opts.Prefix != "" {
		s = WithPrefix(s, opts.Prefix)
	}
	return s, nil
}

// localPath accepts both file:///abs/dir and file://./rel/dir forms.
func localPath(u *url.URL) string {
	if u.Host != "" && u.Host != "localhost" {
		return u.Host + u.Path
	}
	return u.Path
}

type prefixed struct {
	Store
	prefix string
}

// WithPrefix namespaces every key of s under prefix.
func WithPrefix(s Store, prefix string) Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &prefixed{Store: s, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.Store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Put(ctx context.Context, key string, data []byte) error {
	return p.Store.Put(ctx, p.prefix+key, data)
}

func (p *prefixed) Exists(ctx context.Context, key string) (bool, error) {
	return p.Store.Exists(ctx, p.prefix+key)
}

func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("store: empty key")
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return fmt.Errorf("store: invalid key %q", key)
		}
	}
	return nil
}
