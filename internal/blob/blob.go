// Package blob stores uploaded files. The GCS backend is used in
// production; the Badger backend keeps files locally and in tests.
package blob

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get for unknown paths
var ErrNotFound = errors.New("blob: object not found")

// Object describes a stored file
type Object struct {
	Path    string
	Size    int64
	Updated time.Time
	URL     string
}

// Store is a bucket-addressed file store
type Store interface {
	// Put writes data at path and returns its public URL. Writing the same
	// path again replaces the object.
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// Get returns the object's bytes and content type
	Get(ctx context.Context, path string) ([]byte, string, error)
	// List returns the objects whose path starts with prefix
	List(ctx context.Context, prefix string) ([]Object, error)
	Close() error
}

// escapePath escapes each segment of a slash separated path
func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

func joinURL(base, p string) string {
	return strings.TrimSuffix(base, "/") + "/" + escapePath(strings.TrimPrefix(p, "/"))
}
