package templating

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Fetcher loads the markup of a template document.
//
// Implementations must return an error for anything other than a
// successful load; the resolver wraps it in a FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, path string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// FSFetcher reads template documents from a file system. Document paths are
// interpreted relative to the file system root; a leading '/' is ignored.
type FSFetcher struct {
	FS fs.FS
}

// NewFSFetcher creates an FSFetcher for fsys.
func NewFSFetcher(fsys fs.FS) *FSFetcher {
	return &FSFetcher{FS: fsys}
}

// Fetch reads the document at p.
func (f *FSFetcher) Fetch(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" {
		return "", fmt.Errorf("invalid document path '%s'", p)
	}

	data, err := fs.ReadFile(f.FS, name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}
