package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Max time spent fetching a remote resource.
var FetchTimeout = 30 * time.Second

var (
	ErrUnsupportedScheme = errors.New("resource: unsupported scheme")
	ErrFetchFailed       = errors.New("resource: could not fetch remote resource")
)

// A scene asset read from a local file, an http(s) URL or an in-memory stream.
type Resource struct {
	io.ReadCloser

	location string
	remote   bool
}

// Get the file path or URL this resource was opened from.
func (r *Resource) Path() string {
	return r.location
}

// Get the lower-cased extension of the resource path. Query strings of
// remote resources are ignored.
func (r *Resource) Ext() string {
	if r.remote {
		loc := r.location
		if idx := strings.IndexAny(loc, "?#"); idx >= 0 {
			loc = loc[:idx]
		}
		return strings.ToLower(path.Ext(loc))
	}
	return strings.ToLower(filepath.Ext(r.location))
}

// Returns true if the resource is streamed over http(s).
func (r *Resource) IsRemote() bool {
	return r.remote
}

// Open a local file or fetch an http(s) URL. The caller must close the
// returned resource.
func NewResource(location string) (*Resource, error) {
	return NewResourceContext(context.Background(), location)
}

// Open a resource; remote fetches are bound to ctx and FetchTimeout.
func NewResourceContext(ctx context.Context, location string) (*Resource, error) {
	scheme, _, hasScheme := strings.Cut(location, "://")
	if !hasScheme {
		f, err := os.Open(filepath.Clean(location))
		if err != nil {
			return nil, err
		}
		return &Resource{ReadCloser: f, location: location}, nil
	}

	switch strings.ToLower(scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedScheme, scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		cancel()
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w %s: %w", ErrFetchFailed, location, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w %s: status %d", ErrFetchFailed, location, resp.StatusCode)
	}

	return &Resource{
		ReadCloser: &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
		location:   location,
		remote:     true,
	}, nil
}

// Wrap an in-memory stream; name is used for format detection.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	return &Resource{ReadCloser: io.NopCloser(source), location: name}
}

// Releases the fetch context once the response body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
