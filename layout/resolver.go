package layout

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/wudi/pdfreport/builder"
	"github.com/wudi/pdfreport/ir/semantic"
)

// Resolver turns an image reference into a decoded image.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (*semantic.Image, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, ref string) (*semantic.Image, error)

func (f ResolverFunc) Resolve(ctx context.Context, ref string) (*semantic.Image, error) {
	return f(ctx, ref)
}

// FileResolver reads images from the filesystem. Relative references are
// resolved against Root when it is set.
type FileResolver struct {
	Root   string
	Decode builder.DecodeOptions
}

func (r FileResolver) Resolve(_ context.Context, ref string) (*semantic.Image, error) {
	path := strings.TrimPrefix(ref, "file://")
	if r.Root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(r.Root, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return builder.ImageFromReader(f, r.Decode)
}

// maxImageBytes bounds downloads when HTTPResolver.MaxBytes is zero.
const maxImageBytes = 32 << 20

// HTTPResolver downloads images over http and https. Failed requests are
// not retried.
type HTTPResolver struct {
	Client   *http.Client
	MaxBytes int64
	Decode   builder.DecodeOptions
}

func (r HTTPResolver) Resolve(ctx context.Context, ref string) (*semantic.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, err
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", ref, resp.Status)
	}
	limit := r.MaxBytes
	if limit <= 0 {
		limit = maxImageBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("GET %s: body exceeds %d bytes", ref, limit)
	}
	return builder.ImageFromBytes(data, r.Decode)
}

// SchemeResolver dispatches http and https references to HTTP and everything
// else to File.
type SchemeResolver struct {
	File FileResolver
	HTTP HTTPResolver
}

func (r SchemeResolver) Resolve(ctx context.Context, ref string) (*semantic.Image, error) {
	if u, err := url.Parse(ref); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return r.HTTP.Resolve(ctx, ref)
	}
	return r.File.Resolve(ctx, ref)
}

// DefaultMaxImagePixels caps the larger side of images loaded by
// DefaultResolver.
const DefaultMaxImagePixels = 2400

// NewResolver handles local paths and http(s) URLs, decoding both with opts.
func NewResolver(opts builder.DecodeOptions) SchemeResolver {
	return SchemeResolver{File: FileResolver{Decode: opts}, HTTP: HTTPResolver{Decode: opts}}
}

// DefaultResolver handles local paths and http(s) URLs and resamples images
// larger than DefaultMaxImagePixels.
func DefaultResolver() Resolver {
	return NewResolver(builder.DecodeOptions{MaxDimension: DefaultMaxImagePixels})
}

// MapResolver serves pre-decoded images by reference.
type MapResolver map[string]*semantic.Image

func (m MapResolver) Resolve(_ context.Context, ref string) (*semantic.Image, error) {
	img, ok := m[ref]
	if !ok {
		return nil, os.ErrNotExist
	}
	return img, nil
}
