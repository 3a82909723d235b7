// Package loader reads binding documents. Each source kind maps to a fetch
// function; every fetch is capped in size and remote fetches in time.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/goliatone/go-formdispatch/pkg/binding"
)

const (
	// DefaultFetchTimeout bounds remote fetches when no timeout is configured.
	DefaultFetchTimeout = 10 * time.Second
	// MaxDocumentBytes caps the size of any binding document.
	MaxDocumentBytes = 8 << 20
)

var (
	ErrNilSource       = errors.New("binding loader: source is nil")
	ErrHTTPDisabled    = errors.New("binding loader: http support disabled")
	ErrNoFileSystem    = errors.New("binding loader: filesystem is not configured")
	ErrUnsupportedKind = errors.New("binding loader: unsupported source kind")
	ErrTooLarge        = errors.New("binding loader: document exceeds size limit")
)

type fetchFunc func(ctx context.Context, location string) ([]byte, error)

// Loader implements binding.Loader. Construction helpers live in the root
// formdispatch package.
type Loader struct {
	fetchers map[binding.SourceKind]fetchFunc
	client   *http.Client
	timeout  time.Duration
	maxBytes int64
}

var _ binding.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options. URL sources are only
// enabled by an HTTP client or the HTTP fallback.
func New(options binding.LoaderOptions) *Loader {
	l := &Loader{
		timeout:  options.RequestTimeout,
		maxBytes: MaxDocumentBytes,
	}
	if l.timeout <= 0 {
		l.timeout = DefaultFetchTimeout
	}

	l.fetchers = map[binding.SourceKind]fetchFunc{
		binding.SourceKindFile: l.readFile,
	}
	if files := options.FileSystem; files != nil {
		l.fetchers[binding.SourceKindFS] = func(ctx context.Context, name string) ([]byte, error) {
			return l.readFS(ctx, files, name)
		}
	}

	switch {
	case options.HTTPClient != nil:
		l.client = options.HTTPClient
	case options.AllowHTTPFallback:
		l.client = &http.Client{}
	}
	if l.client != nil {
		l.fetchers[binding.SourceKindURL] = l.fetchHTTP
	}
	return l
}

// Load fetches a document from src.
func (l *Loader) Load(ctx context.Context, src binding.Source) (binding.Document, error) {
	if src == nil {
		return binding.Document{}, ErrNilSource
	}

	fetch, ok := l.fetchers[src.Kind()]
	if !ok {
		switch src.Kind() {
		case binding.SourceKindURL:
			return binding.Document{}, ErrHTTPDisabled
		case binding.SourceKindFS:
			return binding.Document{}, ErrNoFileSystem
		default:
			return binding.Document{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, src.Kind())
		}
	}
	if src.Location() == "" {
		return binding.Document{}, fmt.Errorf("binding loader: %s location is required", src.Kind())
	}
	if err := ctx.Err(); err != nil {
		return binding.Document{}, err
	}

	data, err := fetch(ctx, src.Location())
	if err != nil {
		return binding.Document{}, err
	}
	return binding.NewDocument(src, data)
}

func (l *Loader) readFile(_ context.Context, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("binding loader: read %s: %w", path, err)
	}
	defer f.Close()
	return l.readCapped(path, f)
}

func (l *Loader) readFS(_ context.Context, files fs.FS, name string) ([]byte, error) {
	f, err := files.Open(name)
	if err != nil {
		return nil, fmt.Errorf("binding loader: open %s: %w", name, err)
	}
	defer f.Close()
	return l.readCapped(name, f)
}

func (l *Loader) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("binding loader: new request: %w", err)
	}
	req.Header.Set("Accept", "application/yaml, application/json;q=0.9, */*;q=0.5")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binding loader: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("binding loader: fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	if resp.ContentLength > l.maxBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, url, resp.ContentLength)
	}
	return l.readCapped(url, resp.Body)
}

// readCapped reads r fully, failing instead of truncating past maxBytes.
func (l *Loader) readCapped(location string, r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("binding loader: read %s: %w", location, err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, location)
	}
	return data, nil
}
