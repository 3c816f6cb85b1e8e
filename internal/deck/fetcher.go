package deck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vytor/wordflash/internal/logger"
)

// maxPayload bounds how much of a word list is read into memory.
var maxPayload int64 = 32 << 20

// Fetcher retrieves the raw bytes of a deck source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// HTTPFetcher downloads sources over HTTP.
type HTTPFetcher struct {
	httpClient *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{httpClient: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("deck").WithField("source", source)

	log.Debug("fetching deck over http")
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		log.WithError(err).Error("failed to create request")
		return nil, &FetchError{Source: source, Err: err}
	}
	// Always fetch a fresh copy.
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Error("failed to fetch deck")
		return nil, &FetchError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	log.Debug("deck response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Error("deck request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return nil, &FetchError{
			Source:     source,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	b, err := readPayload(resp.Body)
	if err != nil {
		log.WithError(err).Error("failed to read deck body")
		return nil, &FetchError{Source: source, Err: err}
	}
	return b, nil
}

// FileFetcher reads sources from a local directory.
type FileFetcher struct {
	dir string
}

func NewFileFetcher(dir string) *FileFetcher {
	return &FileFetcher{dir: dir}
}

var errOutsideDir = errors.New("source escapes deck directory")

func (f *FileFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	log := logger.FromContext(ctx).WithPrefix("deck").WithField("source", source)

	clean := filepath.Clean("/" + filepath.FromSlash(source))
	if clean == string(filepath.Separator) {
		return nil, &FetchError{Source: source, Err: errOutsideDir}
	}
	path := filepath.Join(f.dir, clean)
	if rel, err := filepath.Rel(f.dir, path); err != nil || strings.HasPrefix(rel, "..") {
		return nil, &FetchError{Source: source, Err: errOutsideDir}
	}

	log.Debug("reading deck file %s", path)
	fh, err := os.Open(path)
	if err != nil {
		log.WithError(err).Error("failed to open deck file")
		return nil, &FetchError{Source: source, Err: err}
	}
	defer fh.Close()

	b, err := readPayload(fh)
	if err != nil {
		log.WithError(err).Error("failed to read deck file")
		return nil, &FetchError{Source: source, Err: err}
	}
	return b, nil
}

// ErrPayloadTooLarge is wrapped in a FetchError when a source exceeds
// maxPayload bytes.
var ErrPayloadTooLarge = errors.New("payload too large")

func readPayload(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxPayload+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > maxPayload {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrPayloadTooLarge, maxPayload)
	}
	return b, nil
}

// SourceFetcher dispatches a source to HTTP or the local directory.
// Absolute http(s) URLs always go over HTTP; relative sources are resolved
// against BaseURL when one is set, otherwise read from the file fetcher.
type SourceFetcher struct {
	BaseURL *url.URL
	HTTP    Fetcher
	Files   Fetcher
}

// NewSourceFetcher builds a SourceFetcher. baseURL may be empty.
func NewSourceFetcher(baseURL, dir string, timeout time.Duration) (*SourceFetcher, error) {
	sf := &SourceFetcher{
		HTTP:  NewHTTPFetcher(timeout),
		Files: NewFileFetcher(dir),
	}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse deck base url: %w", err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		sf.BaseURL = u
	}
	return sf, nil
}

func (s *SourceFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if isHTTP(source) {
		return s.HTTP.Fetch(ctx, source)
	}
	if s.BaseURL != nil {
		ref, err := url.Parse(source)
		if err != nil {
			return nil, &FetchError{Source: source, Err: err}
		}
		return s.HTTP.Fetch(ctx, s.BaseURL.ResolveReference(ref).String())
	}
	return s.Files.Fetch(ctx, source)
}

func isHTTP(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

var (
	_ Fetcher = (*HTTPFetcher)(nil)
	_ Fetcher = (*FileFetcher)(nil)
	_ Fetcher = (*SourceFetcher)(nil)
)
