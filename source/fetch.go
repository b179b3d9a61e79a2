// Package source reads ontology source documents from local files and
// http(s) URLs with a size cap and timeout.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/c360studio/semonto/ontology"
)

// Fetch defaults.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultMaxBytes  = 64 << 20
	DefaultUserAgent = "semonto/1.0"
)

// Document is a raw ontology source as read from a file or URL.
type Document struct {
	// Locator is the path or URL the document was read from.
	Locator     string
	Body        []byte
	ContentType string
	// Remote is set when the locator is an http or https URL.
	Remote bool
}

// Fetcher reads ontology sources from the local filesystem or over HTTP.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	logger    *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithMaxBytes caps the document size for both files and URLs.
func WithMaxBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithUserAgent sets the User-Agent header of HTTP requests.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher creates a fetcher with the default timeout and size cap.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	f := &Fetcher{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (max 5)")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		maxBytes:  DefaultMaxBytes,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsURL reports whether locator is an http or https URL.
func IsURL(locator string) bool {
	lower := strings.ToLower(locator)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetch reads the document at locator. Every failure is returned as an
// *ontology.ParseError carrying the locator.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (*Document, error) {
	if strings.TrimSpace(locator) == "" {
		return nil, ontology.NewParseError(locator, errors.New("empty source locator"))
	}

	var (
		doc *Document
		err error
	)
	if IsURL(locator) {
		doc, err = f.fetchURL(ctx, locator)
	} else {
		doc, err = f.readFile(locator)
	}
	if err != nil {
		return nil, ontology.NewParseError(locator, err)
	}

	f.logger.Debug("Fetched ontology source",
		slog.String("source", locator),
		slog.Int("bytes", len(doc.Body)),
		slog.Bool("remote", doc.Remote))
	return doc, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rdf+xml,application/owl+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	body, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Document{
		Locator:     url,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Remote:      true,
	}, nil
}

func (f *Fetcher) readFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	body, err := f.readLimited(file)
	if err != nil {
		return nil, err
	}
	return &Document{Locator: path, Body: body}, nil
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("content too large (exceeds %d bytes)", f.maxBytes)
	}
	return body, nil
}
