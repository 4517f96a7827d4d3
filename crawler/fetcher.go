package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	BackendHTTP  = "http"
	BackendColly = "colly"

	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Config controls how pages are fetched.
type Config struct {
	Backend      string
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration

	// Transport replaces the default transport; tests use it to fake the network.
	Transport http.RoundTripper
	Debug     bool
}

func (c Config) transport() http.RoundTripper {
	if c.Transport != nil {
		return c.Transport
	}
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        c.MaxIdleConns,
		MaxIdleConnsPerHost: c.MaxIdleConnsPerHost,
		IdleConnTimeout:     c.IdleConnTimeout,
		TLSHandshakeTimeout: c.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}
}

// PageFetcherInterface defines the interface for page fetchers
type PageFetcherInterface interface {
	FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error)
}

type PageFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

func NewPageFetcher(cfg Config) *PageFetcher {
	return &PageFetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.transport(),
		},
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
	}
}

// NewPageFetcherWithBackend creates a page fetcher based on the backend choice
func NewPageFetcherWithBackend(cfg Config) (PageFetcherInterface, error) {
	switch cfg.Backend {
	case "", BackendHTTP:
		return NewPageFetcher(cfg), nil
	case BackendColly:
		return NewCollyPageFetcher(cfg), nil
	default:
		return nil, fmt.Errorf("unknown crawler backend %q", cfg.Backend)
	}
}

func (f *PageFetcher) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindInvalidURL, URL: pageURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindStatus, URL: pageURL, StatusCode: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if f.maxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, URL: pageURL, Err: fmt.Errorf("read body: %w", err)}
	}

	return parseDocument(pageURL, data, resp.Header.Get("Content-Type"))
}
