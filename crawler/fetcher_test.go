package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const testUserAgent = "Mozilla/5.0 (Test) Chrome/91.0"

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// countingTransport serves pages by URL and records how many requests it saw.
type countingTransport struct {
	calls atomic.Int32
	pages map[string]string
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls.Add(1)
	body, ok := t.pages[req.URL.String()]
	if !ok {
		return newResponse(req, http.StatusNotFound, "text/html", "not found"), nil
	}
	return newResponse(req, http.StatusOK, "text/html; charset=utf-8", body), nil
}

func newResponse(req *http.Request, status int, contentType, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {contentType}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func testConfig(backend string) Config {
	return Config{
		Backend:      backend,
		UserAgent:    testUserAgent,
		Timeout:      2 * time.Second,
		MaxBodyBytes: 1 << 20,
	}
}

// windows1251Page is "<title>Привет</title>" encoded as windows-1251.
var windows1251Page = append(append([]byte("<html><head><title>"),
	0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2),
	[]byte("</title></head><body><img src=\"/a.png\"></body></html>")...)

func TestNewPageFetcherWithBackend(t *testing.T) {
	tests := []struct {
		backend string
		want    string
		wantErr bool
	}{
		{backend: "", want: "*crawler.PageFetcher"},
		{backend: BackendHTTP, want: "*crawler.PageFetcher"},
		{backend: BackendColly, want: "*crawler.CollyPageFetcher"},
		{backend: "chromium", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			fetcher, err := NewPageFetcherWithBackend(testConfig(tt.backend))
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error for unknown backend")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewPageFetcherWithBackend() error = %v", err)
			}
			if got := fmt.Sprintf("%T", fetcher); got != tt.want {
				t.Errorf("Fetcher type = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPageFetcherSendsHeaders(t *testing.T) {
	var mu sync.Mutex
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><head><title>Hello</title></head></html>")
	}))
	defer srv.Close()

	doc, err := NewPageFetcher(testConfig(BackendHTTP)).FetchDocument(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchDocument() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotUA != testUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, testUserAgent)
	}
	if !strings.Contains(gotAccept, "text/html") {
		t.Errorf("Accept = %q, want text/html", gotAccept)
	}
	if title := doc.Find("title").Text(); title != "Hello" {
		t.Errorf("Title = %q, want Hello", title)
	}
}

func TestPageFetcherErrors(t *testing.T) {
	tests := []struct {
		name       string
		transport  http.RoundTripper
		wantKind   ErrorKind
		wantStatus int
	}{
		{
			name: "Not found",
			transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return newResponse(req, http.StatusNotFound, "text/html", "missing"), nil
			}),
			wantKind:   KindStatus,
			wantStatus: http.StatusNotFound,
		},
		{
			name: "Server error",
			transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
				return newResponse(req, http.StatusServiceUnavailable, "text/html", "busy"), nil
			}),
			wantKind:   KindStatus,
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name: "Connection refused",
			transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
				return nil, errors.New("dial tcp: connection refused")
			}),
			wantKind: KindTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(BackendHTTP)
			cfg.Transport = tt.transport

			_, err := NewPageFetcher(cfg).FetchDocument(context.Background(), "http://example.test/")

			var fetchErr *Error
			if !errors.As(err, &fetchErr) {
				t.Fatalf("Expected *Error, got %v", err)
			}
			if fetchErr.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", fetchErr.Kind, tt.wantKind)
			}
			if fetchErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", fetchErr.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestPageFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(BackendHTTP)
	cfg.Timeout = 100 * time.Millisecond

	start := time.Now()
	_, err := NewPageFetcher(cfg).FetchDocument(context.Background(), srv.URL)
	elapsed := time.Since(start)

	if KindOf(err) != KindTransport {
		t.Fatalf("Expected transport error, got %v", err)
	}
	if elapsed > time.Second {
		t.Errorf("Timeout took %v, want well under 1s", elapsed)
	}
}

func TestPageFetcherDecodesCharset(t *testing.T) {
	cfg := testConfig(BackendHTTP)
	cfg.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		resp := newResponse(req, http.StatusOK, "text/html; charset=windows-1251", "")
		resp.Body = io.NopCloser(strings.NewReader(string(windows1251Page)))
		resp.ContentLength = int64(len(windows1251Page))
		return resp, nil
	})

	doc, err := NewPageFetcher(cfg).FetchDocument(context.Background(), "http://example.test/")
	if err != nil {
		t.Fatalf("FetchDocument() error = %v", err)
	}
	if title := doc.Find("title").Text(); title != "Привет" {
		t.Errorf("Title = %q, want %q", title, "Привет")
	}
}

func TestPageFetcherBodyLimit(t *testing.T) {
	page := `<img src="/first.png">` + strings.Repeat(" ", 4096) + `<img src="/second.png">`

	cfg := testConfig(BackendHTTP)
	cfg.MaxBodyBytes = 64
	cfg.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, "text/html", page), nil
	})

	doc, err := NewPageFetcher(cfg).FetchDocument(context.Background(), "http://example.test/")
	if err != nil {
		t.Fatalf("FetchDocument() error = %v", err)
	}
	if n := doc.Find("img").Length(); n != 1 {
		t.Errorf("Expected truncated body with 1 img, got %d", n)
	}
}

func TestErrorMessages(t *testing.T) {
	statusErr := &Error{Kind: KindStatus, URL: "http://x/", StatusCode: 404}
	if got := statusErr.Error(); got != "status http://x/: HTTP 404" {
		t.Errorf("Error() = %q", got)
	}

	cause := errors.New("boom")
	wrapped := &Error{Kind: KindTransport, URL: "http://x/", Err: cause}
	if !errors.Is(wrapped, cause) {
		t.Error("Expected Unwrap to expose the cause")
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("Expected empty kind for foreign errors")
	}
}
