package crawler

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/debug"
)

type CollyPageFetcher struct {
	config    Config
	transport http.RoundTripper
}

func NewCollyPageFetcher(config Config) *CollyPageFetcher {
	return &CollyPageFetcher{
		config:    config,
		transport: config.transport(),
	}
}

// newCollector builds a collector for a single visit. Collectors keep visited
// URLs and callbacks, so one is never shared between requests; the transport
// and its connection pool are.
func (cpf *CollyPageFetcher) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(cpf.config.UserAgent),
		colly.StdlibContext(ctx),
	)

	c.WithTransport(cpf.transport)
	if cpf.config.Timeout > 0 {
		c.SetRequestTimeout(cpf.config.Timeout)
	}
	if cpf.config.MaxBodyBytes > 0 {
		c.MaxBodySize = int(cpf.config.MaxBodyBytes)
	}
	if cpf.config.Debug {
		c.SetDebugger(&debug.LogDebugger{})
	}

	// Status handling happens in OnResponse so both backends agree on what counts as success.
	c.ParseHTTPErrorResponse = true
	c.AllowURLRevisit = true

	return c
}

func (cpf *CollyPageFetcher) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Kind: KindTransport, URL: pageURL, Err: err}
	}

	c := cpf.newCollector(ctx)

	var doc *goquery.Document
	var fetchError error

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", acceptHeader)
	})

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode < 200 || r.StatusCode >= 300 {
			fetchError = &Error{Kind: KindStatus, URL: pageURL, StatusCode: r.StatusCode}
			return
		}

		contentType := r.Headers.Get("Content-Type")
		if strings.Contains(strings.ToLower(contentType), "charset") {
			// colly has already converted a declared charset to UTF-8
			contentType = "text/html; charset=utf-8"
		}
		doc, fetchError = parseDocument(pageURL, r.Body, contentType)
	})

	c.OnError(func(r *colly.Response, err error) {
		if fetchError == nil {
			fetchError = &Error{Kind: KindTransport, URL: pageURL, Err: err}
		}
	})

	if err := c.Visit(pageURL); err != nil && fetchError == nil {
		fetchError = &Error{Kind: KindTransport, URL: pageURL, Err: err}
	}

	if fetchError != nil {
		return nil, fetchError
	}

	if doc == nil {
		return nil, &Error{Kind: KindTransport, URL: pageURL, Err: errNoDocument}
	}

	return doc, nil
}
