package crawler

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"image-scraper/extract"
)

type ImageResult struct {
	URL    string   `json:"url"`
	Title  string   `json:"title,omitempty"`
	Images []string `json:"images"`
}

// ImageExtractor fetches one page per call and collects the images it embeds.
// It keeps no per-call state and is safe for concurrent use.
type ImageExtractor struct {
	fetcher PageFetcherInterface
	logger  *zap.Logger
}

func NewImageExtractor(cfg Config, logger *zap.Logger) (*ImageExtractor, error) {
	fetcher, err := NewPageFetcherWithBackend(cfg)
	if err != nil {
		return nil, err
	}
	return NewImageExtractorWithFetcher(fetcher, logger), nil
}

func NewImageExtractorWithFetcher(fetcher PageFetcherInterface, logger *zap.Logger) *ImageExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageExtractor{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Extract returns up to maxImages absolute http(s) image URLs found on the
// page at targetURL. A non-positive maxImages yields an empty result without
// touching the network. Failures are reported as *Error; the returned result
// is never nil and its Images are empty on failure.
func (e *ImageExtractor) Extract(ctx context.Context, targetURL string, maxImages int) (*ImageResult, error) {
	result := &ImageResult{URL: targetURL, Images: []string{}}

	if !extract.IsValidURL(targetURL) {
		return result, &Error{Kind: KindInvalidURL, URL: targetURL}
	}

	if maxImages <= 0 {
		return result, nil
	}

	base, err := url.Parse(targetURL)
	if err != nil {
		return result, &Error{Kind: KindInvalidURL, URL: targetURL, Err: err}
	}

	doc, err := e.fetcher.FetchDocument(ctx, targetURL)
	if err != nil {
		return result, err
	}

	result.Title = extract.Title(doc)
	result.Images = extract.Images(doc, base, maxImages)
	return result, nil
}

// ExtractImages is Extract for callers that only want the URLs: every failure
// is logged and turned into an empty slice.
func (e *ImageExtractor) ExtractImages(ctx context.Context, targetURL string, maxImages int) []string {
	result, err := e.Extract(ctx, targetURL, maxImages)
	if err != nil {
		e.logger.Warn("image extraction failed",
			zap.String("url", targetURL),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err),
		)
		return []string{}
	}

	e.logger.Debug("images extracted",
		zap.String("url", targetURL),
		zap.Int("count", len(result.Images)),
		zap.Int("max_images", maxImages),
	)
	return result.Images
}
