package extract

import (
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IsValidURL reports whether raw parses as a URL with both a scheme and a host.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Tags yields every element named tag in document order. The sequence is
// evaluated lazily and can be ranged over more than once.
func Tags(doc *goquery.Document, tag string) iter.Seq[*goquery.Selection] {
	return func(yield func(*goquery.Selection) bool) {
		doc.Find(tag).EachWithBreak(func(i int, s *goquery.Selection) bool {
			return yield(s)
		})
	}
}

// ResolveImageURL resolves src against base and returns the absolute URL when
// it is an http(s) URL with a host.
func ResolveImageURL(base *url.URL, src string) (string, bool) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", false
	}

	ref, err := url.Parse(src)
	if err != nil {
		return "", false
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	if resolved.Host == "" {
		return "", false
	}
	return resolved.String(), true
}

// Images returns up to limit absolute image URLs taken from the src attribute
// of img elements, in document order. Elements without a usable src do not
// count toward the limit. Duplicates are kept.
func Images(doc *goquery.Document, base *url.URL, limit int) []string {
	images := []string{}
	if limit <= 0 {
		return images
	}

	for img := range Tags(doc, "img") {
		if len(images) >= limit {
			break
		}

		src, _ := img.Attr("src")
		if imageURL, ok := ResolveImageURL(base, src); ok {
			images = append(images, imageURL)
		}
	}

	return images
}
