package crawler

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// parseDocument decodes body to UTF-8 using the declared or sniffed charset
// and builds a document from it. Scripting is disabled so <noscript> content
// is parsed as markup, the way a non-browser HTML parser sees it.
func parseDocument(pageURL string, body []byte, contentType string) (*goquery.Document, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, &Error{Kind: KindParse, URL: pageURL, Err: err}
	}

	root, err := html.ParseWithOptions(reader, html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, &Error{Kind: KindParse, URL: pageURL, Err: err}
	}

	return goquery.NewDocumentFromNode(root), nil
}
