package extract

import (
	"fmt"
	"html"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

func Title(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "No title"
	}
	return title
}

// GalleryMarkdown renders a heading followed by one markdown image per URL.
func GalleryMarkdown(title string, images []string) (string, error) {
	var b strings.Builder
	b.WriteString("<h1>" + html.EscapeString(title) + "</h1>")
	for i, src := range images {
		fmt.Fprintf(&b, `<p><img src="%s" alt="Image %d"></p>`, html.EscapeString(src), i+1)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(b.String())
	if err != nil {
		return "", fmt.Errorf("convert gallery to markdown: %w", err)
	}
	return markdown, nil
}
