package feed

import (
	"bytes"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// parseHTML decodes body to UTF-8 using the declared content type and any
// <meta charset> hint, then builds a goquery document.
func parseHTML(body []byte, contentType string) (*goquery.Document, error) {
	var r io.Reader = bytes.NewReader(body)
	if decoded, err := charset.NewReader(r, contentType); err == nil {
		r = decoded
	} else {
		r = bytes.NewReader(body)
	}
	return goquery.NewDocumentFromReader(r)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// pageTitle is the trimmed <title> text, or fallback when there is none.
// Inner whitespace is kept as written.
func pageTitle(doc *goquery.Document, fallback string) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return fallback
}
