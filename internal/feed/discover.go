package feed

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var feedLinkTypes = []string{
	"application/rss+xml",
	"application/atom+xml",
	"application/feed+json",
}

// DiscoverFeedLink looks for the first <link> whose type names a feed format
// and resolves its href against baseURL, which must be the post-redirect URL.
//
// Every <link> is enumerated and filtered in Go instead of using an attribute
// selector, since real pages carry type values with odd quoting and bytes a
// selector does not match reliably. Matching is a case-sensitive substring
// test.
func DiscoverFeedLink(body []byte, contentType, baseURL string) (string, bool) {
	doc, err := parseHTML(body, contentType)
	if err != nil {
		return "", false
	}
	return discoverInDocument(doc, baseURL)
}

func discoverInDocument(doc *goquery.Document, baseURL string) (string, bool) {
	var match *goquery.Selection
	doc.Find("link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		typ, ok := s.Attr("type")
		if ok && isFeedLinkType(typ) {
			match = s
			return false
		}
		return true
	})
	if match == nil {
		return "", false
	}

	href, ok := match.Attr("href")
	if !ok {
		return "", false
	}

	resolved, err := resolveReference(baseURL, href)
	if err != nil || !resolved.IsAbs() || resolved.Host == "" {
		return "", false
	}
	return resolved.String(), true
}

func isFeedLinkType(typ string) bool {
	for _, t := range feedLinkTypes {
		if strings.Contains(typ, t) {
			return true
		}
	}
	return false
}

// resolveReference resolves href against base. Surrounding whitespace in href
// is dropped, as browsers do.
func resolveReference(base, href string) (*url.URL, error) {
	b, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, err
	}
	return b.ResolveReference(ref), nil
}
