package feed

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/thomaskoefod/feedmee/pkg/models"
)

const (
	minTitleLength = 10
	minSlugLength  = 4
	minPathDepth   = 2
)

// ScrapeResult is what the website fallback recovers from a plain page.
type ScrapeResult struct {
	Name     string
	Articles []models.Article
}

// ScrapeWebsite treats same-site links on an HTML page as feed entries.
// pageURL is the post-redirect URL; originalURL names the source when the page
// has no <title>. Articles come back without a FeedID. An empty candidate list
// is a KindScrapeEmpty error, not an empty success.
func ScrapeWebsite(body []byte, contentType, pageURL, originalURL string, now time.Time) (*ScrapeResult, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, newError(KindScrapeEmpty, fmt.Sprintf("invalid page url %q", pageURL), err)
	}

	doc, err := parseHTML(body, contentType)
	if err != nil {
		return nil, newError(KindScrapeEmpty, "page is not parseable HTML", err)
	}

	articles := scrapeAnchors(doc, base, now.Unix())
	if len(articles) == 0 {
		return nil, newError(KindScrapeEmpty, "no articles found", nil)
	}

	return &ScrapeResult{
		Name:     pageTitle(doc, originalURL),
		Articles: articles,
	}, nil
}

func scrapeAnchors(doc *goquery.Document, base *url.URL, timestamp int64) []models.Article {
	baseHost := base.Hostname()
	basePath := base.Path

	var articles []models.Article
	accepted := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Hostname() != baseHost {
			return
		}
		if resolved.Path == basePath {
			return
		}
		abs := resolved.String()
		if _, dup := accepted[abs]; dup {
			return
		}

		text := collapseWhitespace(a.Text())
		titleAttr, _ := a.Attr("title")

		title, ok := anchorTitle(text, collapseWhitespace(titleAttr), resolved.Path)
		if !ok {
			return
		}
		// shallow navigation links must earn their place with real anchor text
		if pathDepth(resolved.Path) < minPathDepth && runeLen(text) < minTitleLength {
			return
		}

		accepted[abs] = struct{}{}
		articles = append(articles, models.Article{
			Title:     title,
			URL:       abs,
			Timestamp: timestamp,
		})
	})

	return articles
}

// anchorTitle picks the first of anchor text, title attribute and URL slug
// that is long enough.
func anchorTitle(text, titleAttr, path string) (string, bool) {
	if runeLen(text) >= minTitleLength {
		return text, true
	}
	if runeLen(titleAttr) >= minTitleLength {
		return titleAttr, true
	}
	if slug := slugTitle(path); runeLen(slug) >= minTitleLength {
		return slug, true
	}
	return "", false
}

// slugTitle turns the last path segment into words: "my-article_slug" gives
// "My Article Slug". Segments of three characters or fewer give "".
func slugTitle(path string) string {
	segments := pathSegments(path)
	if len(segments) == 0 {
		return ""
	}
	last := segments[len(segments)-1]
	if runeLen(last) < minSlugLength {
		return ""
	}

	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(last))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func pathSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func pathDepth(path string) int {
	return len(pathSegments(path))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
