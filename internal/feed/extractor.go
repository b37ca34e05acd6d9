package feed

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability/v2"
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// MinContentLength is the least amount of text an extraction must produce.
const MinContentLength = 100

// ContentExtractor fetches an article page and pulls out its main content.
// Nothing is cached; each call re-fetches.
type ContentExtractor struct {
	fetcher Fetcher
	policy  *bluemonday.Policy
}

func NewContentExtractor(fetcher Fetcher) *ContentExtractor {
	return &ContentExtractor{
		fetcher: fetcher,
		policy:  articlePolicy(),
	}
}

// Extract returns the sanitized HTML of the article at articleURL.
func (e *ContentExtractor) Extract(ctx context.Context, articleURL string) (string, error) {
	resp, err := e.fetcher.Fetch(ctx, articleURL)
	if err != nil {
		return "", err
	}

	content, err := e.ExtractHTML(resp.Body, resp.ContentType, resp.FinalURL)
	if err != nil {
		return "", err
	}
	return content, nil
}

// ExtractHTML runs the extraction on an already fetched page.
func (e *ContentExtractor) ExtractHTML(body []byte, contentType, pageURL string) (string, error) {
	doc, err := parseHTML(body, contentType)
	if err != nil {
		return "", newError(KindNoContent, "page is not parseable HTML", err)
	}
	stripNonContent(doc)

	cleaned, err := doc.Html()
	if err != nil {
		return "", newError(KindNoContent, "rendering cleaned page", err)
	}

	var base *url.URL
	if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
		base = u
	}

	article, err := readability.FromReader(strings.NewReader(cleaned), base)
	if err != nil {
		return "", newError(KindNoContent, "no content extracted", err)
	}

	var buf bytes.Buffer
	if err := article.RenderHTML(&buf); err != nil {
		return "", newError(KindNoContent, "no content extracted", err)
	}

	sanitized := strings.TrimSpace(e.policy.Sanitize(buf.String()))
	if textLength(sanitized) < MinContentLength {
		return "", newError(KindNoContent, "no content extracted", nil)
	}
	return sanitized, nil
}

// ToMarkdown converts an extracted fragment for terminal display. Relative
// links are made absolute against pageURL.
func ToMarkdown(fragment, pageURL string) (string, error) {
	converter := md.NewConverter(md.DomainFromURL(pageURL), true, nil)
	out, err := converter.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("converting content to markdown: %w", err)
	}
	return out, nil
}

// stripNonContent drops navigation, chrome, embeds and widgets ahead of the
// readability pass.
func stripNonContent(doc *goquery.Document) {
	doc.Find("script, style, noscript, aside, nav, header, footer, form").Remove()
	doc.Find("iframe, embed, object, video, audio, canvas, svg").Remove()
	doc.Find("[class*='social'], [class*='share'], [id*='social'], [id*='share']").Remove()
	doc.Find("[class*='comment'], [id*='comment']").Remove()
	doc.Find("[class*='sidebar'], [id*='sidebar'], [class*='widget'], [id*='widget']").Remove()
	doc.Find("[class*='advert'], [id*='advert'], [class*='sponsor'], [class~='ad'], [class~='ads']").Remove()
	doc.Find("[role='navigation'], [role='banner'], [role='contentinfo']").Remove()
}

func articlePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("article", "section", "div", "p", "span", "br", "hr")
	p.AllowElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("ul", "ol", "li", "dl", "dt", "dd")
	p.AllowElements("blockquote", "pre", "code")
	p.AllowElements("b", "strong", "i", "em", "u", "s", "del", "ins", "mark", "sub", "sup")
	p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption")
	p.AllowElements("figure", "figcaption")

	p.AllowStandardURLs()
	p.AllowRelativeURLs(true)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt", "title").OnElements("img")
	p.AllowURLSchemes("http", "https", "mailto")

	return p
}

func textLength(fragment string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return 0
	}
	return runeLen(collapseWhitespace(doc.Text()))
}
