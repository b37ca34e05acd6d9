package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Response is a fetched document.
type Response struct {
	Body        []byte
	FinalURL    string // after redirects
	ContentType string
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

type FetcherConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// HTTPFetcher performs plain GETs. It never retries.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
}

func NewHTTPFetcher(cfg FetcherConfig) *HTTPFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
	}
}

// Fetch issues a GET and returns the body, the post-redirect URL and the
// declared content type. Every failure is a KindNetwork error.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newError(KindNetwork, fmt.Sprintf("building request for %s", rawURL), err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, text/html;q=0.8, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, newError(KindNetwork, fmt.Sprintf("fetching %s", rawURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newError(KindNetwork, fmt.Sprintf("fetching %s: HTTP %d", rawURL, resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, newError(KindNetwork, fmt.Sprintf("reading body of %s", rawURL), err)
	}
	if int64(len(body)) > f.maxBody {
		return nil, newError(KindNetwork, fmt.Sprintf("body of %s exceeds %d bytes", rawURL, f.maxBody), nil)
	}

	return &Response{
		Body:        body,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
