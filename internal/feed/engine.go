package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/thomaskoefod/feedmee/internal/logging"
	"github.com/thomaskoefod/feedmee/pkg/models"
)

const untitledFeed = "Untitled Feed"

// Store is the persistence the engine needs. Implementations serialize their
// own access; the engine never holds anything of theirs across a fetch.
type Store interface {
	CreateFeed(name, url string, folderID int64, feedType models.FeedType) (int64, error)
	InsertArticle(article *models.Article) (bool, error)
	UpdateFeedError(feedID int64, hasError bool) error
	GetFeed(feedID int64) (*models.Feed, error)
	ListFeeds() ([]models.Feed, error)
}

// Classification is the outcome of a successful pipeline run. Articles carry
// no FeedID yet.
type Classification struct {
	FeedType models.FeedType
	FeedURL  string
	Name     string
	Articles []models.Article
}

// AddResult describes a newly added (or re-added) feed.
type AddResult struct {
	FeedID   int64
	FeedType models.FeedType
	FeedURL  string
	Name     string
	Inserted int
}

// attempt is the state shared by the stages of one pipeline run.
type attempt struct {
	sourceURL string
	page      *Response
}

type stage struct {
	name string
	run  func(ctx context.Context, a *attempt) (*Classification, error)
}

// Engine classifies URLs as feeds or websites and ingests their articles.
type Engine struct {
	store     Store
	fetcher   Fetcher
	extractor *ContentExtractor
	logger    *slog.Logger
	now       func() time.Time
}

func NewEngine(store Store, fetcher Fetcher, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		store:     store,
		fetcher:   fetcher,
		extractor: NewContentExtractor(fetcher),
		logger:    logger,
		now:       time.Now,
	}
}

// Classify runs the full add pipeline for rawURL without touching storage.
func (e *Engine) Classify(ctx context.Context, rawURL string) (*Classification, error) {
	return e.run(ctx, rawURL, e.addStages())
}

// AddFeed classifies rawURL, stores the feed in folderID and ingests its
// articles. When classification fails nothing is stored. A folderID of zero
// or less means the default folder.
func (e *Engine) AddFeed(ctx context.Context, rawURL string, folderID int64) (*AddResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if folderID <= 0 {
		folderID = models.DefaultFolderID
	}

	c, err := e.Classify(ctx, rawURL)
	if err != nil {
		e.logger.Warn("add feed failed", "url", rawURL, "error", err)
		return nil, err
	}

	feedID, err := e.store.CreateFeed(c.Name, c.FeedURL, folderID, c.FeedType)
	if err != nil {
		return nil, fmt.Errorf("create feed: %w", err)
	}

	inserted, err := e.storeArticles(feedID, c.Articles)
	if err != nil {
		return nil, err
	}
	if err := e.store.UpdateFeedError(feedID, false); err != nil {
		return nil, fmt.Errorf("clear feed error: %w", err)
	}

	e.logger.Info("feed added",
		"feed_id", feedID,
		"url", c.FeedURL,
		"type", c.FeedType,
		"articles", len(c.Articles),
		"inserted", inserted)

	return &AddResult{
		FeedID:   feedID,
		FeedType: c.FeedType,
		FeedURL:  c.FeedURL,
		Name:     c.Name,
		Inserted: inserted,
	}, nil
}

// RefreshFeed re-ingests a stored feed and returns the number of new
// articles. Website feeds go straight to the scraper. On failure the feed's
// error flag is set and the count inserted so far is returned with the error;
// stored articles are never removed.
func (e *Engine) RefreshFeed(ctx context.Context, feedID int64) (int, error) {
	f, err := e.store.GetFeed(feedID)
	if err != nil {
		return 0, fmt.Errorf("get feed %d: %w", feedID, err)
	}

	stages := e.addStages()
	if f.FeedType == models.FeedTypeWebsite {
		stages = e.websiteStages()
	}

	c, err := e.run(ctx, f.URL, stages)
	if err != nil {
		e.markError(feedID, true)
		e.logger.Warn("refresh failed", "feed_id", feedID, "url", f.URL, "error", err)
		return 0, err
	}

	inserted, err := e.storeArticles(feedID, c.Articles)
	if err != nil {
		e.markError(feedID, true)
		return inserted, err
	}
	if err := e.store.UpdateFeedError(feedID, false); err != nil {
		return inserted, fmt.Errorf("clear feed error: %w", err)
	}

	e.logger.Debug("feed refreshed", "feed_id", feedID, "inserted", inserted)
	return inserted, nil
}

// RefreshAll refreshes every feed one after another and returns the total
// number of new articles. Individual failures are logged and skipped.
func (e *Engine) RefreshAll(ctx context.Context) (int, error) {
	feeds, err := e.store.ListFeeds()
	if err != nil {
		return 0, fmt.Errorf("list feeds: %w", err)
	}

	total, failed := 0, 0
	for _, f := range feeds {
		n, err := e.RefreshFeed(ctx, f.ID)
		total += n
		if err != nil {
			failed++
		}
	}

	e.logger.Info("refresh all finished", "feeds", len(feeds), "failed", failed, "inserted", total)
	return total, nil
}

// ExtractContent fetches articleURL and returns its main content as
// sanitized HTML.
func (e *Engine) ExtractContent(ctx context.Context, articleURL string) (string, error) {
	return e.extractor.Extract(ctx, articleURL)
}

func (e *Engine) addStages() []stage {
	return []stage{
		{name: "direct", run: e.directParse},
		{name: "discover", run: e.discoverAndParse},
		{name: "scrape", run: e.scrape},
	}
}

func (e *Engine) websiteStages() []stage {
	return []stage{
		{name: "scrape", run: e.scrape},
	}
}

// run fetches sourceURL once and walks the stages in order until one
// classifies the page. A network error stops the walk; otherwise the last
// stage's error is returned.
func (e *Engine) run(ctx context.Context, sourceURL string, stages []stage) (*Classification, error) {
	page, err := e.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	a := &attempt{sourceURL: sourceURL, page: page}
	var lastErr error
	for _, s := range stages {
		c, err := s.run(ctx, a)
		if err == nil {
			e.logger.Debug("stage succeeded", "stage", s.name, "url", sourceURL, "type", c.FeedType)
			return c, nil
		}
		if IsKind(err, KindNetwork) {
			return nil, err
		}
		e.logger.Debug("stage unusable", "stage", s.name, "url", sourceURL, "reason", err)
		lastErr = err
	}
	return nil, lastErr
}

func (e *Engine) directParse(_ context.Context, a *attempt) (*Classification, error) {
	parsed, err := ParseFeed(a.page.Body)
	if err != nil {
		return nil, err
	}
	return rssClassification(a.sourceURL, feedName(parsed.Title), NormalizeFeed(parsed, 0, a.sourceURL)), nil
}

func (e *Engine) discoverAndParse(ctx context.Context, a *attempt) (*Classification, error) {
	link, ok := DiscoverFeedLink(a.page.Body, a.page.ContentType, a.page.FinalURL)
	if !ok {
		return nil, newError(KindDiscovery, "no feed link found", nil)
	}
	if link == a.sourceURL || link == a.page.FinalURL {
		return nil, newError(KindDiscovery, fmt.Sprintf("feed link %s points back at the page", link), nil)
	}

	e.logger.Debug("feed link discovered", "url", a.sourceURL, "link", link)
	resp, err := e.fetcher.Fetch(ctx, link)
	if err != nil {
		return nil, err
	}

	parsed, err := ParseFeed(resp.Body)
	if err != nil {
		return nil, newError(KindDiscovery, fmt.Sprintf("discovered feed %s is unusable", link), err)
	}
	return rssClassification(link, feedName(parsed.Title), NormalizeFeed(parsed, 0, link)), nil
}

func (e *Engine) scrape(_ context.Context, a *attempt) (*Classification, error) {
	res, err := ScrapeWebsite(a.page.Body, a.page.ContentType, a.page.FinalURL, a.sourceURL, e.now())
	if err != nil {
		return nil, err
	}
	return &Classification{
		FeedType: models.FeedTypeWebsite,
		FeedURL:  a.sourceURL,
		Name:     res.Name,
		Articles: res.Articles,
	}, nil
}

func (e *Engine) storeArticles(feedID int64, articles []models.Article) (int, error) {
	inserted := 0
	for i := range articles {
		article := articles[i]
		article.FeedID = feedID
		ok, err := e.store.InsertArticle(&article)
		if err != nil {
			return inserted, fmt.Errorf("insert article %s: %w", article.URL, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

func (e *Engine) markError(feedID int64, hasError bool) {
	if err := e.store.UpdateFeedError(feedID, hasError); err != nil {
		e.logger.Error("update feed error flag", "feed_id", feedID, "error", err)
	}
}

func rssClassification(feedURL, name string, articles []models.Article) *Classification {
	return &Classification{
		FeedType: models.FeedTypeRSS,
		FeedURL:  feedURL,
		Name:     name,
		Articles: articles,
	}
}

func feedName(title string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return untitledFeed
}
