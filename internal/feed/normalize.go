package feed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/thomaskoefod/feedmee/pkg/models"
)

const untitledArticle = "No Title"

// NormalizeItem converts a parsed feed entry into an Article for feedID.
// feedURL is the stored URL of the feed and seeds synthetic article URLs.
func NormalizeItem(item *gofeed.Item, feedID int64, feedURL string) models.Article {
	article := models.Article{
		FeedID:    feedID,
		Title:     strings.TrimSpace(item.Title),
		Author:    itemAuthor(item),
		Summary:   itemSummary(item),
		URL:       itemLink(item),
		Timestamp: itemTimestamp(item),
	}
	if article.Title == "" {
		article.Title = untitledArticle
	}
	if article.URL == "" {
		article.URL = SyntheticURL(feedURL, item.GUID, item.Title)
	}
	return article
}

// NormalizeFeed converts every entry of a parsed feed.
func NormalizeFeed(parsed *gofeed.Feed, feedID int64, feedURL string) []models.Article {
	articles := make([]models.Article, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		articles = append(articles, NormalizeItem(item, feedID, feedURL))
	}
	return articles
}

// SyntheticURL derives a stable article URL for entries without a link:
// <feedURL without trailing slash>/#<hash of guid, or title when guid is empty>.
//
// Two entries with no guid and the same title map to the same URL and are
// stored once. That collision is a known limitation.
func SyntheticURL(feedURL, guid, title string) string {
	key := guid
	if key == "" {
		key = title
	}
	sum := sha256.Sum256([]byte(key))
	return strings.TrimRight(feedURL, "/") + "/#" + hex.EncodeToString(sum[:8])
}

// itemLink prefers the alternate link and falls back to the first listed one.
// gofeed exposes the alternate link as Item.Link.
func itemLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	for _, l := range item.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

func itemAuthor(item *gofeed.Item) string {
	for _, p := range item.Authors {
		if p != nil {
			return p.Name
		}
	}
	if item.Author != nil {
		return item.Author.Name
	}
	return ""
}

func itemSummary(item *gofeed.Item) string {
	if item.Description != "" {
		return item.Description
	}
	return item.Content
}

func itemTimestamp(item *gofeed.Item) int64 {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.Unix()
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.Unix()
	}
	return 0
}
