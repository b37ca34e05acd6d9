package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeItem_AlternateLinkVerbatim(t *testing.T) {
	item := &gofeed.Item{
		Title: "  Hello  ",
		Link:  "https://example.com/p?id=1&utm=x#frag",
		Links: []string{"https://example.com/other"},
	}

	a := NormalizeItem(item, 7, "https://example.com/feed")
	assert.Equal(t, "https://example.com/p?id=1&utm=x#frag", a.URL)
	assert.Equal(t, "Hello", a.Title)
	assert.Equal(t, int64(7), a.FeedID)
}

func TestNormalizeItem_Fallbacks(t *testing.T) {
	published := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := time.Date(2024, 2, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name string
		item *gofeed.Item
		check func(t *testing.T, title, author, summary, link string, ts int64)
	}{
		{
			name: "first of links",
			item: &gofeed.Item{Title: "x", Links: []string{"", "https://example.com/second"}},
			check: func(t *testing.T, _, _, _, link string, _ int64) {
				assert.Equal(t, "https://example.com/second", link)
			},
		},
		{
			name: "placeholder title",
			item: &gofeed.Item{Link: "https://example.com/a"},
			check: func(t *testing.T, title, _, _, _ string, _ int64) {
				assert.Equal(t, "No Title", title)
			},
		},
		{
			name: "first author wins",
			item: &gofeed.Item{
				Authors: []*gofeed.Person{{Name: "Ada"}, {Name: "Grace"}},
				Author:  &gofeed.Person{Name: "Legacy"},
			},
			check: func(t *testing.T, _, author, _, _ string, _ int64) {
				assert.Equal(t, "Ada", author)
			},
		},
		{
			name: "legacy author field",
			item: &gofeed.Item{Author: &gofeed.Person{Name: "Legacy"}},
			check: func(t *testing.T, _, author, _, _ string, _ int64) {
				assert.Equal(t, "Legacy", author)
			},
		},
		{
			name: "summary prefers description",
			item: &gofeed.Item{Description: "desc", Content: "content"},
			check: func(t *testing.T, _, _, summary, _ string, _ int64) {
				assert.Equal(t, "desc", summary)
			},
		},
		{
			name: "summary falls back to content",
			item: &gofeed.Item{Content: "<p>content</p>"},
			check: func(t *testing.T, _, _, summary, _ string, _ int64) {
				assert.Equal(t, "<p>content</p>", summary)
			},
		},
		{
			name: "published timestamp",
			item: &gofeed.Item{PublishedParsed: &published, UpdatedParsed: &updated},
			check: func(t *testing.T, _, _, _, _ string, ts int64) {
				assert.Equal(t, published.Unix(), ts)
			},
		},
		{
			name: "updated timestamp",
			item: &gofeed.Item{UpdatedParsed: &updated},
			check: func(t *testing.T, _, _, _, _ string, ts int64) {
				assert.Equal(t, updated.Unix(), ts)
			},
		},
		{
			name: "no timestamp",
			item: &gofeed.Item{},
			check: func(t *testing.T, _, author, summary, _ string, ts int64) {
				assert.Zero(t, ts)
				assert.Empty(t, author)
				assert.Empty(t, summary)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NormalizeItem(tt.item, 1, "https://example.com/feed")
			tt.check(t, a.Title, a.Author, a.Summary, a.URL, a.Timestamp)
		})
	}
}

func TestNormalizeItem_SyntheticURLIsDeterministic(t *testing.T) {
	withGUID := &gofeed.Item{GUID: "tag:example.com,2024:1", Title: "Same"}
	withTitle := &gofeed.Item{Title: "Only a title"}

	for _, item := range []*gofeed.Item{withGUID, withTitle} {
		first := NormalizeItem(item, 1, "https://example.com/feed/")
		second := NormalizeItem(item, 1, "https://example.com/feed/")
		assert.Equal(t, first.URL, second.URL)
		assert.True(t, strings.HasPrefix(first.URL, "https://example.com/feed/#"), first.URL)
	}

	assert.NotEqual(t,
		NormalizeItem(withGUID, 1, "https://example.com/feed").URL,
		NormalizeItem(&gofeed.Item{GUID: "tag:example.com,2024:2", Title: "Same"}, 1, "https://example.com/feed").URL,
	)
}

func TestSyntheticURL(t *testing.T) {
	a := SyntheticURL("https://example.com/feed///", "guid-1", "ignored")
	b := SyntheticURL("https://example.com/feed", "guid-1", "other title")
	assert.Equal(t, a, b, "guid wins over title and trailing slashes are dropped")

	hash := strings.TrimPrefix(a, "https://example.com/feed/#")
	assert.Len(t, hash, 16)
}

func TestNormalizeFeed(t *testing.T) {
	parsed, err := ParseFeed([]byte(rssTwoItems))
	require.NoError(t, err)

	articles := NormalizeFeed(parsed, 3, "https://example.com/rss")
	require.Len(t, articles, 2)

	assert.Equal(t, "https://example.com/item-one", articles[0].URL)
	assert.Equal(t, time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC).Unix(), articles[0].Timestamp)
	assert.Equal(t, SyntheticURL("https://example.com/rss", "item-2", "Item two"), articles[1].URL)
	assert.Equal(t, "no link here", articles[1].Summary)
}
