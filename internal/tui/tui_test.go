package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomaskoefod/feedmee/internal/feed"
	"github.com/thomaskoefod/feedmee/pkg/models"
)

type fakeStore struct {
	folders  []models.Folder
	articles map[int64][]models.Article
	read     map[int64]bool
	saved    map[int64]bool
}

func (s *fakeStore) GetFoldersWithFeeds() ([]models.Folder, error) {
	return s.folders, nil
}

func (s *fakeStore) GetArticlesForFeed(feedID int64, _, _ int, _ bool) ([]models.Article, error) {
	return s.articles[feedID], nil
}

func (s *fakeStore) SetArticleRead(id int64, read bool) error {
	s.read[id] = read
	return nil
}

func (s *fakeStore) SetArticleSaved(id int64, saved bool) error {
	s.saved[id] = saved
	return nil
}

type fakeEngine struct {
	added   []string
	content string
	err     error
}

func (e *fakeEngine) AddFeed(_ context.Context, rawURL string, _ int64) (*feed.AddResult, error) {
	e.added = append(e.added, rawURL)
	return &feed.AddResult{FeedID: 9, Name: "New", FeedType: models.FeedTypeRSS, Inserted: 2}, nil
}

func (e *fakeEngine) RefreshFeed(context.Context, int64) (int, error) { return 1, nil }

func (e *fakeEngine) RefreshAll(context.Context) (int, error) { return 4, nil }

func (e *fakeEngine) ExtractContent(context.Context, string) (string, error) {
	return e.content, e.err
}

func newTestModel() (Model, *fakeStore, *fakeEngine) {
	store := &fakeStore{
		folders: []models.Folder{{
			ID:   1,
			Name: "Uncategorized",
			Feeds: []models.Feed{
				{ID: 1, Name: "Go Blog", FeedType: models.FeedTypeRSS, UnreadCount: 2},
			},
		}},
		articles: map[int64][]models.Article{
			1: {
				{ID: 10, FeedID: 1, Title: "Generics", URL: "https://go.dev/blog/generics", Summary: "<p>About generics</p>"},
				{ID: 11, FeedID: 1, Title: "Iterators", URL: "https://go.dev/blog/iter", IsRead: true},
			},
		},
		read:  map[int64]bool{},
		saved: map[int64]bool{},
	}
	engine := &fakeEngine{}

	m := New(context.Background(), store, engine)
	m.markdownStyle = "notty"
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), store, engine
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestModel_FeedsToArticles(t *testing.T) {
	m, store, _ := newTestModel()

	m, _ = send(t, m, loadFeeds(store)())
	require.Len(t, m.feeds.Items(), 1)

	m, cmd := send(t, m, key("enter"))
	assert.Equal(t, ViewArticles, m.view)
	require.NotNil(t, cmd)

	msg := cmd()
	loaded, ok := msg.(articlesLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, int64(1), loaded.feedID)

	m, _ = send(t, m, msg)
	assert.Len(t, m.articles.Items(), 2)
	assert.Equal(t, "Go Blog", m.articles.Title)

	m, _ = send(t, m, key("esc"))
	assert.Equal(t, ViewFeeds, m.view)
	assert.Nil(t, m.currentFeed)
}

func TestModel_ToggleReadAndSaved(t *testing.T) {
	m, store, _ := newTestModel()
	m, _ = send(t, m, loadFeeds(store)())
	m, cmd := send(t, m, key("enter"))
	m, _ = send(t, m, cmd())

	m, cmd = send(t, m, key("m"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.True(t, store.read[10])
	assert.True(t, m.articles.Items()[0].(articleItem).article.IsRead)

	m, cmd = send(t, m, key("s"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.True(t, store.saved[10])
	assert.True(t, m.articles.Items()[0].(articleItem).article.IsSaved)
}

func TestModel_AddFeedInput(t *testing.T) {
	m, _, engine := newTestModel()

	m, _ = send(t, m, key("a"))
	require.Equal(t, ViewAddFeed, m.view)

	m, _ = send(t, m, key("https://example.com"))
	assert.Equal(t, "https://example.com", m.input.Value())

	m, cmd := send(t, m, key("enter"))
	assert.Equal(t, ViewFeeds, m.view)
	require.NotNil(t, cmd)

	msg := addFeed(m.ctx, m.engine, m.input.Value())()
	assert.Equal(t, statusMsg("Added New (rss, 2 articles)"), msg)
	assert.Equal(t, []string{"https://example.com"}, engine.added)
}

func TestModel_AddFeedCancel(t *testing.T) {
	m, _, engine := newTestModel()

	m, _ = send(t, m, key("a"))
	m, _ = send(t, m, key("esc"))
	assert.Equal(t, ViewFeeds, m.view)
	assert.Empty(t, engine.added)
}

func TestLoadContent(t *testing.T) {
	article := models.Article{ID: 10, Title: "Generics", URL: "https://go.dev/blog/generics", Summary: "<p>Summary text</p>"}

	t.Run("extracted", func(t *testing.T) {
		engine := &fakeEngine{content: "<p>Extracted body text</p>"}
		msg := loadContent(context.Background(), engine, article, 80, "notty")()

		loaded, ok := msg.(contentLoadedMsg)
		require.True(t, ok, "got %#v", msg)
		assert.Contains(t, loaded.rendered, "Extracted body text")
		assert.Contains(t, loaded.rendered, "Generics")
	})

	t.Run("falls back to summary", func(t *testing.T) {
		engine := &fakeEngine{err: &feed.Error{Kind: feed.KindNoContent, Detail: "no content extracted"}}
		msg := loadContent(context.Background(), engine, article, 80, "notty")()

		loaded, ok := msg.(contentLoadedMsg)
		require.True(t, ok, "got %#v", msg)
		assert.Contains(t, loaded.rendered, "Summary text")
	})

	t.Run("network error", func(t *testing.T) {
		netErr := &feed.Error{Kind: feed.KindNetwork, Detail: "fetching", Err: errors.New("refused")}
		engine := &fakeEngine{err: netErr}
		msg := loadContent(context.Background(), engine, article, 80, "notty")()

		e, ok := msg.(errorMsg)
		require.True(t, ok)
		assert.ErrorIs(t, e.err, netErr)
	})
}

func TestArticleItem(t *testing.T) {
	unread := articleItem{models.Article{Title: "T", Timestamp: 0}}
	assert.Equal(t, "* T", unread.Title())
	assert.Equal(t, "undated", unread.Description())

	saved := articleItem{models.Article{Title: "T", IsRead: true, IsSaved: true, Author: "Ada", Timestamp: 1700000000}}
	assert.Equal(t, "+ T", saved.Title())
	assert.Contains(t, saved.Description(), "Ada")
}
