package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/thomaskoefod/feedmee/internal/feed"
	"github.com/thomaskoefod/feedmee/pkg/models"
)

const articlePageSize = 200

type View int

const (
	ViewFeeds View = iota
	ViewArticles
	ViewContent
	ViewAddFeed
	ViewHelp
)

// Store is the read side the front-end lists from.
type Store interface {
	GetFoldersWithFeeds() ([]models.Folder, error)
	GetArticlesForFeed(feedID int64, limit, offset int, sortDesc bool) ([]models.Article, error)
	SetArticleRead(articleID int64, read bool) error
	SetArticleSaved(articleID int64, saved bool) error
}

// Engine is the ingestion side the front-end triggers.
type Engine interface {
	AddFeed(ctx context.Context, rawURL string, folderID int64) (*feed.AddResult, error)
	RefreshFeed(ctx context.Context, feedID int64) (int, error)
	RefreshAll(ctx context.Context) (int, error)
	ExtractContent(ctx context.Context, articleURL string) (string, error)
}

type Model struct {
	ctx    context.Context
	store  Store
	engine Engine

	view     View
	prevView View
	feeds    list.Model
	articles list.Model
	content  viewport.Model
	input    textinput.Model

	currentFeed    *models.Feed
	currentArticle *models.Article
	markdownStyle  string

	width     int
	height    int
	err       error
	statusMsg string
}

type feedsLoadedMsg struct {
	folders []models.Folder
}

type articlesLoadedMsg struct {
	feedID   int64
	articles []models.Article
}

type contentLoadedMsg struct {
	article  models.Article
	rendered string
}

type articleUpdatedMsg struct {
	article models.Article
}

type errorMsg struct {
	err error
}

type statusMsg string

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	articleTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("86")).
				MarginBottom(1)
)

func New(ctx context.Context, store Store, engine Engine) Model {
	feeds := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	feeds.Title = "FeedMee"
	feeds.SetShowStatusBar(true)
	feeds.SetFilteringEnabled(true)
	feeds.Styles.Title = titleStyle

	articles := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	articles.SetShowStatusBar(true)
	articles.SetFilteringEnabled(true)
	articles.Styles.Title = titleStyle

	input := textinput.New()
	input.Placeholder = "https://example.com/feed.xml"
	input.CharLimit = 2048
	input.Width = 60

	return Model{
		ctx:      ctx,
		store:    store,
		engine:   engine,
		view:     ViewFeeds,
		feeds:    feeds,
		articles: articles,
		content:  viewport.New(0, 0),
		input:    input,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadFeeds(m.store),
		tea.EnterAltScreen,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.feeds.SetSize(msg.Width, msg.Height-4)
		m.articles.SetSize(msg.Width, msg.Height-4)
		m.content.Width = msg.Width
		m.content.Height = msg.Height - 4
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case feedsLoadedMsg:
		cmd := m.feeds.SetItems(feedItems(msg.folders))
		if m.currentFeed != nil {
			for _, folder := range msg.folders {
				for _, f := range folder.Feeds {
					if f.ID == m.currentFeed.ID {
						m.currentFeed = &f
					}
				}
			}
		}
		return m, cmd

	case articlesLoadedMsg:
		if m.currentFeed == nil || m.currentFeed.ID != msg.feedID {
			return m, nil
		}
		m.articles.Title = m.currentFeed.Name
		cmd := m.articles.SetItems(articleItems(msg.articles))
		m.statusMsg = fmt.Sprintf("Loaded %d articles", len(msg.articles))
		return m, cmd

	case contentLoadedMsg:
		if m.currentArticle == nil || m.currentArticle.ID != msg.article.ID {
			return m, nil
		}
		m.content.SetContent(msg.rendered)
		m.content.GotoTop()
		m.statusMsg = ""
		return m, nil

	case articleUpdatedMsg:
		m.replaceArticle(msg.article)
		return m, nil

	case errorMsg:
		m.err = msg.err
		return m, nil

	case statusMsg:
		m.err = nil
		m.statusMsg = string(msg)
		return m, nil
	}

	return m.updateActive(msg)
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ViewFeeds:
		m.feeds, cmd = m.feeds.Update(msg)
	case ViewArticles:
		m.articles, cmd = m.articles.Update(msg)
	case ViewContent:
		m.content, cmd = m.content.Update(msg)
	case ViewAddFeed:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.view {
	case ViewFeeds:
		return m.handleFeedKeys(msg)
	case ViewArticles:
		return m.handleArticleKeys(msg)
	case ViewContent:
		return m.handleContentKeys(msg)
	case ViewAddFeed:
		return m.handleAddFeedKeys(msg)
	case ViewHelp:
		return m.handleHelpKeys(msg)
	}
	return m, nil
}

func (m Model) handleFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.feeds.FilterState() == list.Filtering {
		return m.updateActive(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "enter":
		if i, ok := m.feeds.SelectedItem().(feedItem); ok {
			f := i.feed
			m.currentFeed = &f
			m.view = ViewArticles
			return m, loadArticles(m.store, f.ID)
		}

	case "r":
		if i, ok := m.feeds.SelectedItem().(feedItem); ok {
			m.statusMsg = fmt.Sprintf("Refreshing %s...", i.feed.Name)
			return m, tea.Sequence(refreshFeed(m.ctx, m.engine, i.feed.ID), loadFeeds(m.store))
		}

	case "R":
		m.statusMsg = "Refreshing all feeds..."
		return m, tea.Sequence(refreshAll(m.ctx, m.engine), loadFeeds(m.store))

	case "a":
		m.view = ViewAddFeed
		m.input.Reset()
		return m, m.input.Focus()

	case "?":
		m.prevView = m.view
		m.view = ViewHelp
		return m, nil
	}

	return m.updateActive(msg)
}

func (m Model) handleArticleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.articles.FilterState() == list.Filtering {
		return m.updateActive(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc", "backspace":
		m.view = ViewFeeds
		m.currentFeed = nil
		return m, loadFeeds(m.store)

	case "enter":
		if i, ok := m.articles.SelectedItem().(articleItem); ok {
			a := i.article
			m.currentArticle = &a
			m.view = ViewContent
			m.content.SetContent(articleTitleStyle.Render(a.Title) + "\n" + helpStyle.Render("Loading content..."))
			cmds := []tea.Cmd{loadContent(m.ctx, m.engine, a, m.contentWidth(), m.markdownStyle)}
			if !a.IsRead {
				cmds = append(cmds, setRead(m.store, a, true))
			}
			return m, tea.Batch(cmds...)
		}

	case "m":
		if i, ok := m.articles.SelectedItem().(articleItem); ok {
			return m, setRead(m.store, i.article, !i.article.IsRead)
		}

	case "s":
		if i, ok := m.articles.SelectedItem().(articleItem); ok {
			return m, setSaved(m.store, i.article, !i.article.IsSaved)
		}

	case "r":
		if m.currentFeed != nil {
			m.statusMsg = fmt.Sprintf("Refreshing %s...", m.currentFeed.Name)
			return m, tea.Sequence(
				refreshFeed(m.ctx, m.engine, m.currentFeed.ID),
				loadArticles(m.store, m.currentFeed.ID),
				loadFeeds(m.store),
			)
		}

	case "?":
		m.prevView = m.view
		m.view = ViewHelp
		return m, nil
	}

	return m.updateActive(msg)
}

func (m Model) handleContentKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "esc", "backspace":
		m.view = ViewArticles
		m.currentArticle = nil
		return m, nil

	case "m":
		if m.currentArticle != nil {
			return m, setRead(m.store, *m.currentArticle, !m.currentArticle.IsRead)
		}

	case "s":
		if m.currentArticle != nil {
			return m, setSaved(m.store, *m.currentArticle, !m.currentArticle.IsSaved)
		}

	case "?":
		m.prevView = m.view
		m.view = ViewHelp
		return m, nil
	}

	return m.updateActive(msg)
}

func (m Model) handleAddFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		m.view = ViewFeeds
		return m, nil

	case "enter":
		url := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.view = ViewFeeds
		if url == "" {
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Adding %s...", url)
		return m, tea.Sequence(addFeed(m.ctx, m.engine, url), loadFeeds(m.store))
	}

	return m.updateActive(msg)
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "?", "q":
		m.view = m.prevView
		return m, nil
	}
	return m, nil
}

// replaceArticle swaps an updated article into the list and the open view.
func (m *Model) replaceArticle(a models.Article) {
	for idx, item := range m.articles.Items() {
		if i, ok := item.(articleItem); ok && i.article.ID == a.ID {
			m.articles.SetItem(idx, articleItem{a})
			break
		}
	}
	if m.currentArticle != nil && m.currentArticle.ID == a.ID {
		m.currentArticle = &a
	}
}

func (m Model) contentWidth() int {
	if m.width <= 4 {
		return 80
	}
	return m.width - 4
}

func (m Model) View() string {
	switch m.view {
	case ViewFeeds:
		return m.renderWithStatus(m.feeds.View(), "enter: open • r: refresh • R: refresh all • a: add feed • ?: help • q: quit")
	case ViewArticles:
		return m.renderWithStatus(m.articles.View(), "enter: read • m: toggle read • s: toggle saved • r: refresh • esc: back • ?: help")
	case ViewContent:
		return m.renderWithStatus(m.content.View(), "↑/↓: scroll • m: toggle read • s: toggle saved • esc: back • ?: help")
	case ViewAddFeed:
		return m.renderAddFeed()
	case ViewHelp:
		return m.renderHelp()
	}
	return ""
}

func (m Model) renderWithStatus(body, keys string) string {
	var s strings.Builder

	s.WriteString(body)
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.statusMsg != "" {
		s.WriteString(statusStyle.Render(m.statusMsg))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(keys))

	return s.String()
}

func (m Model) renderAddFeed() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Add a feed or website"))
	s.WriteString("\n")
	s.WriteString(m.input.View())
	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("enter: add • esc: cancel"))

	return s.String()
}

func (m Model) renderHelp() string {
	help := `
FeedMee - Keyboard Shortcuts

Feeds:
  ↑/↓, j/k     Navigate feeds
  enter        Show the feed's articles
  r            Refresh the selected feed
  R            Refresh every feed
  a            Add a feed, or any website, by URL
  /            Filter feeds
  q, ctrl+c    Quit

Articles:
  enter        Read article
  m            Toggle read
  s            Toggle saved
  r            Refresh this feed
  esc          Back to feeds

Article:
  ↑/↓, j/k     Scroll
  m            Toggle read
  s            Toggle saved
  esc          Back to articles

General:
  ?            Show/hide this help
`
	return help + "\n" + helpStyle.Render("Press ? or esc to close help")
}

func loadFeeds(store Store) tea.Cmd {
	return func() tea.Msg {
		folders, err := store.GetFoldersWithFeeds()
		if err != nil {
			return errorMsg{err}
		}
		return feedsLoadedMsg{folders}
	}
}

func loadArticles(store Store, feedID int64) tea.Cmd {
	return func() tea.Msg {
		articles, err := store.GetArticlesForFeed(feedID, articlePageSize, 0, true)
		if err != nil {
			return errorMsg{err}
		}
		return articlesLoadedMsg{feedID: feedID, articles: articles}
	}
}

func refreshFeed(ctx context.Context, engine Engine, feedID int64) tea.Cmd {
	return func() tea.Msg {
		count, err := engine.RefreshFeed(ctx, feedID)
		if err != nil {
			return errorMsg{err}
		}
		return statusMsg(fmt.Sprintf("Fetched %d new articles", count))
	}
}

func refreshAll(ctx context.Context, engine Engine) tea.Cmd {
	return func() tea.Msg {
		count, err := engine.RefreshAll(ctx)
		if err != nil {
			return errorMsg{err}
		}
		return statusMsg(fmt.Sprintf("Fetched %d new articles", count))
	}
}

func addFeed(ctx context.Context, engine Engine, url string) tea.Cmd {
	return func() tea.Msg {
		res, err := engine.AddFeed(ctx, url, models.DefaultFolderID)
		if err != nil {
			return errorMsg{err}
		}
		return statusMsg(fmt.Sprintf("Added %s (%s, %d articles)", res.Name, res.FeedType, res.Inserted))
	}
}

func setRead(store Store, a models.Article, read bool) tea.Cmd {
	return func() tea.Msg {
		if err := store.SetArticleRead(a.ID, read); err != nil {
			return errorMsg{err}
		}
		a.IsRead = read
		return articleUpdatedMsg{a}
	}
}

func setSaved(store Store, a models.Article, saved bool) tea.Cmd {
	return func() tea.Msg {
		if err := store.SetArticleSaved(a.ID, saved); err != nil {
			return errorMsg{err}
		}
		a.IsSaved = saved
		return articleUpdatedMsg{a}
	}
}

// loadContent extracts the article's page, falling back to the stored summary
// when the page has no substantial content.
func loadContent(ctx context.Context, engine Engine, a models.Article, width int, style string) tea.Cmd {
	return func() tea.Msg {
		fragment, err := engine.ExtractContent(ctx, a.URL)
		if err != nil {
			if !feed.IsKind(err, feed.KindNoContent) || a.Summary == "" {
				return errorMsg{err}
			}
			fragment = a.Summary
		}

		rendered, err := renderArticle(a, fragment, width, style)
		if err != nil {
			return errorMsg{err}
		}
		return contentLoadedMsg{article: a, rendered: rendered}
	}
}

func renderArticle(a models.Article, fragment string, width int, style string) (string, error) {
	markdown, err := feed.ToMarkdown(fragment, a.URL)
	if err != nil {
		return "", err
	}

	styleOpt := glamour.WithAutoStyle()
	if style != "" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	body, err := renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("rendering article: %w", err)
	}

	var s strings.Builder
	s.WriteString(articleTitleStyle.Render(a.Title))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(a.URL))
	s.WriteString("\n")
	s.WriteString(body)
	return s.String(), nil
}
