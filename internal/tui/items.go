package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"

	"github.com/thomaskoefod/feedmee/pkg/models"
)

type feedItem struct {
	feed   models.Feed
	folder string
}

func (i feedItem) Title() string {
	title := i.feed.Name
	if i.feed.HasError {
		title = "! " + title
	}
	return title
}

func (i feedItem) Description() string {
	return fmt.Sprintf("%s | %s | %d unread", i.folder, i.feed.FeedType, i.feed.UnreadCount)
}

func (i feedItem) FilterValue() string {
	return i.feed.Name
}

type articleItem struct {
	article models.Article
}

func (i articleItem) Title() string {
	marker := "  "
	if !i.article.IsRead {
		marker = "* "
	}
	if i.article.IsSaved {
		marker = "+ "
	}
	return marker + i.article.Title
}

func (i articleItem) Description() string {
	date := "undated"
	if i.article.Timestamp > 0 {
		date = time.Unix(i.article.Timestamp, 0).Format("Jan 2, 2006")
	}
	if i.article.Author != "" {
		return fmt.Sprintf("%s | %s", date, i.article.Author)
	}
	return date
}

func (i articleItem) FilterValue() string {
	return i.article.Title
}

var (
	_ list.Item = feedItem{}
	_ list.Item = articleItem{}
)

func feedItems(folders []models.Folder) []list.Item {
	var items []list.Item
	for _, folder := range folders {
		for _, f := range folder.Feeds {
			items = append(items, feedItem{feed: f, folder: folder.Name})
		}
	}
	return items
}

func articleItems(articles []models.Article) []list.Item {
	items := make([]list.Item, len(articles))
	for i, a := range articles {
		items[i] = articleItem{a}
	}
	return items
}
