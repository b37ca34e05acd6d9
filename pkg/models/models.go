package models

// DefaultFolderID is the "Uncategorized" folder, which always exists.
const DefaultFolderID int64 = 1

// FeedType tells the engine how a source is ingested.
type FeedType string

const (
	FeedTypeRSS     FeedType = "rss"
	FeedTypeWebsite FeedType = "website"
)

type Folder struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Feeds []Feed `json:"feeds"`
}

type Feed struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	FolderID    int64    `json:"folder_id"`
	FeedType    FeedType `json:"feed_type"`
	HasError    bool     `json:"has_error"`
	ContentHash *string  `json:"content_hash,omitempty"`
	UnreadCount int64    `json:"unread_count"`
}

// Article timestamps are epoch seconds. Scraped entries carry the scrape time.
type Article struct {
	ID        int64  `json:"id"`
	FeedID    int64  `json:"feed_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
	IsRead    bool   `json:"is_read"`
	IsSaved   bool   `json:"is_saved"`
}
