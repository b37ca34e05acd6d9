package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/thomaskoefod/feedmee/pkg/models"
)

const feedColumns = `f.id, f.name, f.url, f.folder_id, f.feed_type, f.has_error, f.content_hash,
	(SELECT COUNT(*) FROM articles a WHERE a.feed_id = f.id AND a.is_read = 0)`

const articleColumns = "a.id, a.feed_id, a.title, a.author, a.summary, a.url, a.timestamp, a.is_read, a.is_saved"

// CreateFeed inserts a feed keyed by url. If the url is already stored only
// its feed type is updated. Returns the feed id either way.
func (db *DB) CreateFeed(name, url string, folderID int64, feedType models.FeedType) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, err := db.conn.Exec(`
		INSERT INTO feeds (name, url, folder_id, feed_type, has_error) VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(url) DO UPDATE SET feed_type = excluded.feed_type`,
		name, url, folderID, string(feedType),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting feed: %w", err)
	}

	var id int64
	if err := db.conn.QueryRow("SELECT id FROM feeds WHERE url = ?", url).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying feed id: %w", err)
	}
	return id, nil
}

// HasFeed reports whether a feed with url is stored
func (db *DB) HasFeed(url string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var n int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM feeds WHERE url = ?", url).Scan(&n); err != nil {
		return false, fmt.Errorf("querying feed by url: %w", err)
	}
	return n > 0, nil
}

// GetFeed retrieves a single feed
func (db *DB) GetFeed(id int64) (*models.Feed, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	row := db.conn.QueryRow("SELECT "+feedColumns+" FROM feeds f WHERE f.id = ?", id)
	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFeedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	return feed, nil
}

// ListFeeds retrieves all feeds ordered by name
func (db *DB) ListFeeds() ([]models.Feed, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query("SELECT " + feedColumns + " FROM feeds f ORDER BY f.name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("querying feeds: %w", err)
	}
	defer rows.Close()

	return collectFeeds(rows)
}

// GetFoldersWithFeeds retrieves every folder with its feeds and unread counts
func (db *DB) GetFoldersWithFeeds() ([]models.Folder, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query("SELECT id, name FROM folders ORDER BY name COLLATE NOCASE")
	if err != nil {
		return nil, fmt.Errorf("querying folders: %w", err)
	}

	var folders []models.Folder
	for rows.Next() {
		var folder models.Folder
		if err := rows.Scan(&folder.ID, &folder.Name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning folder: %w", err)
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating folders: %w", err)
	}
	// single connection: the folder cursor must be released before the next query
	rows.Close()

	for i := range folders {
		feedRows, err := db.conn.Query(
			"SELECT "+feedColumns+" FROM feeds f WHERE f.folder_id = ? ORDER BY f.name COLLATE NOCASE",
			folders[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("querying feeds for folder: %w", err)
		}
		feeds, err := collectFeeds(feedRows)
		feedRows.Close()
		if err != nil {
			return nil, err
		}
		folders[i].Feeds = feeds
	}

	return folders, nil
}

// UpdateFeedError records the outcome of the latest fetch attempt
func (db *DB) UpdateFeedError(feedID int64, hasError bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec("UPDATE feeds SET has_error = ? WHERE id = ?", hasError, feedID); err != nil {
		return fmt.Errorf("updating feed error: %w", err)
	}
	return nil
}

// RenameFeed changes a feed's display name
func (db *DB) RenameFeed(feedID int64, name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := db.conn.Exec("UPDATE feeds SET name = ? WHERE id = ?", name, feedID)
	if err != nil {
		return fmt.Errorf("renaming feed: %w", err)
	}
	return expectRow(res, ErrFeedNotFound)
}

// MoveFeed puts a feed into another folder
func (db *DB) MoveFeed(feedID, folderID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := db.conn.Exec("UPDATE feeds SET folder_id = ? WHERE id = ?", folderID, feedID)
	if err != nil {
		return fmt.Errorf("moving feed: %w", err)
	}
	return expectRow(res, ErrFeedNotFound)
}

// DeleteFeed removes a feed and its articles
func (db *DB) DeleteFeed(id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec("DELETE FROM feeds WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting feed: %w", err)
	}
	return nil
}

// InsertArticle stores an article unless its url is already known. A
// duplicate is not an error; inserted reports whether a row was written.
func (db *DB) InsertArticle(article *models.Article) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := db.conn.Exec(`
		INSERT OR IGNORE INTO articles (feed_id, title, author, summary, url, timestamp, is_read, is_saved)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0)`,
		article.FeedID, article.Title, article.Author, article.Summary, article.URL, article.Timestamp,
	)
	if err != nil {
		return false, fmt.Errorf("inserting article: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("getting last insert id: %w", err)
	}
	article.ID = id
	return true, nil
}

// GetArticlesForFeed pages through a feed's articles by timestamp
func (db *DB) GetArticlesForFeed(feedID int64, limit, offset int, sortDesc bool) ([]models.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles a WHERE a.feed_id = ? ORDER BY a.timestamp " +
		order(sortDesc) + " LIMIT ? OFFSET ?"
	return db.queryArticles(query, feedID, limit, offset)
}

// GetArticlesForFolder pages through the unread articles of a folder
func (db *DB) GetArticlesForFolder(folderID int64, limit, offset int, sortDesc bool) ([]models.Article, error) {
	query := "SELECT " + articleColumns + ` FROM articles a
		JOIN feeds f ON a.feed_id = f.id
		WHERE f.folder_id = ? AND a.is_read = 0
		ORDER BY a.timestamp ` + order(sortDesc) + " LIMIT ? OFFSET ?"
	return db.queryArticles(query, folderID, limit, offset)
}

// GetLatestArticles pages through articles newer than cutoff (epoch seconds)
func (db *DB) GetLatestArticles(cutoff int64, limit, offset int, sortDesc bool) ([]models.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles a WHERE a.timestamp > ? ORDER BY a.timestamp " +
		order(sortDesc) + " LIMIT ? OFFSET ?"
	return db.queryArticles(query, cutoff, limit, offset)
}

// GetSavedArticles pages through saved articles
func (db *DB) GetSavedArticles(limit, offset int, sortDesc bool) ([]models.Article, error) {
	query := "SELECT " + articleColumns + " FROM articles a WHERE a.is_saved = 1 ORDER BY a.timestamp " +
		order(sortDesc) + " LIMIT ? OFFSET ?"
	return db.queryArticles(query, limit, offset)
}

// SetArticleRead sets the read flag of one article
func (db *DB) SetArticleRead(articleID int64, read bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec("UPDATE articles SET is_read = ? WHERE id = ?", read, articleID); err != nil {
		return fmt.Errorf("marking article as read: %w", err)
	}
	return nil
}

// SetArticleSaved sets the saved flag of one article
func (db *DB) SetArticleSaved(articleID int64, saved bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec("UPDATE articles SET is_saved = ? WHERE id = ?", saved, articleID); err != nil {
		return fmt.Errorf("marking article as saved: %w", err)
	}
	return nil
}

// MarkFeedRead marks every article of a feed as read
func (db *DB) MarkFeedRead(feedID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec("UPDATE articles SET is_read = 1 WHERE feed_id = ?", feedID); err != nil {
		return fmt.Errorf("marking feed as read: %w", err)
	}
	return nil
}

// MarkFolderRead marks every article of every feed in a folder as read
func (db *DB) MarkFolderRead(folderID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec(
		"UPDATE articles SET is_read = 1 WHERE feed_id IN (SELECT id FROM feeds WHERE folder_id = ?)",
		folderID,
	); err != nil {
		return fmt.Errorf("marking folder as read: %w", err)
	}
	return nil
}

func (db *DB) queryArticles(query string, args ...any) ([]models.Article, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		var article models.Article
		var author, summary sql.NullString
		if err := rows.Scan(&article.ID, &article.FeedID, &article.Title, &author, &summary,
			&article.URL, &article.Timestamp, &article.IsRead, &article.IsSaved); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		article.Author = author.String
		article.Summary = summary.String
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (*models.Feed, error) {
	var feed models.Feed
	var feedType string
	var hash sql.NullString
	if err := row.Scan(&feed.ID, &feed.Name, &feed.URL, &feed.FolderID, &feedType,
		&feed.HasError, &hash, &feed.UnreadCount); err != nil {
		return nil, err
	}
	feed.FeedType = models.FeedType(feedType)
	if hash.Valid {
		feed.ContentHash = &hash.String
	}
	return &feed, nil
}

func collectFeeds(rows *sql.Rows) ([]models.Feed, error) {
	var feeds []models.Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	return feeds, rows.Err()
}

func order(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}
