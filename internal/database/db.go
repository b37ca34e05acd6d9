package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/thomaskoefod/feedmee/pkg/models"
	_ "modernc.org/sqlite"
)

const DefaultFolderID = models.DefaultFolderID

var (
	ErrFeedNotFound   = errors.New("feed not found")
	ErrFolderNotFound = errors.New("folder not found")
	ErrDefaultFolder  = errors.New("the default folder cannot be deleted")
)

// DB is the single shared storage handle. Every method holds the lock only
// for its own statements; callers never keep it across network I/O.
type DB struct {
	mu   sync.Mutex
	conn *sql.DB
}

// New creates a new database connection and initializes schema
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection, so pragmas stick and writes are serialized
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.conn.Close()
}

// initSchema creates database tables if they don't exist
func (db *DB) initSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS folders (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS feeds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			url TEXT NOT NULL UNIQUE,
			folder_id INTEGER NOT NULL,
			feed_type TEXT NOT NULL DEFAULT 'rss',
			has_error INTEGER NOT NULL DEFAULT 0,
			content_hash TEXT,
			FOREIGN KEY (folder_id) REFERENCES folders(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			feed_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			author TEXT,
			summary TEXT,
			url TEXT NOT NULL UNIQUE,
			timestamp INTEGER NOT NULL DEFAULT 0,
			is_read INTEGER NOT NULL DEFAULT 0,
			is_saved INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (feed_id) REFERENCES feeds(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_articles_feed_id ON articles(feed_id);
		CREATE INDEX IF NOT EXISTS idx_articles_timestamp ON articles(timestamp);
		CREATE INDEX IF NOT EXISTS idx_feeds_folder_id ON feeds(folder_id);
	`

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	if _, err := db.conn.Exec(
		"INSERT OR IGNORE INTO folders (id, name) VALUES (?, 'Uncategorized')",
		DefaultFolderID,
	); err != nil {
		return fmt.Errorf("ensuring default folder: %w", err)
	}

	return nil
}

// CreateFolder inserts a folder by name, or returns the id of the existing one
func (db *DB) CreateFolder(name string) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec("INSERT OR IGNORE INTO folders (name) VALUES (?)", name); err != nil {
		return 0, fmt.Errorf("inserting folder: %w", err)
	}

	var id int64
	if err := db.conn.QueryRow("SELECT id FROM folders WHERE name = ?", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying folder id: %w", err)
	}
	return id, nil
}

// RenameFolder changes a folder's name
func (db *DB) RenameFolder(id int64, name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := db.conn.Exec("UPDATE folders SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("renaming folder: %w", err)
	}
	return expectRow(res, ErrFolderNotFound)
}

// DeleteFolder removes a folder together with its feeds and their articles.
// The default folder always exists and is refused.
func (db *DB) DeleteFolder(id int64) error {
	if id == DefaultFolderID {
		return ErrDefaultFolder
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.conn.Exec("DELETE FROM folders WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting folder: %w", err)
	}
	return nil
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
