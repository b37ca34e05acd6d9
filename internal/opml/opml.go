// Package opml reads and writes feed subscription lists.
package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/thomaskoefod/feedmee/pkg/models"
)

const exportTitle = "FeedMee Export"

// Store is what an import writes into.
type Store interface {
	CreateFolder(name string) (int64, error)
	HasFeed(url string) (bool, error)
	CreateFeed(name, url string, folderID int64, feedType models.FeedType) (int64, error)
}

type document struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    head     `xml:"head"`
	Body    body     `xml:"body"`
}

type head struct {
	Title string `xml:"title"`
}

type body struct {
	Outlines []outline `xml:"outline"`
}

type outline struct {
	Type     string    `xml:"type,attr,omitempty"`
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr,omitempty"`
	XMLURL   string    `xml:"xmlUrl,attr,omitempty"`
	Outlines []outline `xml:"outline"`
}

func (o outline) name() string {
	if t := strings.TrimSpace(o.Text); t != "" {
		return t
	}
	if t := strings.TrimSpace(o.Title); t != "" {
		return t
	}
	return strings.TrimSpace(o.XMLURL)
}

// ImportResult counts what an import touched.
type ImportResult struct {
	Folders  int
	Feeds    int
	Existing int
	Skipped  int
}

// Import reads an OPML document. Outlines with children become folders
// holding their children's feeds; top-level feed outlines go to the default
// folder. New feeds are stored as rss and are not fetched; URLs already
// subscribed are left as they are. Entries the store rejects are counted as
// skipped.
func Import(r io.Reader, store Store) (*ImportResult, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding opml: %w", err)
	}

	res := &ImportResult{}
	for _, o := range doc.Body.Outlines {
		if len(o.Outlines) > 0 {
			folderID, err := store.CreateFolder(o.name())
			if err != nil {
				res.Skipped += len(o.Outlines)
				continue
			}
			res.Folders++
			for _, child := range o.Outlines {
				importFeed(store, child, folderID, res)
			}
			continue
		}
		importFeed(store, o, models.DefaultFolderID, res)
	}
	return res, nil
}

func importFeed(store Store, o outline, folderID int64, res *ImportResult) {
	url := strings.TrimSpace(o.XMLURL)
	if url == "" {
		res.Skipped++
		return
	}
	exists, err := store.HasFeed(url)
	if err != nil {
		res.Skipped++
		return
	}
	if exists {
		res.Existing++
		return
	}
	if _, err := store.CreateFeed(o.name(), url, folderID, models.FeedTypeRSS); err != nil {
		res.Skipped++
		return
	}
	res.Feeds++
}

// Export writes an OPML 2.0 document with one outline per non-empty folder.
func Export(w io.Writer, folders []models.Folder) error {
	doc := document{
		Version: "2.0",
		Head:    head{Title: exportTitle},
	}
	for _, folder := range folders {
		if len(folder.Feeds) == 0 {
			continue
		}
		group := outline{Text: folder.Name}
		for _, f := range folder.Feeds {
			group.Outlines = append(group.Outlines, outline{
				Type:   "rss",
				Text:   f.Name,
				XMLURL: f.URL,
			})
		}
		doc.Body.Outlines = append(doc.Body.Outlines, group)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing opml: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding opml: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("writing opml: %w", err)
	}
	return nil
}
