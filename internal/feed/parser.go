package feed

import (
	"bytes"
	"strings"

	"github.com/mmcdole/gofeed"
)

// ParseFeed parses RSS, Atom or JSON feed bytes. The result is returned only
// when usable; anything else is a KindParse error. The declared content type
// is deliberately not consulted: mislabeled feeds are common.
func ParseFeed(body []byte) (*gofeed.Feed, error) {
	// gofeed parsers keep per-parse state, so each call gets its own
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, newError(KindParse, "not a recognized feed document", err)
	}
	if !Usable(parsed) {
		return nil, newError(KindParse, "feed has neither a title nor entries", nil)
	}
	return parsed, nil
}

// Usable reports whether a parsed feed carries a title or at least one entry.
// Lenient parsers accept some HTML pages as empty feeds; those are not usable.
func Usable(parsed *gofeed.Feed) bool {
	if parsed == nil {
		return false
	}
	return strings.TrimSpace(parsed.Title) != "" || len(parsed.Items) > 0
}
