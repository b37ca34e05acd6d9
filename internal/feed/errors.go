package feed

import (
	"errors"
	"fmt"
)

// Kind classifies why an ingestion step failed.
type Kind int

const (
	// KindNetwork: the fetch failed. Aborts the attempt.
	KindNetwork Kind = iota + 1
	// KindParse: the bytes are not a usable feed. Triggers discovery.
	KindParse
	// KindDiscovery: no feed link, or the linked feed is unusable. Triggers scraping.
	KindDiscovery
	// KindScrapeEmpty: the page yielded no usable links.
	KindScrapeEmpty
	// KindNoContent: content extraction found nothing substantial.
	KindNoContent
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindParse:
		return "parse error"
	case KindDiscovery:
		return "discovery failure"
	case KindScrapeEmpty:
		return "scrape empty"
	case KindNoContent:
		return "no content"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func newError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}
