/*
Package feeds implements the job-feed pipeline: fetching the configured RSS
feeds in parallel, merging the results with link-based de-duplication, and
filtering the merged list down to a trailing recency window.

Nothing in this package is persisted; every invocation recomputes its state
from the live feeds.
*/
package feeds

import (
	"strings"
	"time"
)

// Item represents one job posting extracted from a feed document.
//
// PublishedAt is nil when the source pubDate could not be parsed; such items
// are always excluded by FilterRecent.
type Item struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	PubDate     string     `json:"pub_date"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Sanitize trims surrounding whitespace from all string fields
func (i *Item) Sanitize() {
	i.Title = strings.TrimSpace(i.Title)
	i.Link = strings.TrimSpace(i.Link)
	i.Description = strings.TrimSpace(i.Description)
	i.PubDate = strings.TrimSpace(i.PubDate)
}
