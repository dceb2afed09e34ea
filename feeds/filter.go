package feeds

import (
	"time"
)

// Merge flattens per-feed item lists into a single list, de-duplicated by
// link. Feeds are visited in input order and items in per-feed order; the
// first occurrence of a link wins. Items with an empty link are dropped.
func Merge(perFeed [][]*Item) []*Item {
	var merged []*Item
	seen := make(map[string]struct{})

	for _, items := range perFeed {
		for _, item := range items {
			if item.Link == "" {
				continue
			}
			if _, dup := seen[item.Link]; dup {
				continue
			}
			seen[item.Link] = struct{}{}
			merged = append(merged, item)
		}
	}

	return merged
}

// FilterRecent keeps items whose publish timestamp lies in the closed
// interval [now-window, now]. Items with an unparsable publish date
// (PublishedAt == nil) are always excluded.
func FilterRecent(items []*Item, now time.Time, window time.Duration) []*Item {
	cutoff := now.Add(-window)

	var recent []*Item
	for _, item := range items {
		if item.PublishedAt == nil {
			continue
		}
		at := *item.PublishedAt
		if at.Before(cutoff) || at.After(now) {
			continue
		}
		recent = append(recent, item)
	}

	return recent
}
