package feeds

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"github.com/rzafh/portfolio-backend/monitoring"
)

// ItemCache is the subset of cache operations the fetcher needs
type ItemCache interface {
	GetFeedItems(url string) ([]*Item, bool)
	SetFeedItems(url string, items []*Item) error
}

// Fetcher fetches and parses all configured feed URLs
type Fetcher struct {
	urls   []string
	cache  ItemCache
	logger *logrus.Logger
}

// NewFetcher creates a fetcher for the given feed URLs. cache may be nil.
func NewFetcher(urls []string, cache ItemCache, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		urls:   urls,
		cache:  cache,
		logger: logger,
	}
}

// URLs returns the configured feed URLs
func (f *Fetcher) URLs() []string {
	return f.urls
}

// FetchAll fetches every configured feed concurrently and returns one item
// slice per URL, indexed like the URL list. A failing feed yields an empty
// slice for its slot and never fails the batch; the only error condition is
// an empty URL list.
func (f *Fetcher) FetchAll(ctx context.Context) ([][]*Item, error) {
	if len(f.urls) == 0 {
		return nil, fmt.Errorf("no feed URLs configured")
	}

	results := make([][]*Item, len(f.urls))
	var wg sync.WaitGroup

	for i, url := range f.urls {
		wg.Add(1)
		go func(slot int, feedURL string) {
			defer wg.Done()
			results[slot] = f.fetchOne(ctx, feedURL)
		}(i, url)
	}

	wg.Wait()
	return results, nil
}

// fetchOne fetches and parses a single feed, recovering locally from failure
func (f *Fetcher) fetchOne(ctx context.Context, url string) []*Item {
	if f.cache != nil {
		if cached, found := f.cache.GetFeedItems(url); found {
			monitoring.RecordCacheHit("get_feed_items")
			f.logger.WithFields(logrus.Fields{
				"url":         url,
				"items_count": len(cached),
			}).Debug("Feed retrieved from cache")
			return cached
		}
		monitoring.RecordCacheMiss("get_feed_items")
	}

	start := time.Now()
	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(url, ctx)
	if err != nil {
		monitoring.RecordFeedFetch(url, "failed", time.Since(start).Seconds(), -1)
		monitoring.NoteFeedFetchFailure()
		f.logger.WithFields(logrus.Fields{
			"url":   url,
			"error": err.Error(),
		}).Error("Failed to fetch feed, treating as empty")
		return nil
	}

	items := make([]*Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item := &Item{
			Title:       entry.Title,
			Link:        entry.Link,
			Description: entry.Description,
			PubDate:     entry.Published,
			PublishedAt: entry.PublishedParsed,
		}
		item.Sanitize()
		items = append(items, item)
	}

	monitoring.RecordFeedFetch(url, "success", time.Since(start).Seconds(), len(items))
	monitoring.NoteFeedFetchSuccess()

	if f.cache != nil {
		if err := f.cache.SetFeedItems(url, items); err != nil {
			f.logger.WithFields(logrus.Fields{
				"url":   url,
				"error": err.Error(),
			}).Warn("Failed to cache feed items")
		}
	}

	f.logger.WithFields(logrus.Fields{
		"url":         url,
		"items_count": len(items),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Feed fetched successfully")

	return items
}
