package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Jobs</title>
    <link>https://example.com</link>
    <description>Job postings</description>
    <item>
      <title><![CDATA[Acme hiring Analyst at London]]></title>
      <link>%s</link>
      <description>Analyst role</description>
      <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func newFeedServer(link string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, feedTemplate, link)
	}))
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func TestFetchAllParsesConfiguredFeeds(t *testing.T) {
	serverA := newFeedServer("https://example.com/job/a")
	defer serverA.Close()
	serverB := newFeedServer("https://example.com/job/b")
	defer serverB.Close()

	fetcher := NewFetcher([]string{serverA.URL, serverB.URL}, nil, testLogger())

	results, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Len(t, results[0], 1)
	assert.Equal(t, "https://example.com/job/a", results[0][0].Link)
	assert.Equal(t, "Acme hiring Analyst at London", results[0][0].Title)
	require.NotNil(t, results[0][0].PublishedAt)

	require.Len(t, results[1], 1)
	assert.Equal(t, "https://example.com/job/b", results[1][0].Link)
}

func TestFetchAllFailingFeedYieldsEmptySlot(t *testing.T) {
	healthy := newFeedServer("https://example.com/job/a")
	defer healthy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	fetcher := NewFetcher([]string{broken.URL, healthy.URL}, nil, testLogger())

	results, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Empty(t, results[0])
	require.Len(t, results[1], 1)
	assert.Equal(t, "https://example.com/job/a", results[1][0].Link)
}

func TestFetchAllNoURLsConfigured(t *testing.T) {
	fetcher := NewFetcher(nil, nil, testLogger())

	results, err := fetcher.FetchAll(context.Background())

	assert.Error(t, err)
	assert.Nil(t, results)
}

type recordingCache struct {
	stored map[string][]*Item
	hits   int
}

func (c *recordingCache) GetFeedItems(url string) ([]*Item, bool) {
	items, ok := c.stored[url]
	if ok {
		c.hits++
	}
	return items, ok
}

func (c *recordingCache) SetFeedItems(url string, items []*Item) error {
	c.stored[url] = items
	return nil
}

func TestFetchOneUsesCache(t *testing.T) {
	server := newFeedServer("https://example.com/job/a")
	defer server.Close()

	cache := &recordingCache{stored: make(map[string][]*Item)}
	fetcher := NewFetcher([]string{server.URL}, cache, testLogger())

	first, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, first[0], 1)
	assert.Equal(t, 0, cache.hits)

	second, err := fetcher.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, second[0], 1)
	assert.Equal(t, 1, cache.hits)
}

func TestURLsReturnsConfiguredList(t *testing.T) {
	urls := []string{"https://example.com/a.rss", "https://example.com/b.rss"}
	fetcher := NewFetcher(urls, nil, testLogger())

	assert.Equal(t, urls, fetcher.URLs())
}
