package container

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzafh/portfolio-backend/cache"
	"github.com/rzafh/portfolio-backend/feeds"
	"github.com/rzafh/portfolio-backend/handlers"
	"github.com/rzafh/portfolio-backend/notify"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newTestServices(t *testing.T) (handlers.FeedFetcher, handlers.Notifier, *cache.CacheManager, *logrus.Logger) {
	t.Helper()

	logger := testLogger()
	cacheManager := cache.NewCacheManager(cache.NewInMemoryCache(time.Minute), logger, time.Minute)
	fetcher := feeds.NewFetcher([]string{"https://example.com/jobs.rss"}, cacheManager, logger)
	notifier := notify.NewTelegramNotifier("", "token", "chat", logger)

	return fetcher, notifier, cacheManager, logger
}

func TestRegisterAndGet(t *testing.T) {
	c := NewContainer()

	c.Register("thing", "value")

	got, err := c.Get("thing")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	_, err = c.Get("missing")
	assert.Error(t, err)
}

func TestMustGetPanicsOnMissing(t *testing.T) {
	c := NewContainer()

	assert.Panics(t, func() { c.MustGet("missing") })
}

func TestInitializeServices(t *testing.T) {
	fetcher, notifier, cacheManager, logger := newTestServices(t)

	c := NewContainer()
	err := c.InitializeServices(fetcher, notifier, nil, cacheManager, logger, handlers.Options{})
	require.NoError(t, err)
	defer c.Close()

	assert.Same(t, logger, c.GetLogger())
	assert.Same(t, cacheManager, c.GetCacheManager())
	assert.NotNil(t, c.GetFetcher())
	assert.NotNil(t, c.GetNotifier())
	assert.NotNil(t, c.GetHandler())
	assert.Nil(t, c.GetMailer())
}

func TestInitializeServicesRejectsNilDependencies(t *testing.T) {
	fetcher, notifier, cacheManager, logger := newTestServices(t)

	tests := []struct {
		name string
		init func(c *Container) error
	}{
		{
			name: "nil fetcher",
			init: func(c *Container) error {
				return c.InitializeServices(nil, notifier, nil, cacheManager, logger, handlers.Options{})
			},
		},
		{
			name: "nil notifier",
			init: func(c *Container) error {
				return c.InitializeServices(fetcher, nil, nil, cacheManager, logger, handlers.Options{})
			},
		},
		{
			name: "nil logger",
			init: func(c *Container) error {
				return c.InitializeServices(fetcher, notifier, nil, cacheManager, nil, handlers.Options{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.init(NewContainer()))
		})
	}
}
