package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzafh/portfolio-backend/notify"
)

func validConfig() *Config {
	return &Config{
		FeedURLs:         []string{"https://example.com/jobs.rss"},
		TelegramBotToken: "token",
		TelegramChatID:   "12345",
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.RecencyWindow)
	assert.Equal(t, 1*time.Hour, cfg.RecencySafetyPad)
	assert.Equal(t, 10, cfg.AnalyzerKeywordLimit)
	assert.Equal(t, notify.DefaultAPIBaseURL, cfg.TelegramAPIBaseURL)
	assert.Equal(t, 10.0, cfg.RateLimitRequestsPerMinute)
	assert.Equal(t, 5, cfg.RateLimitBurst)
	assert.Equal(t, 1, cfg.RunnerConfig.Workers)
	assert.Equal(t, 10, cfg.RunnerConfig.QueueSize)
	assert.True(t, cfg.RunnerConfig.Backpressure)
}

func TestNewConfigFromEnvironment(t *testing.T) {
	t.Setenv("FEED_URLS", "https://a.example.com/f.rss, https://b.example.com/f.rss")
	t.Setenv("RECENCY_WINDOW", "48h")
	t.Setenv("ANALYZER_KEYWORD_LIMIT", "24")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")
	t.Setenv("RATE_LIMIT_RPM", "30.5")
	t.Setenv("RUNNER_BACKPRESSURE", "false")

	cfg := NewConfig()

	assert.Equal(t, []string{
		"https://a.example.com/f.rss",
		"https://b.example.com/f.rss",
	}, cfg.FeedURLs)
	assert.Equal(t, 48*time.Hour, cfg.RecencyWindow)
	assert.Equal(t, 24, cfg.AnalyzerKeywordLimit)
	assert.Equal(t, "token", cfg.TelegramBotToken)
	assert.Equal(t, 30.5, cfg.RateLimitRequestsPerMinute)
	assert.False(t, cfg.RunnerConfig.Backpressure)
}

func TestNewConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("RECENCY_WINDOW", "not-a-duration")
	t.Setenv("ANALYZER_KEYWORD_LIMIT", "lots")

	cfg := NewConfig()

	assert.Equal(t, 24*time.Hour, cfg.RecencyWindow)
	assert.Equal(t, 10, cfg.AnalyzerKeywordLimit)
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing bot token",
			mutate:  func(c *Config) { c.TelegramBotToken = "" },
			wantErr: "TELEGRAM_BOT_TOKEN",
		},
		{
			name:    "missing chat id",
			mutate:  func(c *Config) { c.TelegramChatID = "" },
			wantErr: "TELEGRAM_CHAT_ID",
		},
		{
			name:    "no feed URLs",
			mutate:  func(c *Config) { c.FeedURLs = nil },
			wantErr: "FEED_URLS",
		},
		{
			name:    "non-http feed URL",
			mutate:  func(c *Config) { c.FeedURLs = []string{"ftp://example.com/feed"} },
			wantErr: "only HTTP and HTTPS",
		},
		{
			name:    "empty feed URL",
			mutate:  func(c *Config) { c.FeedURLs = []string{""} },
			wantErr: "cannot be empty",
		},
		{
			name: "resend key without recipient",
			mutate: func(c *Config) {
				c.ResendAPIKey = "re_key"
				c.ContactRecipient = ""
			},
			wantErr: "CONTACT_RECIPIENT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateFeedURL(t *testing.T) {
	assert.NoError(t, validateFeedURL("https://example.com/jobs.rss"))
	assert.NoError(t, validateFeedURL("http://example.com/jobs.rss"))
	assert.Error(t, validateFeedURL("javascript:alert(1)"))
	assert.Error(t, validateFeedURL("https://"))
}
