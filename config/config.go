/*
Package config provides configuration management for the portfolio backend.

All credentials and endpoints (bot token, chat ID, feed URLs, email provider
key) come from the environment; nothing is hardcoded. The package also wires
service dependencies through the DI container.
*/
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rzafh/portfolio-backend/analyzer"
	"github.com/rzafh/portfolio-backend/cache"
	"github.com/rzafh/portfolio-backend/container"
	"github.com/rzafh/portfolio-backend/feeds"
	"github.com/rzafh/portfolio-backend/handlers"
	"github.com/rzafh/portfolio-backend/mailer"
	"github.com/rzafh/portfolio-backend/middleware"
	"github.com/rzafh/portfolio-backend/notify"
)

// Config holds all application configuration
type Config struct {
	ServerPort string
	LogLevel   string

	// Job feed pipeline
	FeedURLs         []string
	RecencyWindow    time.Duration
	RecencySafetyPad time.Duration
	FeedCacheTTL     time.Duration

	// Telegram notification target
	TelegramBotToken   string
	TelegramChatID     string
	TelegramAPIBaseURL string

	// Contact relay
	ResendAPIKey     string
	ContactFrom      string
	ContactRecipient string

	// Analyzer tuning
	AnalyzerKeywordLimit int

	// Rate limiting configuration
	RateLimitRequestsPerMinute float64
	RateLimitBurst             int
	ClientCleanupInterval      time.Duration

	// CORS configuration
	CORSConfig CORSConfig

	// Background run processor settings
	RunnerConfig RunnerConfig
}

// RunnerConfig holds background run processor configuration
type RunnerConfig struct {
	Workers         int           `json:"workers"`
	QueueSize       int           `json:"queue_size"`
	Backpressure    bool          `json:"backpressure"`
	RejectThreshold float64       `json:"reject_threshold"`
	WaitTimeout     time.Duration `json:"wait_timeout"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	Environment        string
	DevelopmentOrigins []string
	ProductionOrigins  []string
	AllowedMethods     []string
	AllowedHeaders     []string
	AllowCredentials   bool
	MaxAge             int
}

// Services holds all service dependencies
type Services struct {
	Container *container.Container
	Logger    *logrus.Logger
}

// AppConfig holds both configuration and services
type AppConfig struct {
	Config   *Config
	Services *Services
}

// NewConfig creates a new configuration instance from the environment
func NewConfig() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		FeedURLs:         getEnvSlice("FEED_URLS", []string{}),
		RecencyWindow:    getEnvDuration("RECENCY_WINDOW", 24*time.Hour),
		RecencySafetyPad: getEnvDuration("RECENCY_SAFETY_PAD", 1*time.Hour),
		FeedCacheTTL:     getEnvDuration("FEED_CACHE_TTL", 5*time.Minute),

		TelegramBotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:     getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramAPIBaseURL: getEnv("TELEGRAM_API_BASE_URL", notify.DefaultAPIBaseURL),

		ResendAPIKey:     getEnv("RESEND_API_KEY", ""),
		ContactFrom:      getEnv("CONTACT_FROM", "Portfolio Contact <onboarding@resend.dev>"),
		ContactRecipient: getEnv("CONTACT_RECIPIENT", ""),

		AnalyzerKeywordLimit: getEnvInt("ANALYZER_KEYWORD_LIMIT", 10),

		// Rate limiting defaults (10 requests per minute, burst of 5)
		RateLimitRequestsPerMinute: getEnvFloat("RATE_LIMIT_RPM", 10.0),
		RateLimitBurst:             getEnvInt("RATE_LIMIT_BURST", 5),
		ClientCleanupInterval:      getEnvDuration("CLIENT_CLEANUP_INTERVAL", 1*time.Minute),

		CORSConfig: CORSConfig{
			Environment: getEnv("ENVIRONMENT", "development"),
			DevelopmentOrigins: getEnvSlice("DEV_CORS_ORIGINS", []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			}),
			ProductionOrigins: getEnvSlice("PROD_CORS_ORIGINS", []string{}),
			AllowedMethods: getEnvSlice("CORS_ALLOWED_METHODS", []string{
				"GET", "POST", "OPTIONS",
			}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{
				"Content-Type", "X-Requested-With", "X-Request-ID", "Accept", "Origin",
			}),
			AllowCredentials: getEnvBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvInt("CORS_MAX_AGE", 86400),
		},

		RunnerConfig: RunnerConfig{
			Workers:         getEnvInt("RUNNER_WORKERS", 1),
			QueueSize:       getEnvInt("RUNNER_QUEUE_SIZE", 10),
			Backpressure:    getEnvBool("RUNNER_BACKPRESSURE", true),
			RejectThreshold: getEnvFloat("RUNNER_REJECT_THRESHOLD", 0.8),
			WaitTimeout:     getEnvDuration("RUNNER_WAIT_TIMEOUT", 5*time.Second),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}
	if c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID environment variable is required")
	}
	if len(c.FeedURLs) == 0 {
		return fmt.Errorf("FEED_URLS environment variable is required")
	}
	for _, feedURL := range c.FeedURLs {
		if err := validateFeedURL(feedURL); err != nil {
			return fmt.Errorf("invalid feed URL %q: %v", feedURL, err)
		}
	}
	if c.ResendAPIKey != "" && c.ContactRecipient == "" {
		return fmt.Errorf("CONTACT_RECIPIENT is required when RESEND_API_KEY is set")
	}
	return nil
}

// validateFeedURL checks that a configured feed URL is a usable HTTP(S) URL
func validateFeedURL(feedURL string) error {
	if feedURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(feedURL) > 2048 {
		return fmt.Errorf("URL length exceeds maximum allowed size")
	}

	parsed, err := url.Parse(feedURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("only HTTP and HTTPS URLs are allowed")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must have a valid host")
	}
	return nil
}

// NewServices creates and initializes all service dependencies using the DI container
func NewServices(config *Config) (*Services, error) {
	logger := middleware.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
	}

	inMemoryCache := cache.NewInMemoryCache(config.FeedCacheTTL)
	cacheManager := cache.NewCacheManager(inMemoryCache, logger, config.FeedCacheTTL)
	logger.Info("Cache manager initialized successfully")

	fetcher := feeds.NewFetcher(config.FeedURLs, cacheManager, logger)
	logger.WithField("feed_count", len(config.FeedURLs)).Info("Feed fetcher initialized successfully")

	notifier := notify.NewTelegramNotifier(config.TelegramAPIBaseURL, config.TelegramBotToken, config.TelegramChatID, logger)

	var contactMailer handlers.Mailer
	if config.ResendAPIKey != "" {
		contactMailer = mailer.NewResendMailer(config.ResendAPIKey, config.ContactFrom, config.ContactRecipient, logger)
		logger.Info("Contact mailer initialized successfully")
	} else {
		logger.Warn("RESEND_API_KEY not set, contact relay disabled")
	}

	opts := handlers.Options{
		RecencyWindow:  config.RecencyWindow,
		SafetyPad:      config.RecencySafetyPad,
		AnalyzerConfig: analyzer.Config{KeywordLimit: config.AnalyzerKeywordLimit},
		Runner: handlers.RunnerOptions{
			Workers:         config.RunnerConfig.Workers,
			QueueSize:       config.RunnerConfig.QueueSize,
			Backpressure:    config.RunnerConfig.Backpressure,
			RejectThreshold: config.RunnerConfig.RejectThreshold,
			WaitTimeout:     config.RunnerConfig.WaitTimeout,
		},
	}

	diContainer := container.NewContainer()
	if err := diContainer.InitializeServices(fetcher, notifier, contactMailer, cacheManager, logger, opts); err != nil {
		return nil, fmt.Errorf("failed to initialize dependency container: %v", err)
	}

	return &Services{
		Container: diContainer,
		Logger:    logger,
	}, nil
}

// NewAppConfig creates a new application configuration with all dependencies
func NewAppConfig() (*AppConfig, error) {
	config := NewConfig()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %v", err)
	}

	services, err := NewServices(config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %v", err)
	}

	return &AppConfig{
		Config:   config,
		Services: services,
	}, nil
}

// Close gracefully closes all service connections
func (s *Services) Close() error {
	if s.Container != nil {
		return s.Container.Close()
	}
	return nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat gets an environment variable as float64 with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvInt gets an environment variable as int with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as time.Duration with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as bool with a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvSlice gets an environment variable as a string slice with a default value
func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
