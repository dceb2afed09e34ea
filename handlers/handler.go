/*
Package handlers implements the HTTP API: the job-check pipeline, the
contact-form relay, run status lookups, and the configured feed listing.
*/
package handlers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rzafh/portfolio-backend/analyzer"
	"github.com/rzafh/portfolio-backend/feeds"
	"github.com/rzafh/portfolio-backend/mailer"
)

// FeedFetcher fetches all configured feeds
type FeedFetcher interface {
	FetchAll(ctx context.Context) ([][]*feeds.Item, error)
	URLs() []string
}

// Notifier delivers one notification message
type Notifier interface {
	Send(ctx context.Context, text string) error
	Healthy(ctx context.Context) error
}

// Mailer relays one contact message and returns the provider message ID
type Mailer interface {
	Send(ctx context.Context, msg mailer.ContactMessage) (string, error)
}

// Options configures a Handler
type Options struct {
	RecencyWindow  time.Duration
	SafetyPad      time.Duration
	AnalyzerConfig analyzer.Config
	Runner         RunnerOptions
}

// Handler handles HTTP requests for the API
type Handler struct {
	fetcher   FeedFetcher
	notifier  Notifier
	mailer    Mailer
	logger    *logrus.Logger
	analyzer  *analyzer.Analyzer
	window    time.Duration
	safetyPad time.Duration
	runner    *RunProcessor

	// injected for tests
	sleep func(time.Duration)
	now   func() time.Time
}

// NewHandler creates a new Handler instance. The mailer may be nil when the
// contact relay is not configured.
func NewHandler(fetcher FeedFetcher, notifier Notifier, contactMailer Mailer, logger *logrus.Logger, opts Options) *Handler {
	if opts.RecencyWindow <= 0 {
		opts.RecencyWindow = 24 * time.Hour
	}
	if opts.SafetyPad <= 0 {
		opts.SafetyPad = 1 * time.Hour
	}

	h := &Handler{
		fetcher:   fetcher,
		notifier:  notifier,
		mailer:    contactMailer,
		logger:    logger,
		analyzer:  analyzer.New(opts.AnalyzerConfig),
		window:    opts.RecencyWindow,
		safetyPad: opts.SafetyPad,
		sleep:     time.Sleep,
		now:       time.Now,
	}
	h.runner = NewRunProcessor(opts.Runner, h.runCheck, logger)
	return h
}

// Stop shuts down the background run processor
func (h *Handler) Stop() {
	if h.runner != nil {
		h.runner.Stop()
	}
}
