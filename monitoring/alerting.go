package monitoring

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// AlertSeverity represents the severity level of an alert
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// AlertType represents the type of alert
type AlertType string

const (
	AlertTypeFeedFailure   AlertType = "feed_failure"
	AlertTypeSendFailure   AlertType = "send_failure"
	AlertTypeQueueFull     AlertType = "queue_full"
	AlertTypeProviderError AlertType = "provider_error"
)

// Alert represents an alert
type Alert struct {
	ID          string            `json:"id"`
	Type        AlertType         `json:"type"`
	Severity    AlertSeverity     `json:"severity"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Timestamp   time.Time         `json:"timestamp"`
	Labels      map[string]string `json:"labels"`
	Resolved    bool              `json:"resolved"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
}

// AlertRule defines a rule for generating alerts
type AlertRule struct {
	Name        string
	Type        AlertType
	Severity    AlertSeverity
	Condition   func() bool
	Title       string
	Description string
	Labels      map[string]string
	Enabled     bool
}

// Notifier is the interface for sending alert notifications
type Notifier interface {
	Send(alert *Alert) error
	Name() string
}

// LogNotifier sends alerts to the structured log
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a new log notifier
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Name() string {
	return "log"
}

func (n *LogNotifier) Send(alert *Alert) error {
	level := logrus.InfoLevel
	switch alert.Severity {
	case SeverityHigh:
		level = logrus.WarnLevel
	case SeverityCritical:
		level = logrus.ErrorLevel
	}

	n.logger.WithFields(logrus.Fields{
		"alert_id":   alert.ID,
		"alert_type": alert.Type,
		"severity":   alert.Severity,
		"labels":     alert.Labels,
	}).Log(level, fmt.Sprintf("ALERT: %s - %s", alert.Title, alert.Description))

	return nil
}

// Failure streak counters feeding the default alert rules. Streaks reset on
// the first success after a failure run.
var (
	feedFailureStreak int64
	sendFailureStreak int64
)

// NoteFeedFetchFailure records one failed feed fetch
func NoteFeedFetchFailure() {
	atomic.AddInt64(&feedFailureStreak, 1)
}

// NoteFeedFetchSuccess resets the feed failure streak
func NoteFeedFetchSuccess() {
	atomic.StoreInt64(&feedFailureStreak, 0)
}

// NoteSendFailure records one failed chat notification
func NoteSendFailure() {
	atomic.AddInt64(&sendFailureStreak, 1)
}

// NoteSendSuccess resets the notification failure streak
func NoteSendSuccess() {
	atomic.StoreInt64(&sendFailureStreak, 0)
}

// FeedFailureStreak returns the current run of consecutive feed fetch failures
func FeedFailureStreak() int64 {
	return atomic.LoadInt64(&feedFailureStreak)
}

var lastQueueFullUnix int64

// NoteQueueFull records that the run queue rejected a submission
func NoteQueueFull() {
	atomic.StoreInt64(&lastQueueFullUnix, time.Now().Unix())
}

// QueueRecentlyFull reports whether the run queue rejected a submission in
// the last five minutes
func QueueRecentlyFull() bool {
	t := atomic.LoadInt64(&lastQueueFullUnix)
	return t != 0 && time.Since(time.Unix(t, 0)) < 5*time.Minute
}

// SendFailureStreak returns the current run of consecutive notification failures
func SendFailureStreak() int64 {
	return atomic.LoadInt64(&sendFailureStreak)
}

// AlertManager manages alerts and notifications
type AlertManager struct {
	alerts    map[string]*Alert
	mutex     sync.RWMutex
	logger    *logrus.Logger
	rules     []AlertRule
	notifiers []Notifier
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewAlertManager creates a new alert manager and starts its evaluation loop
func NewAlertManager(logger *logrus.Logger) *AlertManager {
	ctx, cancel := context.WithCancel(context.Background())

	am := &AlertManager{
		alerts:    make(map[string]*Alert),
		logger:    logger,
		rules:     getDefaultAlertRules(),
		notifiers: []Notifier{NewLogNotifier(logger)},
		ctx:       ctx,
		cancel:    cancel,
	}

	go am.evaluateRules()

	return am
}

// getDefaultAlertRules returns the default alert rules for the portfolio backend
func getDefaultAlertRules() []AlertRule {
	return []AlertRule{
		{
			Name:        "Feed Fetch Failures",
			Type:        AlertTypeFeedFailure,
			Severity:    SeverityHigh,
			Condition:   func() bool { return FeedFailureStreak() >= 3 },
			Title:       "Consecutive RSS feed fetch failures",
			Description: "Three or more feed fetches have failed in a row",
			Labels:      map[string]string{"service": "portfolio-backend"},
			Enabled:     true,
		},
		{
			Name:        "Run Queue Full",
			Type:        AlertTypeQueueFull,
			Severity:    SeverityMedium,
			Condition:   QueueRecentlyFull,
			Title:       "Background run queue rejecting submissions",
			Description: "The run queue was full and rejected a submission within the last five minutes",
			Labels:      map[string]string{"service": "portfolio-backend"},
			Enabled:     true,
		},
		{
			Name:        "Notification Failures",
			Type:        AlertTypeSendFailure,
			Severity:    SeverityHigh,
			Condition:   func() bool { return SendFailureStreak() >= 5 },
			Title:       "Consecutive chat notification failures",
			Description: "Five or more chat notifications have failed in a row",
			Labels:      map[string]string{"service": "portfolio-backend"},
			Enabled:     true,
		},
	}
}

// evaluateRules runs the alert evaluation loop
func (am *AlertManager) evaluateRules() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-am.ctx.Done():
			return
		case <-ticker.C:
			am.evaluateAllRules()
		}
	}
}

// evaluateAllRules evaluates all enabled alert rules
func (am *AlertManager) evaluateAllRules() {
	am.mutex.RLock()
	rules := make([]AlertRule, len(am.rules))
	copy(rules, am.rules)
	am.mutex.RUnlock()

	for _, rule := range rules {
		if rule.Enabled && rule.Condition() {
			am.triggerAlert(rule)
		}
	}
}

// triggerAlert creates and sends an alert unless one of the same type is active
func (am *AlertManager) triggerAlert(rule AlertRule) {
	alertID := fmt.Sprintf("%s-%d", rule.Type, time.Now().Unix())

	alert := &Alert{
		ID:          alertID,
		Type:        rule.Type,
		Severity:    rule.Severity,
		Title:       rule.Title,
		Description: rule.Description,
		Timestamp:   time.Now(),
		Labels:      rule.Labels,
		Resolved:    false,
	}

	am.mutex.Lock()
	for _, existing := range am.alerts {
		if existing.Type == rule.Type && !existing.Resolved {
			am.mutex.Unlock()
			return
		}
	}
	am.alerts[alertID] = alert
	am.mutex.Unlock()

	am.sendNotifications(alert)
}

// sendNotifications sends the alert to all notifiers
func (am *AlertManager) sendNotifications(alert *Alert) {
	for _, notifier := range am.notifiers {
		if err := notifier.Send(alert); err != nil {
			am.logger.WithError(err).WithField("notifier", notifier.Name()).Error("Failed to send alert notification")
		}
	}
}

// TriggerManualAlert manually triggers an alert
func (am *AlertManager) TriggerManualAlert(alertType AlertType, severity AlertSeverity, title, description string, labels map[string]string) {
	alertID := fmt.Sprintf("%s-%d", alertType, time.Now().Unix())

	alert := &Alert{
		ID:          alertID,
		Type:        alertType,
		Severity:    severity,
		Title:       title,
		Description: description,
		Timestamp:   time.Now(),
		Labels:      labels,
		Resolved:    false,
	}

	am.mutex.Lock()
	am.alerts[alertID] = alert
	am.mutex.Unlock()

	am.sendNotifications(alert)
}

// ResolveAlert resolves an alert
func (am *AlertManager) ResolveAlert(alertID string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if alert, exists := am.alerts[alertID]; exists {
		now := time.Now()
		alert.Resolved = true
		alert.ResolvedAt = &now

		am.logger.WithFields(logrus.Fields{
			"alert_id": alertID,
			"type":     alert.Type,
		}).Info("Alert resolved")
	}
}

// GetActiveAlerts returns all active (unresolved) alerts
func (am *AlertManager) GetActiveAlerts() []*Alert {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	var active []*Alert
	for _, alert := range am.alerts {
		if !alert.Resolved {
			active = append(active, alert)
		}
	}

	return active
}

// AddNotifier adds a new notifier
func (am *AlertManager) AddNotifier(notifier Notifier) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	am.notifiers = append(am.notifiers, notifier)
}

// Stop stops the alert manager
func (am *AlertManager) Stop() {
	am.cancel()
}
