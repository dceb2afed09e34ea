package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rzafh/portfolio-backend/feeds"
	"github.com/rzafh/portfolio-backend/mailer"
	"github.com/rzafh/portfolio-backend/middleware"
	"github.com/rzafh/portfolio-backend/types"
)

type stubFetcher struct {
	perFeed [][]*feeds.Item
	err     error
	urls    []string
}

func (s *stubFetcher) FetchAll(ctx context.Context) ([][]*feeds.Item, error) {
	return s.perFeed, s.err
}

func (s *stubFetcher) URLs() []string {
	return s.urls
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []string
	failOn func(index int) bool
}

func (n *recordingNotifier) Send(ctx context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	index := len(n.sent)
	n.sent = append(n.sent, text)
	if n.failOn != nil && n.failOn(index) {
		return fmt.Errorf("delivery failed")
	}
	return nil
}

func (n *recordingNotifier) Healthy(ctx context.Context) error {
	return nil
}

func (n *recordingNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type stubMailer struct {
	id   string
	err  error
	got  mailer.ContactMessage
	sent bool
}

func (m *stubMailer) Send(ctx context.Context, msg mailer.ContactMessage) (string, error) {
	m.got = msg
	m.sent = true
	return m.id, m.err
}

func testItem(link string, publishedAt time.Time) *feeds.Item {
	at := publishedAt
	return &feeds.Item{
		Title:       "Acme hiring Analyst at London",
		Link:        link,
		Description: "Financial modeling role, 3 to 5 years experience, CFA preferred.",
		PublishedAt: &at,
	}
}

func setupTestHandler(t *testing.T, fetcher FeedFetcher, notifier Notifier, contactMailer Mailer) (*Handler, *[]time.Duration) {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	middleware.Logger = logger

	handler := NewHandler(fetcher, notifier, contactMailer, logger, Options{})
	t.Cleanup(handler.Stop)

	var delays []time.Duration
	handler.sleep = func(d time.Duration) {
		delays = append(delays, d)
	}
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return now }

	return handler, &delays
}

func TestHandleCheckJobsNoRecentJobs(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{perFeed: [][]*feeds.Item{
		{testItem("https://example.com/job/old", now.Add(-48*time.Hour))},
	}}
	notifier := &recordingNotifier{}
	handler, _ := setupTestHandler(t, fetcher, notifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/check-jobs", nil)
	rec := httptest.NewRecorder()
	handler.HandleCheckJobs(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp types.CheckJobsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.TotalJobs)
	assert.Equal(t, 0, resp.RecentJobs)
	assert.Equal(t, 0, resp.SentJobs)
	assert.Equal(t, 0, resp.FailedJobs)
	assert.Equal(t, "No new jobs found", resp.Message)
	assert.Equal(t, 0, notifier.sentCount())
}

func TestHandleCheckJobsSendsRecentJobs(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{perFeed: [][]*feeds.Item{
		{
			testItem("https://example.com/job/1", now.Add(-1*time.Hour)),
			testItem("https://example.com/job/2", now.Add(-2*time.Hour)),
		},
	}}
	notifier := &recordingNotifier{}
	handler, _ := setupTestHandler(t, fetcher, notifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/check-jobs", nil)
	rec := httptest.NewRecorder()
	handler.HandleCheckJobs(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp types.CheckJobsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.RecentJobs)
	assert.Equal(t, 2, resp.SentJobs)
	assert.Equal(t, 0, resp.FailedJobs)
	assert.Equal(t, 2, notifier.sentCount())
	assert.Contains(t, notifier.sent[0], "Acme")
}

func TestHandleCheckJobsDedupesAcrossFeeds(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	shared := "https://example.com/job/shared"
	fetcher := &stubFetcher{perFeed: [][]*feeds.Item{
		{testItem(shared, now.Add(-1*time.Hour))},
		{testItem(shared, now.Add(-1*time.Hour))},
	}}
	notifier := &recordingNotifier{}
	handler, _ := setupTestHandler(t, fetcher, notifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/check-jobs", nil)
	rec := httptest.NewRecorder()
	handler.HandleCheckJobs(rec, req)

	var resp types.CheckJobsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.TotalJobs)
	assert.Equal(t, 1, resp.SentJobs)
	assert.Equal(t, 1, notifier.sentCount())
}

func TestHandleCheckJobsDelaySchedule(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	items := make([]*feeds.Item, 0, 12)
	for i := 0; i < 12; i++ {
		items = append(items, testItem(fmt.Sprintf("https://example.com/job/%d", i), now.Add(-time.Hour)))
	}
	fetcher := &stubFetcher{perFeed: [][]*feeds.Item{items}}
	notifier := &recordingNotifier{}
	handler, delays := setupTestHandler(t, fetcher, notifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/check-jobs", nil)
	rec := httptest.NewRecorder()
	handler.HandleCheckJobs(rec, req)

	assert.Equal(t, 12, notifier.sentCount())

	// 12 sends produce 11 pauses: five at 2s, five at 2.5s, the rest at 3s
	require.Len(t, *delays, 11)
	for i, d := range *delays {
		switch {
		case i < 5:
			assert.Equal(t, 2000*time.Millisecond, d, "delay %d", i)
		case i < 10:
			assert.Equal(t, 2500*time.Millisecond, d, "delay %d", i)
		default:
			assert.Equal(t, 3000*time.Millisecond, d, "delay %d", i)
		}
	}
}

func TestHandleCheckJobsFailedSendContinues(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{perFeed: [][]*feeds.Item{
		{
			testItem("https://example.com/job/1", now.Add(-1*time.Hour)),
			testItem("https://example.com/job/2", now.Add(-1*time.Hour)),
			testItem("https://example.com/job/3", now.Add(-1*time.Hour)),
		},
	}}
	notifier := &recordingNotifier{failOn: func(index int) bool { return index == 1 }}
	handler, _ := setupTestHandler(t, fetcher, notifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/check-jobs", nil)
	rec := httptest.NewRecorder()
	handler.HandleCheckJobs(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp types.CheckJobsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.SentJobs)
	assert.Equal(t, 1, resp.FailedJobs)
	assert.Equal(t, 3, notifier.sentCount())
}

func TestHandleCheckJobsFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: fmt.Errorf("no feed URLs configured")}
	notifier := &recordingNotifier{}
	handler, _ := setupTestHandler(t, fetcher, notifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/check-jobs", nil)
	rec := httptest.NewRecorder()
	handler.HandleCheckJobs(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp types.CheckJobsError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "no feed URLs configured")
}

func TestHandleCheckJobsWindowOverride(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{perFeed: [][]*feeds.Item{
		{testItem("https://example.com/job/1", now.Add(-90*time.Minute))},
	}}
	notifier := &recordingNotifier{}
	handler, _ := setupTestHandler(t, fetcher, notifier, nil)

	// 30 minute window excludes the 90 minute old item
	req := httptest.NewRequest(http.MethodGet, "/api/check-jobs?window_minutes=30", nil)
	rec := httptest.NewRecorder()
	handler.HandleCheckJobs(rec, req)

	var resp types.CheckJobsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.RecentJobs)

	// 100 minute window includes it
	req = httptest.NewRequest(http.MethodGet, "/api/check-jobs?window_minutes=100", nil)
	rec = httptest.NewRecorder()
	handler.HandleCheckJobs(rec, req)

	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.RecentJobs)
}

func TestHandleCheckJobsInvalidWindow(t *testing.T) {
	fetcher := &stubFetcher{}
	notifier := &recordingNotifier{}
	handler, _ := setupTestHandler(t, fetcher, notifier, nil)

	for _, raw := range []string{"abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/api/check-jobs?window_minutes="+raw, nil)
		rec := httptest.NewRecorder()
		handler.HandleCheckJobs(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "window_minutes=%s", raw)
	}
}

func TestHandleCheckJobsPostAlias(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{perFeed: [][]*feeds.Item{
		{testItem("https://example.com/job/1", now.Add(-time.Hour))},
	}}
	notifier := &recordingNotifier{}
	handler, _ := setupTestHandler(t, fetcher, notifier, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/check-jobs", nil)
	rec := httptest.NewRecorder()
	handler.HandleCheckJobs(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, notifier.sentCount())
}

func TestHandleCheckJobsAsync(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{perFeed: [][]*feeds.Item{
		{testItem("https://example.com/job/1", now.Add(-time.Hour))},
	}}
	notifier := &recordingNotifier{}
	handler, _ := setupTestHandler(t, fetcher, notifier, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/check-jobs?async=true", nil)
	rec := httptest.NewRecorder()
	handler.HandleCheckJobs(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var status types.RunStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	require.NotEmpty(t, status.RunID)
	assert.Equal(t, "pending", status.Status)

	assert.Eventually(t, func() bool {
		current, ok := handler.runner.Status(status.RunID)
		return ok && current.Status == "completed"
	}, 2*time.Second, 10*time.Millisecond)

	final, ok := handler.runner.Status(status.RunID)
	require.True(t, ok)
	assert.Equal(t, 1, final.SentJobs)
	assert.Equal(t, 0, final.FailedJobs)
}

func TestHandleContactSuccess(t *testing.T) {
	m := &stubMailer{id: "msg_123"}
	handler, _ := setupTestHandler(t, &stubFetcher{}, &recordingNotifier{}, m)

	body := `{"name":"Jane","email":"jane@example.com","subject":"Hi","message":"Hello there"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleContact(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp types.ContactResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Email sent successfully", resp.Message)
	assert.Equal(t, "msg_123", resp.ID)

	require.True(t, m.sent)
	assert.Equal(t, "Jane", m.got.Name)
	assert.Equal(t, "jane@example.com", m.got.Email)
}

func TestHandleContactValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@b.co","subject":"s","message":"m"}`},
		{"missing email", `{"name":"n","subject":"s","message":"m"}`},
		{"missing subject", `{"name":"n","email":"a@b.co","message":"m"}`},
		{"missing message", `{"name":"n","email":"a@b.co","subject":"s"}`},
		{"invalid email", `{"name":"n","email":"not-an-email","subject":"s","message":"m"}`},
		{"whitespace only", `{"name":"  ","email":"a@b.co","subject":"s","message":"m"}`},
	}

	m := &stubMailer{id: "msg_123"}
	handler, _ := setupTestHandler(t, &stubFetcher{}, &recordingNotifier{}, m)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.HandleContact(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, m.sent)
		})
	}
}

func TestHandleContactInvalidJSON(t *testing.T) {
	handler, _ := setupTestHandler(t, &stubFetcher{}, &recordingNotifier{}, &stubMailer{})

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.HandleContact(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleContactProviderError(t *testing.T) {
	m := &stubMailer{err: fmt.Errorf("provider unavailable")}
	handler, _ := setupTestHandler(t, &stubFetcher{}, &recordingNotifier{}, m)

	body := `{"name":"Jane","email":"jane@example.com","subject":"Hi","message":"Hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleContact(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleContactNotConfigured(t *testing.T) {
	handler, _ := setupTestHandler(t, &stubFetcher{}, &recordingNotifier{}, nil)

	body := `{"name":"Jane","email":"jane@example.com","subject":"Hi","message":"Hello"}`
	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleContact(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleRunStatus(t *testing.T) {
	handler, _ := setupTestHandler(t, &stubFetcher{perFeed: [][]*feeds.Item{}}, &recordingNotifier{}, nil)

	status, err := handler.runner.Submit(24*time.Hour, 0)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/run-status?id="+status.RunID, nil)
	rec := httptest.NewRecorder()
	handler.HandleRunStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got types.RunStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, status.RunID, got.RunID)
}

func TestHandleRunStatusMissingID(t *testing.T) {
	handler, _ := setupTestHandler(t, &stubFetcher{}, &recordingNotifier{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/run-status", nil)
	rec := httptest.NewRecorder()
	handler.HandleRunStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRunStatusNotFound(t *testing.T) {
	handler, _ := setupTestHandler(t, &stubFetcher{}, &recordingNotifier{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/run-status?id=unknown", nil)
	rec := httptest.NewRecorder()
	handler.HandleRunStatus(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListFeeds(t *testing.T) {
	fetcher := &stubFetcher{urls: []string{"https://example.com/a.rss", "https://example.com/b.rss"}}
	handler, _ := setupTestHandler(t, fetcher, &recordingNotifier{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/feeds", nil)
	rec := httptest.NewRecorder()
	handler.HandleListFeeds(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp FeedListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, fetcher.urls, resp.Feeds)
}
