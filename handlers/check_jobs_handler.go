package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rzafh/portfolio-backend/feeds"
	"github.com/rzafh/portfolio-backend/middleware"
	"github.com/rzafh/portfolio-backend/monitoring"
	"github.com/rzafh/portfolio-backend/notify"
	"github.com/rzafh/portfolio-backend/types"
)

// delayFor returns the pause after the nth sent notification. Delays grow as
// a run progresses to stay under the Bot API send limits.
func delayFor(index int) time.Duration {
	switch {
	case index < 5:
		return 2000 * time.Millisecond
	case index < 10:
		return 2500 * time.Millisecond
	default:
		return 3000 * time.Millisecond
	}
}

// runCheck executes one job-check run: fetch all feeds, merge and dedupe,
// filter to the recency window, analyze and notify each recent posting.
// A single failed send never aborts the run.
func (h *Handler) runCheck(ctx context.Context, window time.Duration) (*types.CheckJobsResponse, error) {
	start := h.now()

	ctx, span := monitoring.CreateSpan(ctx, "job_check_run")
	defer span.End()

	perFeed, err := h.fetcher.FetchAll(ctx)
	if err != nil {
		monitoring.RecordJobRun("failed", time.Since(start).Seconds(), 0)
		monitoring.SetSpanError(span, err)
		return nil, err
	}

	merged := feeds.Merge(perFeed)
	recent := feeds.FilterRecent(merged, start, window)

	h.logger.WithFields(logrus.Fields{
		"total_jobs":  len(merged),
		"recent_jobs": len(recent),
		"window":      window.String(),
	}).Info("Feeds fetched and filtered")

	sent := 0
	failed := 0
	for i, item := range recent {
		analysis := h.analyzer.Analyze(item.Description)
		message := notify.FormatMessage(item, analysis, h.now())

		if err := h.notifier.Send(ctx, message); err != nil {
			failed++
			monitoring.RecordNotification("failed")
			monitoring.NoteSendFailure()
			h.logger.WithFields(logrus.Fields{
				"link":  item.Link,
				"error": err.Error(),
			}).Error("Failed to send job notification")
		} else {
			sent++
			monitoring.RecordNotification("success")
			monitoring.NoteSendSuccess()
		}

		if i < len(recent)-1 {
			h.sleep(delayFor(i))
		}
	}

	monitoring.RecordJobRun("success", time.Since(start).Seconds(), len(recent))
	monitoring.SetSpanAttributes(span, map[string]interface{}{
		"total_jobs":  len(merged),
		"recent_jobs": len(recent),
		"sent_jobs":   sent,
		"failed_jobs": failed,
	})

	message := fmt.Sprintf("Sent %d job notification(s)", sent)
	if len(recent) == 0 {
		message = "No new jobs found"
	} else if failed > 0 {
		message = fmt.Sprintf("Sent %d job notification(s), %d failed", sent, failed)
	}

	return &types.CheckJobsResponse{
		Success:    true,
		Message:    message,
		TotalJobs:  len(merged),
		RecentJobs: len(recent),
		SentJobs:   sent,
		FailedJobs: failed,
	}, nil
}

// HandleCheckJobs godoc
// @Summary Check configured job feeds
// @Description Fetches all configured RSS job feeds, filters postings to the recency window, and sends a Telegram notification per recent posting
// @Tags jobs
// @Produce json
// @Param window_minutes query int false "Override the recency window in minutes"
// @Param async query bool false "Queue the run in the background and return a run ID"
// @Success 200 {object} types.CheckJobsResponse
// @Success 202 {object} types.RunStatus
// @Failure 400 {object} middleware.APIError
// @Failure 500 {object} types.CheckJobsError
// @Failure 503 {object} middleware.APIError
// @Router /api/check-jobs [get]
func (h *Handler) HandleCheckJobs(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-ID")

	window := h.window + h.safetyPad
	windowMinutes := 0
	if raw := r.URL.Query().Get("window_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			middleware.RespondBadRequest(w, fmt.Errorf("window_minutes must be a positive integer"), requestID)
			return
		}
		windowMinutes = minutes
		// manual windows get a one-minute pad so boundary items are not lost
		window = time.Duration(minutes)*time.Minute + time.Minute
	}

	if r.URL.Query().Get("async") == "true" {
		status, err := h.runner.Submit(window, windowMinutes)
		if err != nil {
			middleware.RespondServiceUnavailable(w, err, requestID)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(status)
		return
	}

	result, err := h.runCheck(r.Context(), window)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Job check run failed")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(types.CheckJobsError{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}
