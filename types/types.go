// Package types contains shared types used across the portfolio backend
package types

import (
	"time"
)

// CheckJobsResponse is the summary returned by a completed job-check run
type CheckJobsResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	TotalJobs  int    `json:"totalJobs"`
	RecentJobs int    `json:"recentJobs"`
	SentJobs   int    `json:"sentJobs"`
	FailedJobs int    `json:"failedJobs"`
}

// CheckJobsError is the top-level failure response for a job-check run
type CheckJobsError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ContactRequest is the inbound contact-form payload
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactResponse is returned after the contact relay accepted a message
type ContactResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// RunStatus represents the status of a background job-check run
type RunStatus struct {
	RunID         string     `json:"run_id"`
	Status        string     `json:"status"` // pending, processing, completed, failed
	WindowMinutes int        `json:"window_minutes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Error         string     `json:"error,omitempty"`
	TotalJobs     int        `json:"total_jobs,omitempty"`
	RecentJobs    int        `json:"recent_jobs,omitempty"`
	SentJobs      int        `json:"sent_jobs,omitempty"`
	FailedJobs    int        `json:"failed_jobs,omitempty"`
	DurationMs    int64      `json:"duration_ms,omitempty"`
}
