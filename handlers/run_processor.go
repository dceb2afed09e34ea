package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rzafh/portfolio-backend/monitoring"
	"github.com/rzafh/portfolio-backend/types"
	"github.com/rzafh/portfolio-backend/utils"
)

// RunnerOptions configures the background run processor
type RunnerOptions struct {
	Workers         int
	QueueSize       int
	Backpressure    bool
	RejectThreshold float64
	WaitTimeout     time.Duration
}

// runFunc executes one job-check run
type runFunc func(ctx context.Context, window time.Duration) (*types.CheckJobsResponse, error)

type runJob struct {
	id            string
	window        time.Duration
	windowMinutes int
}

// RunProcessor executes job-check runs in the background with a bounded
// queue. Run statuses are kept in memory and expire after completion.
type RunProcessor struct {
	opts   RunnerOptions
	runFn  runFunc
	logger *logrus.Logger

	jobs     chan runJob
	statuses map[string]*types.RunStatus
	mu       sync.RWMutex

	wg       sync.WaitGroup
	quit     chan struct{}
	stopOnce sync.Once
}

// runTimeout bounds a single background run. Feed fetches and the send delay
// schedule both fit comfortably inside it.
const runTimeout = 5 * time.Minute

// statusRetention is how long a finished run stays queryable
const statusRetention = 1 * time.Hour

// NewRunProcessor creates and starts a run processor
func NewRunProcessor(opts RunnerOptions, runFn runFunc, logger *logrus.Logger) *RunProcessor {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 10
	}
	if opts.RejectThreshold <= 0 || opts.RejectThreshold > 1 {
		opts.RejectThreshold = 0.8
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 5 * time.Second
	}

	p := &RunProcessor{
		opts:     opts,
		runFn:    runFn,
		logger:   logger,
		jobs:     make(chan runJob, opts.QueueSize),
		statuses: make(map[string]*types.RunStatus),
		quit:     make(chan struct{}),
	}

	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.wg.Add(1)
	go p.cleanupLoop()

	return p
}

// Submit queues a background run and returns its initial status. Under
// backpressure the call waits briefly for queue space before rejecting.
func (p *RunProcessor) Submit(window time.Duration, windowMinutes int) (*types.RunStatus, error) {
	job := runJob{
		id:            utils.GenerateRequestID(),
		window:        window,
		windowMinutes: windowMinutes,
	}

	status := &types.RunStatus{
		RunID:         job.id,
		Status:        "pending",
		WindowMinutes: windowMinutes,
		CreatedAt:     time.Now(),
	}

	initial := *status

	// The status must be visible before a worker can pick up the job
	p.mu.Lock()
	p.statuses[job.id] = status
	p.mu.Unlock()

	enqueued := false
	if p.opts.Backpressure && p.queueFillRatio() >= p.opts.RejectThreshold {
		select {
		case p.jobs <- job:
			enqueued = true
		case <-time.After(p.opts.WaitTimeout):
			monitoring.NoteQueueFull()
		case <-p.quit:
		}
	} else {
		select {
		case p.jobs <- job:
			enqueued = true
		default:
			monitoring.NoteQueueFull()
		}
	}

	if !enqueued {
		p.mu.Lock()
		delete(p.statuses, job.id)
		p.mu.Unlock()
		return nil, fmt.Errorf("run queue is full, try again later")
	}

	monitoring.UpdateRunQueueSize(len(p.jobs))
	p.logger.WithFields(logrus.Fields{
		"run_id": job.id,
		"window": window.String(),
	}).Info("Background run queued")

	return &initial, nil
}

// Status returns a snapshot of a run's status
func (p *RunProcessor) Status(runID string) (*types.RunStatus, bool) {
	status := p.statusCopy(runID)
	return status, status != nil
}

func (p *RunProcessor) statusCopy(runID string) *types.RunStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status, ok := p.statuses[runID]
	if !ok {
		return nil
	}
	copied := *status
	return &copied
}

func (p *RunProcessor) queueFillRatio() float64 {
	return float64(len(p.jobs)) / float64(cap(p.jobs))
}

func (p *RunProcessor) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobs:
			monitoring.UpdateRunQueueSize(len(p.jobs))
			monitoring.UpdateActiveWorkers(1)
			p.process(job)
			monitoring.UpdateActiveWorkers(0)
		case <-p.quit:
			return
		}
	}
}

func (p *RunProcessor) process(job runJob) {
	started := time.Now()

	p.mu.Lock()
	if status, ok := p.statuses[job.id]; ok {
		status.Status = "processing"
		status.StartedAt = &started
	}
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	result, err := p.runFn(ctx, job.window)
	completed := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[job.id]
	if !ok {
		return
	}
	status.CompletedAt = &completed
	status.DurationMs = completed.Sub(started).Milliseconds()

	if err != nil {
		status.Status = "failed"
		status.Error = err.Error()
		p.logger.WithFields(logrus.Fields{
			"run_id": job.id,
			"error":  err.Error(),
		}).Error("Background run failed")
		return
	}

	status.Status = "completed"
	status.TotalJobs = result.TotalJobs
	status.RecentJobs = result.RecentJobs
	status.SentJobs = result.SentJobs
	status.FailedJobs = result.FailedJobs
	p.logger.WithFields(logrus.Fields{
		"run_id":      job.id,
		"sent_jobs":   result.SentJobs,
		"failed_jobs": result.FailedJobs,
	}).Info("Background run completed")
}

// cleanupLoop drops finished run statuses after the retention window
func (p *RunProcessor) cleanupLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.cleanup(time.Now())
		case <-p.quit:
			return
		}
	}
}

func (p *RunProcessor) cleanup(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, status := range p.statuses {
		if status.CompletedAt != nil && now.Sub(*status.CompletedAt) > statusRetention {
			delete(p.statuses, id)
		}
	}
}

// Stop shuts down the workers. Queued runs that have not started are dropped.
func (p *RunProcessor) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
