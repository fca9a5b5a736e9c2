// Package jobs runs long operations, such as preset index builds, in the
// background and tracks their status.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gcbaptista/searchlab/internal/errors"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/internal/metrics"
	"github.com/gcbaptista/searchlab/model"
)

// Func is the body of a job. It should return promptly once ctx is cancelled.
type Func func(ctx context.Context, job *model.Job) error

// Manager handles background job execution and tracking
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*model.Job
	cancels  map[string]context.CancelFunc
	done     map[string]chan struct{}
	workers  chan struct{} // Limits concurrent jobs
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics records job outcomes on mtr.
func WithMetrics(mtr *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mtr }
}

// NewManager creates a new job manager with specified worker count
func NewManager(maxWorkers int, opts ...Option) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	m := &Manager{
		jobs:     make(map[string]*model.Job),
		cancels:  make(map[string]context.CancelFunc),
		done:     make(map[string]chan struct{}),
		workers:  make(chan struct{}, maxWorkers),
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.WithComponent("jobs")
	}
	return m
}

// Start begins the background cleanup of finished jobs.
func (m *Manager) Start() {
	m.logger.Info("job manager started", "max_workers", cap(m.workers))
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to return.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
		m.mu.Lock()
		for _, cancel := range m.cancels {
			cancel()
		}
		m.mu.Unlock()
		m.wg.Wait()
		m.logger.Info("job manager stopped")
	})
}

// CreateJob creates a new pending job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, preset string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		Preset:    preset,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.done[job.ID] = make(chan struct{})
	m.logger.Debug("job created", "job_id", job.ID, "type", job.Type, "preset", preset)
	return job.ID
}

// GetJob returns a copy of the job with the given ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns the jobs of a preset, oldest first, optionally filtered by status.
// An empty preset lists the jobs of every preset.
func (m *Manager) ListJobs(preset string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*model.Job
	for _, job := range m.jobs {
		if preset != "" && job.Preset != preset {
			continue
		}
		if status != nil && job.Status != *status {
			continue
		}
		result = append(result, copyJob(job))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// ExecuteJob runs fn for a pending job in a goroutine.
// The job waits for a free worker slot before it starts running.
func (m *Manager) ExecuteJob(jobID string, fn Func) error {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	select {
	case <-m.stopChan:
		m.mu.Unlock()
		m.finish(jobID, model.JobStatusCancelled, "job manager shutting down", 0)
		return fmt.Errorf("job manager is shutting down")
	default:
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[jobID] = cancel
	jobCopy := copyJob(job)
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()

		select {
		case m.workers <- struct{}{}:
		case <-ctx.Done():
			m.finish(jobID, model.JobStatusCancelled, "cancelled before start", 0)
			return
		}
		defer func() { <-m.workers }()

		m.markRunning(jobID)
		m.metrics.JobStarted()
		startTime := time.Now()

		err := fn(ctx, jobCopy)

		took := time.Since(startTime)
		switch {
		case err != nil && ctx.Err() != nil:
			m.finish(jobID, model.JobStatusCancelled, err.Error(), took)
		case err != nil:
			m.finish(jobID, model.JobStatusFailed, err.Error(), took)
		default:
			m.finish(jobID, model.JobStatusCompleted, "", took)
		}
	}()

	return nil
}

// CancelJob requests cancellation of a pending or running job.
func (m *Manager) CancelJob(jobID string) error {
	m.mu.RLock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.RUnlock()
		return errors.NewJobNotFoundError(jobID)
	}
	cancel, scheduled := m.cancels[jobID]
	status := job.Status
	m.mu.RUnlock()

	if status.IsTerminal() {
		return fmt.Errorf("job with ID '%s' already finished (status: %s)", jobID, status)
	}
	if !scheduled {
		m.finish(jobID, model.JobStatusCancelled, "cancelled before start", 0)
		return nil
	}
	cancel()
	return nil
}

// Wait blocks until the job finishes or ctx is done, and returns the job.
func (m *Manager) Wait(ctx context.Context, jobID string) (*model.Job, error) {
	m.mu.RLock()
	done, exists := m.done[jobID]
	m.mu.RUnlock()
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	select {
	case <-done:
		return m.GetJob(jobID)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

func (m *Manager) markRunning(jobID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job, exists := m.jobs[jobID]; exists {
		job.Status = model.JobStatusRunning
		now := time.Now()
		job.StartedAt = &now
	}
}

// finish moves a job to a terminal status once.
func (m *Manager) finish(jobID string, status model.JobStatus, errorMsg string, took time.Duration) {
	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists || job.Status.IsTerminal() {
		m.mu.Unlock()
		return
	}
	wasRunning := job.Status == model.JobStatusRunning
	job.Status = status
	job.Error = errorMsg
	now := time.Now()
	job.CompletedAt = &now
	delete(m.cancels, jobID)
	close(m.done[jobID])
	jobType := job.Type
	m.mu.Unlock()

	if wasRunning {
		m.metrics.JobFinished(string(jobType), string(status), took)
	}
	if status == model.JobStatusFailed {
		m.logger.Error("job failed", "job_id", jobID, "type", jobType, "took", took, "error", errorMsg)
		return
	}
	m.logger.Info("job finished", "job_id", jobID, "type", jobType, "status", status, "took", took)
}

// cleanupRoutine runs periodic job cleanup
func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(24 * time.Hour)
		case <-m.stopChan:
			return
		}
	}
}

// CleanupOldJobs removes finished jobs older than maxAge
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			delete(m.done, jobID)
			cleaned++
		}
	}
	if cleaned > 0 {
		m.logger.Info("cleaned up old jobs", "count", cleaned)
	}
	return cleaned
}

// ActiveJobs returns the number of pending or running jobs.
func (m *Manager) ActiveJobs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := 0
	for _, job := range m.jobs {
		if !job.Status.IsTerminal() {
			active++
		}
	}
	return active
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	return &jobCopy
}
