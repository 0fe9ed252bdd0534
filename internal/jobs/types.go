// Package jobs defines asynchronous advice requests and the queue contracts
// used to hand them to workers.
package jobs

import (
	"context"
	"errors"
	"time"
)

// ErrJobNotFound is returned by JobStore.GetJob for unknown ids.
var ErrJobNotFound = errors.New("job not found")

// ErrQueueClosed is returned when publishing to or starting a stopped queue.
var ErrQueueClosed = errors.New("queue is closed")

// JobType represents the type of job to be executed.
type JobType string

const (
	// JobTypeAdvice represents a financial advice request.
	JobTypeAdvice JobType = "advice"
)

// JobStatus represents the current status of a job.
type JobStatus string

const (
	// JobStatusPending indicates the job is waiting to be processed.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning indicates the job is currently being processed.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted indicates the job produced a result text.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates the handler itself returned an error.
	JobStatusFailed JobStatus = "failed"
)

// AdviceJob asks for advice on a financial summary.
// Advice failures still complete the job: Result then carries the fallback
// text and Failed is true. Jobs are never retried.
type AdviceJob struct {
	// JobID is the unique identifier for this job.
	JobID string `json:"job_id"`

	// Summary is the plain-text financial summary sent to the advisor.
	Summary string `json:"summary"`

	// Status is the current status of the job.
	Status JobStatus `json:"status"`

	// Result is the advice text, or a fallback message.
	Result string `json:"result,omitempty"`

	// Failed reports that Result is a fallback message.
	Failed bool `json:"failed"`

	// CreatedAt is when the job was created.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when the job started processing.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the job completed (success or failure).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error contains error details if the handler failed.
	Error string `json:"error,omitempty"`
}

// GetID returns the unique job identifier.
func (j *AdviceJob) GetID() string {
	return j.JobID
}

// GetType returns the job type.
func (j *AdviceJob) GetType() JobType {
	return JobTypeAdvice
}

// Done reports whether the job reached a final status.
func (j *AdviceJob) Done() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// Publisher defines the interface for publishing jobs to a queue.
// This abstraction allows for different queue implementations (in-memory, RabbitMQ).
type Publisher interface {
	// PublishAdvice publishes an advice job. The caller's job gets its id,
	// status and creation time filled in; the queue works on its own copy.
	PublishAdvice(ctx context.Context, job *AdviceJob) error

	// Close closes the publisher and releases resources.
	Close() error
}

// Consumer defines the interface for consuming jobs from a queue.
type Consumer interface {
	// Start begins consuming jobs from the queue.
	// The handler function is called for each job received.
	Start(ctx context.Context, handler JobHandler) error

	// Stop stops consuming jobs and waits for in-flight jobs to complete.
	Stop(ctx context.Context) error
}

// JobHandler processes a job and fills in its Result.
type JobHandler func(ctx context.Context, job *AdviceJob) error

// JobStore defines the interface for storing and retrieving job status.
type JobStore interface {
	// SaveJob saves or updates a job's state.
	SaveJob(ctx context.Context, job *AdviceJob) error

	// GetJob retrieves a job by ID. Unknown ids yield ErrJobNotFound.
	GetJob(ctx context.Context, jobID string) (*AdviceJob, error)

	// ListJobs retrieves jobs with optional filtering, newest first.
	ListJobs(ctx context.Context, filter JobFilter) ([]*AdviceJob, error)
}

// JobFilter defines filtering criteria for listing jobs.
type JobFilter struct {
	// Status filters jobs by status.
	Status JobStatus

	// Limit limits the number of results.
	Limit int

	// Offset for pagination.
	Offset int
}
