package amqp

import (
	"encoding/json"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/jobs"
)

// AdviceRequestMessage asks a worker for advice on a summary.
type AdviceRequestMessage struct {
	JobID     string    `json:"job_id"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// AdviceResultMessage carries a finished job back to the publisher.
type AdviceResultMessage struct {
	JobID       string         `json:"job_id"`
	Status      jobs.JobStatus `json:"status"`
	Result      string         `json:"result"`
	Failed      bool           `json:"failed"`
	Error       string         `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
}

// NewAdviceRequestMessage copies the fields a worker needs from job.
func NewAdviceRequestMessage(job *jobs.AdviceJob) *AdviceRequestMessage {
	return &AdviceRequestMessage{
		JobID:     job.JobID,
		Summary:   job.Summary,
		CreatedAt: job.CreatedAt,
	}
}

// Job converts the request into a pending job.
func (m *AdviceRequestMessage) Job() *jobs.AdviceJob {
	return &jobs.AdviceJob{
		JobID:     m.JobID,
		Summary:   m.Summary,
		Status:    jobs.JobStatusPending,
		CreatedAt: m.CreatedAt,
	}
}

// NewAdviceResultMessage captures the outcome of a processed job.
func NewAdviceResultMessage(job *jobs.AdviceJob) *AdviceResultMessage {
	msg := &AdviceResultMessage{
		JobID:  job.JobID,
		Status: job.Status,
		Result: job.Result,
		Failed: job.Failed,
		Error:  job.Error,
	}
	if job.StartedAt != nil {
		msg.StartedAt = *job.StartedAt
	}
	if job.CompletedAt != nil {
		msg.CompletedAt = *job.CompletedAt
	}
	return msg
}

// Apply copies the result onto job.
func (m *AdviceResultMessage) Apply(job *jobs.AdviceJob) {
	job.Status = m.Status
	job.Result = m.Result
	job.Failed = m.Failed
	job.Error = m.Error
	if !m.StartedAt.IsZero() {
		started := m.StartedAt
		job.StartedAt = &started
	}
	if !m.CompletedAt.IsZero() {
		completed := m.CompletedAt
		job.CompletedAt = &completed
	}
}

// ToJSON converts the message to JSON bytes
func (m *AdviceRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ToJSON converts the message to JSON bytes
func (m *AdviceResultMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AdviceRequestMessageFromJSON creates a request from JSON bytes
func AdviceRequestMessageFromJSON(data []byte) (*AdviceRequestMessage, error) {
	var msg AdviceRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AdviceResultMessageFromJSON creates a result from JSON bytes
func AdviceResultMessageFromJSON(data []byte) (*AdviceResultMessage, error) {
	var msg AdviceResultMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
