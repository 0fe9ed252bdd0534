package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/jobs"
)

func waitForStatus(t *testing.T, store *Store, jobID string, want jobs.JobStatus) *jobs.AdviceJob {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := store.GetJob(context.Background(), jobID)
		if err == nil && job.Status == want {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach status %s", jobID, want)
	return nil
}

func TestQueuePublishAndProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := NewQueue(10, store, WithWorkers(2))
	defer q.Close()

	if err := q.Start(ctx, func(ctx context.Context, job *jobs.AdviceJob) error {
		job.Result = "advice for " + job.Summary
		return nil
	}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.AdviceJob{Summary: "summary"}
	if err := q.PublishAdvice(ctx, job); err != nil {
		t.Fatalf("PublishAdvice failed: %v", err)
	}
	if job.JobID == "" || job.Status != jobs.JobStatusPending || job.CreatedAt.IsZero() {
		t.Errorf("publish should fill id, status and creation time: %+v", job)
	}

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	if done.Result != "advice for summary" {
		t.Errorf("unexpected result %q", done.Result)
	}
	if done.StartedAt == nil || done.CompletedAt == nil {
		t.Error("expected start and completion times")
	}
	if job.Result != "" {
		t.Error("the caller's job must not be modified by the worker")
	}
}

func TestQueueHandlerErrorIsNotRetried(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := NewQueue(10, store)
	defer q.Close()

	var calls int32
	if err := q.Start(ctx, func(ctx context.Context, job *jobs.AdviceJob) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	job := &jobs.AdviceJob{Summary: "s"}
	if err := q.PublishAdvice(ctx, job); err != nil {
		t.Fatalf("PublishAdvice failed: %v", err)
	}

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	if failed.Error != "boom" {
		t.Errorf("unexpected error text %q", failed.Error)
	}

	time.Sleep(50 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("handler called %d times, want 1", n)
	}
}

func TestQueueClosed(t *testing.T) {
	q := NewQueue(1, nil)
	if err := q.Stop(context.Background()); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := q.Stop(context.Background()); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
	if err := q.PublishAdvice(context.Background(), &jobs.AdviceJob{}); !errors.Is(err, jobs.ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
	if err := q.Start(context.Background(), nil); !errors.Is(err, jobs.ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
}

func TestQueuePublishHonorsContext(t *testing.T) {
	q := NewQueue(0, nil)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// No consumer and no buffer: publish blocks until the context ends.
	if err := q.PublishAdvice(ctx, &jobs.AdviceJob{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
