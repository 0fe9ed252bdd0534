package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dvloznov/ledger-dashboard/internal/api/middleware"
	"github.com/dvloznov/ledger-dashboard/internal/jobs"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// AdviceHandler enqueues advice requests for the current records.
type AdviceHandler struct {
	ledger    Ledger
	publisher jobs.Publisher
	store     jobs.JobStore
	now       func() time.Time
	log       zerolog.Logger
}

// NewAdviceHandler creates a new advice handler.
func NewAdviceHandler(ledger Ledger, publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *AdviceHandler {
	return &AdviceHandler{
		ledger:    ledger,
		publisher: publisher,
		store:     store,
		now:       time.Now,
		log:       log,
	}
}

// RequestAdvice handles POST /api/advice
// The summary is built from the records at request time.
func (h *AdviceHandler) RequestAdvice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	job := &jobs.AdviceJob{
		JobID:     uuid.New().String(),
		Summary:   h.ledger.Summary(),
		Status:    jobs.JobStatusPending,
		CreatedAt: h.now(),
	}

	// The job must be stored before a worker can pick it up.
	if err := h.store.SaveJob(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to save advice job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue advice job")
		return
	}

	if err := h.publisher.PublishAdvice(ctx, job); err != nil {
		h.log.Error().Err(err).Str("job_id", job.JobID).Msg("Failed to enqueue advice job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue advice job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Msg("Advice job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetAdvice handles GET /api/advice/{id}
func (h *AdviceHandler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	job, err := h.store.GetJob(r.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// JobsHandler handles job listing.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
