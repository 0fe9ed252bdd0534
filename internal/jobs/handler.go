package jobs

import (
	"context"

	"github.com/dvloznov/ledger-dashboard/internal/advice"
)

// NewAdviceHandler returns a handler that asks advisor for advice on the job summary.
// The advisor never fails, so neither does the handler.
func NewAdviceHandler(advisor advice.Advisor) JobHandler {
	return func(ctx context.Context, job *AdviceJob) error {
		res := advisor.Advise(ctx, job.Summary)
		job.Result = res.Text
		job.Failed = res.Failed
		return nil
	}
}
