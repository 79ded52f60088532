package jobqueue

import (
	"context"
	"fmt"
)

// processNotifyOwnerJob reconciles one owner's reaction-notification ticket
// against the current unseen count.
func (q *Queue) processNotifyOwnerJob(ctx context.Context, job *Job) error {
	payload, err := NotifyOwnerJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid notify_owner payload: %w", err)
	}
	return q.aggregator.Refresh(ctx, payload.OwnerID)
}

// processViewRefreshJob re-renders every registered view of one artwork so
// all open renderings show the same counters and controls.
func (q *Queue) processViewRefreshJob(ctx context.Context, job *Job) error {
	payload, err := ViewRefreshJobPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid view_refresh payload: %w", err)
	}
	return q.broadcaster.Broadcast(ctx, payload.ArtworkID, q.render)
}
