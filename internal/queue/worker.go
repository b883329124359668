package queue

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/creatorhub/internal/service"
)

type Queue struct {
	ds service.DashboardService
}

func NewQueue(ds service.DashboardService) *Queue {
	return &Queue{
		ds: ds,
	}
}

// HandleDashboardSyncTask runs a forced aggregation pass for the payload's
// user so the cache is warm before the next dashboard view.
func (j *Queue) HandleDashboardSyncTask(ctx context.Context, task *asynq.Task) error {
	var payload DashboardSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	dashboard := j.ds.Sync(ctx, payload.UserID)
	if len(dashboard.Errors) > 0 {
		log.Printf("Dashboard sync for user %d completed with errors: %v", payload.UserID, dashboard.Errors)
	}

	return nil
}
