package queue

import (
	"encoding/json"
	"log"

	"github.com/hibiken/asynq"
)

const TaskTypeDashboardSync = "dashboard:sync"

type DashboardSyncPayload struct {
	UserID int64 `json:"user_id"`
}

// EnqueueDashboardSync schedules a cache warmup pass for the user, typically
// right after a new platform connection.
func EnqueueDashboardSync(asynqClient *asynq.Client, payload DashboardSyncPayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeDashboardSync, taskPayload)

	_, err = asynqClient.Enqueue(task)
	if err != nil {
		return err
	}

	log.Printf("Dashboard sync task scheduled: %+v", payload)
	return nil
}
