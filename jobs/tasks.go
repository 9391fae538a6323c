package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-populates the dashboard cache.
	TaskDashboardWarmup = "analytics:dashboard_warmup"
)

// DashboardWarmupPayload controls a warmup run. Refresh bumps the cache
// version before loading, Sections narrows the run to the named sections.
type DashboardWarmupPayload struct {
	Refresh  bool     `json:"refresh"`
	Sections []string `json:"sections,omitempty"`
}

// NewDashboardWarmupTask constructs an Asynq task for the warmup job.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}
