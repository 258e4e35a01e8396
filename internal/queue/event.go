// Package queue carries activity events between the API and the activity
// log consumer over RabbitMQ.
package queue

import "time"

// ActivityQueue is the durable queue all activity events are routed to.
const ActivityQueue = "task.activity"

// Activity event types.
const (
	ProjectCreated       = "project.created"
	ProjectUpdated       = "project.updated"
	ProjectDeleted       = "project.deleted"
	TaskCreated          = "task.created"
	TaskUpdated          = "task.updated"
	TaskDeleted          = "task.deleted"
	DailyTaskCompleted   = "daily_task.completed"
	DailyTaskUncompleted = "daily_task.uncompleted"
	DailyTasksReset      = "daily_task.reset"
)

// ActivityEvent describes one change made by a user or by the reset job.
// It carries enough to write an audit line without touching the database.
type ActivityEvent struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id,omitempty"`
	ProjectID  string    `json:"project_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Status     string    `json:"status,omitempty"`
	Count      int64     `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
