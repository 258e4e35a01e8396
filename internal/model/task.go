package model

import "time"

// Task statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskDone       = "done"
)

// Task represents a row in the `tasks` table.  Tags are stored as a JSON
// array column.
type Task struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Status         string       `json:"status"`
	Priority       string       `json:"priority"`
	DueDate        *time.Time   `json:"dueDate"`
	EstimatedHours *float64     `json:"estimatedHours"`
	ActualHours    *float64     `json:"actualHours"`
	Tags           []string     `json:"tags"`
	ProjectID      string       `json:"projectId"`
	AssigneeID     *string      `json:"assigneeId"`
	CreatedByID    string       `json:"createdById"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
	Assignee       *UserSummary `json:"assignee,omitempty"`
}
