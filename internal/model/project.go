package model

import "time"

// Project methodologies, statuses and the priority scale shared with tasks.
const (
	MethodologyKanban    = "kanban"
	MethodologyScrum     = "scrum"
	MethodologyAgile     = "agile"
	MethodologyWaterfall = "waterfall"
	MethodologyCustom    = "custom"

	ProjectPlanning  = "planning"
	ProjectActive    = "active"
	ProjectOnHold    = "on_hold"
	ProjectCompleted = "completed"
	ProjectCancelled = "cancelled"

	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Project represents a row in the `projects` table.  Owner is filled when
// the query joins users.
type Project struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Methodology string       `json:"methodology"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	StartDate   *time.Time   `json:"startDate"`
	EndDate     *time.Time   `json:"endDate"`
	OwnerID     string       `json:"ownerId"`
	CompanyID   *string      `json:"companyId"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Owner       *UserSummary `json:"owner,omitempty"`
}
