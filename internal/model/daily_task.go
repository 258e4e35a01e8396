package model

import "time"

// DailyTask is a recurring habit item.  IsCompleted is cleared by the
// nightly reset, which first records the day in DailyTaskHistory.
type DailyTask struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"isCompleted"`
	CompletedAt *time.Time `json:"completedAt"`
	Streak      int        `json:"streak"`
	UserID      string     `json:"userId"`
	ProjectID   *string    `json:"projectId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// DailyTaskHistory is one closed day of a daily task.  Date is a calendar
// day in UTC.
type DailyTaskHistory struct {
	ID           string     `json:"id"`
	DailyTaskID  string     `json:"dailyTaskId"`
	Date         time.Time  `json:"date"`
	WasCompleted bool       `json:"wasCompleted"`
	CompletedAt  *time.Time `json:"completedAt"`
}
