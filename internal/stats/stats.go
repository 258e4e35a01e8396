// Package stats derives task statistics.  Every function is pure: the
// reference time is a parameter and nothing reads the wall clock.
package stats

import (
	"math"
	"time"

	"github.com/iliyamo/projecthub/internal/model"
)

const (
	dueSoonWindow = 72 * time.Hour
	weekWindow    = 7 * 24 * time.Hour
)

// TaskRecord is the subset of a task the aggregator reads.
type TaskRecord struct {
	Status    string
	Priority  string
	DueDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FromTask projects a stored task onto a TaskRecord.
func FromTask(t model.Task) TaskRecord {
	return TaskRecord{
		Status:    t.Status,
		Priority:  t.Priority,
		DueDate:   t.DueDate,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// FromTasks projects a slice of tasks.
func FromTasks(ts []model.Task) []TaskRecord {
	out := make([]TaskRecord, len(ts))
	for i, t := range ts {
		out[i] = FromTask(t)
	}
	return out
}

// Overview counts tasks by status.
type Overview struct {
	TotalTasks           int `json:"totalTasks"`
	CompletedTasks       int `json:"completedTasks"`
	InProgressTasks      int `json:"inProgressTasks"`
	TodoTasks            int `json:"todoTasks"`
	CompletionPercentage int `json:"completionPercentage"`
}

// Priority counts tasks by priority level.
type Priority struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Deadlines buckets tasks by due date relative to the reference time.
// DueSoon covers the next 72 hours.
type Deadlines struct {
	Overdue   int `json:"overdue"`
	DueSoon   int `json:"dueSoon"`
	NoDueDate int `json:"noDueDate"`
}

// RecentActivity counts tasks created or completed within the last seven
// days.
type RecentActivity struct {
	TasksCreatedThisWeek   int `json:"tasksCreatedThisWeek"`
	TasksCompletedThisWeek int `json:"tasksCompletedThisWeek"`
}

// Snapshot is the full statistics view served by the project dashboard.
type Snapshot struct {
	Overview       Overview       `json:"overview"`
	Priority       Priority       `json:"priority"`
	Deadlines      Deadlines      `json:"deadlines"`
	RecentActivity RecentActivity `json:"recentActivity"`
}

// Compute aggregates tasks relative to now in a single pass.
func Compute(tasks []TaskRecord, now time.Time) Snapshot {
	var s Snapshot
	soon := now.Add(dueSoonWindow)
	weekAgo := now.Add(-weekWindow)

	for _, t := range tasks {
		s.Overview.TotalTasks++
		switch t.Status {
		case model.TaskDone:
			s.Overview.CompletedTasks++
			if t.UpdatedAt.After(weekAgo) {
				s.RecentActivity.TasksCompletedThisWeek++
			}
		case model.TaskInProgress:
			s.Overview.InProgressTasks++
		case model.TaskTodo:
			s.Overview.TodoTasks++
		}

		switch t.Priority {
		case model.PriorityCritical:
			s.Priority.Critical++
		case model.PriorityHigh:
			s.Priority.High++
		case model.PriorityMedium:
			s.Priority.Medium++
		case model.PriorityLow:
			s.Priority.Low++
		}

		switch {
		case t.DueDate == nil:
			s.Deadlines.NoDueDate++
		case t.DueDate.Before(now):
			s.Deadlines.Overdue++
		case !t.DueDate.After(soon):
			s.Deadlines.DueSoon++
		}

		if t.CreatedAt.After(weekAgo) {
			s.RecentActivity.TasksCreatedThisWeek++
		}
	}

	s.Overview.CompletionPercentage = Percentage(s.Overview.CompletedTasks, s.Overview.TotalTasks)
	return s
}

// Percentage returns round(100*part/total), or 0 when total is 0.
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// Summary is the flat view attached to project list and detail responses.
type Summary struct {
	TotalTasks           int `json:"totalTasks"`
	CompletedTasks       int `json:"completedTasks"`
	InProgressTasks      int `json:"inProgressTasks"`
	TodoTasks            int `json:"todoTasks"`
	CriticalTasks        int `json:"criticalTasks"`
	HighPriorityTasks    int `json:"highPriorityTasks"`
	OverdueTasks         int `json:"overdueTasks"`
	CompletionPercentage int `json:"completionPercentage"`
}

// Summary flattens s.
func (s Snapshot) Summary() Summary {
	return Summary{
		TotalTasks:           s.Overview.TotalTasks,
		CompletedTasks:       s.Overview.CompletedTasks,
		InProgressTasks:      s.Overview.InProgressTasks,
		TodoTasks:            s.Overview.TodoTasks,
		CriticalTasks:        s.Priority.Critical,
		HighPriorityTasks:    s.Priority.High,
		OverdueTasks:         s.Deadlines.Overdue,
		CompletionPercentage: s.Overview.CompletionPercentage,
	}
}
