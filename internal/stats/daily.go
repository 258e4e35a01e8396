package stats

import (
	"math"

	"github.com/iliyamo/projecthub/internal/model"
)

// DailyRecord is the subset of a daily task the aggregator reads.
type DailyRecord struct {
	IsCompleted bool
	Streak      int
}

// FromDailyTasks projects stored daily tasks onto DailyRecords.
func FromDailyTasks(ts []model.DailyTask) []DailyRecord {
	out := make([]DailyRecord, len(ts))
	for i, t := range ts {
		out[i] = DailyRecord{IsCompleted: t.IsCompleted, Streak: t.Streak}
	}
	return out
}

// DailySnapshot summarises a user's daily tasks for the current day.
type DailySnapshot struct {
	TotalTasks           int     `json:"totalTasks"`
	CompletedToday       int     `json:"completedToday"`
	CompletionPercentage int     `json:"completionPercentage"`
	LongestStreak        int     `json:"longestStreak"`
	AverageStreak        float64 `json:"averageStreak"`
}

// ComputeDaily aggregates daily tasks.  AverageStreak is rounded to one
// decimal place.
func ComputeDaily(tasks []DailyRecord) DailySnapshot {
	var s DailySnapshot
	sum := 0
	for _, t := range tasks {
		s.TotalTasks++
		if t.IsCompleted {
			s.CompletedToday++
		}
		if t.Streak > s.LongestStreak {
			s.LongestStreak = t.Streak
		}
		sum += t.Streak
	}
	s.CompletionPercentage = Percentage(s.CompletedToday, s.TotalTasks)
	if s.TotalTasks > 0 {
		s.AverageStreak = math.Round(float64(sum)/float64(s.TotalTasks)*10) / 10
	}
	return s
}
