package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/projecthub/internal/model"
)

const dailyColumns = "id, title, description, is_completed, completed_at, streak, user_id, project_id, created_at, updated_at"

// DailyTaskRepo encapsulates queries over `daily_tasks` and
// `daily_task_history`.
type DailyTaskRepo struct {
	db *sql.DB
}

func NewDailyTaskRepo(db *sql.DB) *DailyTaskRepo {
	return &DailyTaskRepo{db: db}
}

func scanDaily(row rowScanner) (model.DailyTask, error) {
	var (
		d           model.DailyTask
		completedAt sql.NullTime
		projectID   sql.NullString
	)
	err := row.Scan(&d.ID, &d.Title, &d.Description, &d.IsCompleted, &completedAt, &d.Streak,
		&d.UserID, &projectID, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.DailyTask{}, ErrNotFound
	}
	if err != nil {
		return model.DailyTask{}, err
	}
	d.CompletedAt = timePtr(completedAt)
	d.ProjectID = strPtr(projectID)
	return d, nil
}

// Create inserts a fresh, uncompleted daily task.
func (r *DailyTaskRepo) Create(ctx context.Context, d *model.DailyTask) error {
	d.ID = newID()
	d.IsCompleted = false
	d.CompletedAt = nil
	d.Streak = 0
	d.CreatedAt = now()
	d.UpdatedAt = d.CreatedAt
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO daily_tasks ("+dailyColumns+") VALUES (?,?,?,?,?,?,?,?,?,?)",
		d.ID, d.Title, d.Description, d.IsCompleted, d.CompletedAt, d.Streak,
		d.UserID, d.ProjectID, d.CreatedAt, d.UpdatedAt)
	return err
}

// ListByUser returns the user's daily tasks in creation order.
func (r *DailyTaskRepo) ListByUser(ctx context.Context, userID string) ([]model.DailyTask, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+dailyColumns+" FROM daily_tasks WHERE user_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.DailyTask{}
	for rows.Next() {
		d, err := scanDaily(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByIDAndUser fetches a daily task owned by userID.
func (r *DailyTaskRepo) GetByIDAndUser(ctx context.Context, id, userID string) (model.DailyTask, error) {
	return scanDaily(r.db.QueryRowContext(ctx,
		"SELECT "+dailyColumns+" FROM daily_tasks WHERE id = ? AND user_id = ?", id, userID))
}

// Update writes title, description and project of d.
func (r *DailyTaskRepo) Update(ctx context.Context, d *model.DailyTask) error {
	d.UpdatedAt = now()
	_, err := r.db.ExecContext(ctx,
		`UPDATE daily_tasks SET title = ?, description = ?, project_id = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		d.Title, d.Description, d.ProjectID, d.UpdatedAt, d.ID, d.UserID)
	return err
}

// Delete removes a daily task; its history goes with it (ON DELETE CASCADE).
func (r *DailyTaskRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM daily_tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete marks the task done for today and extends its streak.  Calling
// it on an already completed task changes nothing.
func (r *DailyTaskRepo) Complete(ctx context.Context, id, userID string, at time.Time) (model.DailyTask, error) {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE daily_tasks SET is_completed = 1, completed_at = ?, streak = streak + 1, updated_at = ?
		 WHERE id = ? AND user_id = ? AND is_completed = 0`,
		at, now(), id, userID); err != nil {
		return model.DailyTask{}, err
	}
	return r.GetByIDAndUser(ctx, id, userID)
}

// Uncomplete reverts Complete, never taking the streak below zero.
func (r *DailyTaskRepo) Uncomplete(ctx context.Context, id, userID string) (model.DailyTask, error) {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE daily_tasks SET is_completed = 0, completed_at = NULL, streak = GREATEST(streak - 1, 0), updated_at = ?
		 WHERE id = ? AND user_id = ? AND is_completed = 1`,
		now(), id, userID); err != nil {
		return model.DailyTask{}, err
	}
	return r.GetByIDAndUser(ctx, id, userID)
}

// History returns the closed days of a daily task since the given day,
// newest first.
func (r *DailyTaskRepo) History(ctx context.Context, dailyTaskID string, since time.Time) ([]model.DailyTaskHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, daily_task_id, date, was_completed, completed_at
		 FROM daily_task_history
		 WHERE daily_task_id = ? AND date >= ?
		 ORDER BY date DESC`,
		dailyTaskID, since.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.DailyTaskHistory{}
	for rows.Next() {
		var (
			h           model.DailyTaskHistory
			completedAt sql.NullTime
		)
		if err := rows.Scan(&h.ID, &h.DailyTaskID, &h.Date, &h.WasCompleted, &completedAt); err != nil {
			return nil, err
		}
		h.CompletedAt = timePtr(completedAt)
		out = append(out, h)
	}
	return out, rows.Err()
}

// ResetAll closes day for every daily task: it records a history row per
// task, zeroes the streak of tasks left undone and clears today's
// completion.  Only tasks whose history row this call inserted are
// touched, so re-running for a closed day changes nothing.  It returns
// the number of history rows written.
func (r *DailyTaskRepo) ResetAll(ctx context.Context, day time.Time) (written int64, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	ts := now()
	date := day.Format(time.DateOnly)
	res, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO daily_task_history (id, daily_task_id, date, was_completed, completed_at, created_at, updated_at)
		 SELECT UUID(), id, ?, is_completed, completed_at, ?, ? FROM daily_tasks`,
		date, ts, ts)
	if err != nil {
		return 0, err
	}
	if written, _ = res.RowsAffected(); written == 0 {
		return 0, nil
	}

	const closedNow = `id IN (SELECT daily_task_id FROM daily_task_history WHERE date = ? AND created_at = ?)`
	if _, err = tx.ExecContext(ctx,
		`UPDATE daily_tasks SET streak = 0, updated_at = ? WHERE is_completed = 0 AND `+closedNow,
		ts, date, ts); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE daily_tasks SET is_completed = 0, completed_at = NULL, updated_at = ? WHERE is_completed = 1 AND `+closedNow,
		ts, date, ts); err != nil {
		return 0, err
	}
	return written, nil
}
