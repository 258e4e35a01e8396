package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/projecthub/internal/model"
)

const taskSelect = `SELECT t.id, t.title, t.description, t.status, t.priority, t.due_date,
       t.estimated_hours, t.actual_hours, t.tags, t.project_id, t.assignee_id, t.created_by_id,
       t.created_at, t.updated_at,
       a.id, a.first_name, a.last_name, a.email
FROM tasks t
LEFT JOIN users a ON a.id = t.assignee_id`

// TaskRepo encapsulates queries over `tasks`.
type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// TaskFilter narrows ListByProject.  Empty strings mean no filter.
type TaskFilter struct {
	Status   string
	Priority string
}

func scanTask(row rowScanner) (model.Task, error) {
	var (
		t                     model.Task
		due                   sql.NullTime
		est, act              sql.NullFloat64
		tags, assigneeID      sql.NullString
		uid, first, last, eml sql.NullString
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due,
		&est, &act, &tags, &t.ProjectID, &assigneeID, &t.CreatedByID,
		&t.CreatedAt, &t.UpdatedAt,
		&uid, &first, &last, &eml)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, err
	}
	t.DueDate = timePtr(due)
	t.EstimatedHours = floatPtr(est)
	t.ActualHours = floatPtr(act)
	t.Tags = decodeTags(tags)
	t.AssigneeID = strPtr(assigneeID)
	t.Assignee = summary(uid, first, last, eml)
	return t, nil
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	defer rows.Close()
	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Create inserts t.  An unknown assignee or project surfaces as MySQL
// error 1452.
func (r *TaskRepo) Create(ctx context.Context, t *model.Task) error {
	t.ID = newID()
	if t.Status == "" {
		t.Status = model.TaskTodo
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt

	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	const q = `INSERT INTO tasks (id, title, description, status, priority, due_date,
	           estimated_hours, actual_hours, tags, project_id, assignee_id, created_by_id, created_at, updated_at)
	           VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	_, err = r.db.ExecContext(ctx, q, t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
		t.EstimatedHours, t.ActualHours, tags, t.ProjectID, t.AssigneeID, t.CreatedByID, t.CreatedAt, t.UpdatedAt)
	return err
}

// GetByIDForOwner fetches a task whose project belongs to ownerID.
func (r *TaskRepo) GetByIDForOwner(ctx context.Context, id, ownerID string) (model.Task, error) {
	q := taskSelect + ` JOIN projects p ON p.id = t.project_id WHERE t.id = ? AND p.owner_id = ?`
	return scanTask(r.db.QueryRowContext(ctx, q, id, ownerID))
}

// ListByProject returns the tasks of one project, newest first.
func (r *TaskRepo) ListByProject(ctx context.Context, projectID string, f TaskFilter) ([]model.Task, error) {
	where := []string{"t.project_id = ?"}
	args := []any{projectID}
	if f.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		where = append(where, "t.priority = ?")
		args = append(args, f.Priority)
	}
	rows, err := r.db.QueryContext(ctx,
		taskSelect+" WHERE "+strings.Join(where, " AND ")+" ORDER BY t.created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// ListByProjectIDs returns the tasks of several projects in one query.
func (r *TaskRepo) ListByProjectIDs(ctx context.Context, projectIDs []string) ([]model.Task, error) {
	if len(projectIDs) == 0 {
		return []model.Task{}, nil
	}
	args := make([]any, len(projectIDs))
	for i, id := range projectIDs {
		args[i] = id
	}
	rows, err := r.db.QueryContext(ctx,
		taskSelect+" WHERE t.project_id IN ("+placeholders(len(args))+")", args...)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// Update writes every mutable column of t.
func (r *TaskRepo) Update(ctx context.Context, t *model.Task) error {
	t.UpdatedAt = now()
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	const q = `UPDATE tasks
	           SET title = ?, description = ?, status = ?, priority = ?, due_date = ?,
	               estimated_hours = ?, actual_hours = ?, tags = ?, assignee_id = ?, updated_at = ?
	           WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
		t.EstimatedHours, t.ActualHours, tags, t.AssigneeID, t.UpdatedAt, t.ID)
	return err
}

// Delete removes a task by id.
func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByProject returns how many tasks reference projectID.
func (r *TaskRepo) CountByProject(ctx context.Context, projectID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE project_id = ?`, projectID).Scan(&n)
	return n, err
}
