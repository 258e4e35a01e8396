package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/projecthub/internal/model"
)

const projectSelect = `SELECT p.id, p.name, p.description, p.methodology, p.status, p.priority,
       p.start_date, p.end_date, p.owner_id, p.company_id, p.created_at, p.updated_at,
       u.id, u.first_name, u.last_name, u.email
FROM projects p
LEFT JOIN users u ON u.id = p.owner_id`

// ProjectRepo encapsulates queries over `projects`.  Every read and write
// is scoped to an owner: a project owned by someone else is reported as
// ErrNotFound.
type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// ProjectFilter narrows ListByOwner.  Empty strings mean no filter.
type ProjectFilter struct {
	Status      string
	Methodology string
	Limit       int
	Offset      int
}

func scanProject(row rowScanner) (model.Project, error) {
	var (
		p                     model.Project
		start, end            sql.NullTime
		companyID             sql.NullString
		uid, first, last, eml sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Methodology, &p.Status, &p.Priority,
		&start, &end, &p.OwnerID, &companyID, &p.CreatedAt, &p.UpdatedAt,
		&uid, &first, &last, &eml)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, err
	}
	p.StartDate = timePtr(start)
	p.EndDate = timePtr(end)
	p.CompanyID = strPtr(companyID)
	p.Owner = summary(uid, first, last, eml)
	return p, nil
}

// Create inserts p.  Missing enum values fall back to the column defaults.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	p.ID = newID()
	if p.Methodology == "" {
		p.Methodology = model.MethodologyKanban
	}
	if p.Status == "" {
		p.Status = model.ProjectPlanning
	}
	if p.Priority == "" {
		p.Priority = model.PriorityMedium
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	const q = `INSERT INTO projects (id, name, description, methodology, status, priority,
	           start_date, end_date, owner_id, company_id, created_at, updated_at)
	           VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`
	_, err := r.db.ExecContext(ctx, q, p.ID, p.Name, p.Description, p.Methodology, p.Status, p.Priority,
		p.StartDate, p.EndDate, p.OwnerID, p.CompanyID, p.CreatedAt, p.UpdatedAt)
	return err
}

// GetByIDAndOwner fetches a project with its owner summary.
func (r *ProjectRepo) GetByIDAndOwner(ctx context.Context, id, ownerID string) (model.Project, error) {
	return scanProject(r.db.QueryRowContext(ctx, projectSelect+` WHERE p.id = ? AND p.owner_id = ?`, id, ownerID))
}

// ListByOwner returns one page of the owner's projects, newest first, and
// the total number of matching rows.
func (r *ProjectRepo) ListByOwner(ctx context.Context, ownerID string, f ProjectFilter) ([]model.Project, int, error) {
	where := []string{"p.owner_id = ?"}
	args := []any{ownerID}
	if f.Status != "" {
		where = append(where, "p.status = ?")
		args = append(args, f.Status)
	}
	if f.Methodology != "" {
		where = append(where, "p.methodology = ?")
		args = append(args, f.Methodology)
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects p"+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		projectSelect+cond+" ORDER BY p.created_at DESC LIMIT ? OFFSET ?",
		append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update writes every mutable column of p, scoped to p.OwnerID.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
	p.UpdatedAt = now()
	const q = `UPDATE projects
	           SET name = ?, description = ?, methodology = ?, status = ?, priority = ?,
	               start_date = ?, end_date = ?, updated_at = ?
	           WHERE id = ? AND owner_id = ?`
	_, err := r.db.ExecContext(ctx, q, p.Name, p.Description, p.Methodology, p.Status, p.Priority,
		p.StartDate, p.EndDate, p.UpdatedAt, p.ID, p.OwnerID)
	return err
}

// DeleteByIDAndOwner removes a project.  Remaining tasks make MySQL reject
// the delete with a foreign key error.
func (r *ProjectRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
