package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/projecthub/internal/model"
)

// CompanyRepo encapsulates queries over `companies` and `company_members`.
type CompanyRepo struct {
	db *sql.DB
}

func NewCompanyRepo(db *sql.DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// Create inserts the company and makes its owner an active admin member in
// the same transaction.
func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) (err error) {
	c.ID = newID()
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO companies (id, name, description, owner_id, created_at, updated_at)
		 VALUES (?,?,?,?,?,?)`,
		c.ID, c.Name, c.Description, c.OwnerID, c.CreatedAt, c.UpdatedAt); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO company_members (id, user_id, company_id, role, is_active, created_at, updated_at)
		 VALUES (?,?,?,?,1,?,?)`,
		newID(), c.OwnerID, c.ID, model.RoleAdmin, c.CreatedAt, c.UpdatedAt)
	return err
}

// GetByID fetches a company by id.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (model.Company, error) {
	const q = `SELECT id, name, description, owner_id, created_at, updated_at FROM companies WHERE id = ?`
	var c model.Company
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Company{}, ErrNotFound
	}
	return c, err
}

// ListForMember returns the companies where userID holds an active
// membership, newest first.
func (r *CompanyRepo) ListForMember(ctx context.Context, userID string) ([]model.Company, error) {
	const q = `SELECT c.id, c.name, c.description, c.owner_id, c.created_at, c.updated_at
	           FROM companies c
	           JOIN company_members m ON m.company_id = c.id
	           WHERE m.user_id = ? AND m.is_active = 1
	           ORDER BY c.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Company{}
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Membership returns userID's membership in companyID, active or not.
func (r *CompanyRepo) Membership(ctx context.Context, companyID, userID string) (model.CompanyMember, error) {
	const q = `SELECT id, user_id, company_id, role, is_active, created_at, updated_at
	           FROM company_members WHERE company_id = ? AND user_id = ? LIMIT 1`
	var m model.CompanyMember
	err := r.db.QueryRowContext(ctx, q, companyID, userID).
		Scan(&m.ID, &m.UserID, &m.CompanyID, &m.Role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CompanyMember{}, ErrNotFound
	}
	return m, err
}

// AddMember inserts an active membership.  Adding the same user twice
// violates uk_company_members__user_id.
func (r *CompanyRepo) AddMember(ctx context.Context, m *model.CompanyMember) error {
	m.ID = newID()
	m.IsActive = true
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO company_members (id, user_id, company_id, role, is_active, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?)`,
		m.ID, m.UserID, m.CompanyID, m.Role, m.IsActive, m.CreatedAt, m.UpdatedAt)
	return err
}

// ListMembers returns the members of a company with their user summary.
func (r *CompanyRepo) ListMembers(ctx context.Context, companyID string) ([]model.CompanyMember, error) {
	const q = `SELECT m.id, m.user_id, m.company_id, m.role, m.is_active, m.created_at, m.updated_at,
	                  u.id, u.first_name, u.last_name, u.email
	           FROM company_members m
	           LEFT JOIN users u ON u.id = m.user_id
	           WHERE m.company_id = ?
	           ORDER BY m.created_at`
	rows, err := r.db.QueryContext(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CompanyMember{}
	for rows.Next() {
		var (
			m                     model.CompanyMember
			uid, first, last, eml sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.CompanyID, &m.Role, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
			&uid, &first, &last, &eml); err != nil {
			return nil, err
		}
		m.User = summary(uid, first, last, eml)
		out = append(out, m)
	}
	return out, rows.Err()
}
