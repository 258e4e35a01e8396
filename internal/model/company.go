package model

import "time"

// Company membership roles.  Checked by set membership only.
const (
	RoleAdmin          = "admin"
	RoleProjectManager = "project_manager"
	RoleMember         = "member"
	RoleViewer         = "viewer"
)

// Company represents a row in the `companies` table.
type Company struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CompanyMember represents a row in the `company_members` table.  User is
// populated only by queries that join the users table.
type CompanyMember struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	CompanyID string       `json:"companyId"`
	Role      string       `json:"role"`
	IsActive  bool         `json:"isActive"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	User      *UserSummary `json:"user,omitempty"`
}
