package model

import "time"

// User types.  They double as the coarse role tags checked by the
// authorization gate.
const (
	UserTypeIndividual = "individual"
	UserTypeCompany    = "company"
)

// User represents a row in the `users` table.  PasswordHash never leaves
// the process: it is skipped by the JSON encoder.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Timezone     string    `json:"timezone"`
	UserType     string    `json:"userType"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the slice of a user embedded in other resources
// (project owner, task assignee, company member).
type UserSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
