package auth

import "github.com/iliyamo/projecthub/internal/model"

// Permission tags understood by HasPermission.
const (
	PermCreateProject = "create_project"
	PermManageCompany = "manage_company"
)

// HasPermission mirrors the server-side role checks for UI decisions.
// Unknown tags are allowed; the server remains authoritative.
func HasPermission(id *Identity, perm string) bool {
	if id == nil {
		return false
	}
	switch perm {
	case PermCreateProject:
		return InSet(id.UserType, model.UserTypeIndividual, model.UserTypeCompany)
	case PermManageCompany:
		return id.UserType == model.UserTypeCompany
	default:
		return true
	}
}
