package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/apperr"
	"github.com/iliyamo/projecthub/internal/model"
	"github.com/iliyamo/projecthub/internal/repository"
)

// CompanyStore is the company persistence used by CompanyHandler.
type CompanyStore interface {
	Create(ctx context.Context, c *model.Company) error
	GetByID(ctx context.Context, id string) (model.Company, error)
	ListForMember(ctx context.Context, userID string) ([]model.Company, error)
	Membership(ctx context.Context, companyID, userID string) (model.CompanyMember, error)
	AddMember(ctx context.Context, m *model.CompanyMember) error
	ListMembers(ctx context.Context, companyID string) ([]model.CompanyMember, error)
}

const msgCompanyNotFound = "Company not found"

// CompanyHandler serves /api/companies.  Membership checks on :id routes
// are done by middleware.RequireCompanyRole.
type CompanyHandler struct {
	Companies CompanyStore
	Users     UserStore
}

func NewCompanyHandler(c CompanyStore, u UserStore) *CompanyHandler {
	return &CompanyHandler{Companies: c, Users: u}
}

type createCompanyReq struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// Create registers a company owned by the caller, who becomes its admin.
func (h *CompanyHandler) Create(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req createCompanyReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	co := model.Company{Name: strings.TrimSpace(req.Name), Description: req.Description, OwnerID: id.UserID}
	if err := h.Companies.Create(ctx, &co); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Company created successfully", echo.Map{"company": co})
}

// List returns the companies the caller is an active member of.
func (h *CompanyHandler) List(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	companies, err := h.Companies.ListForMember(ctx, id.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"companies": companies})
}

// Get returns one company.
func (h *CompanyHandler) Get(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	co, err := h.Companies.GetByID(ctx, c.Param("id"))
	if err != nil {
		return notFound(err, msgCompanyNotFound)
	}
	return respond(c, http.StatusOK, "", echo.Map{"company": co})
}

// Members lists a company's memberships.
func (h *CompanyHandler) Members(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()

	members, err := h.Companies.ListMembers(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"members": members})
}

type addMemberReq struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"omitempty,oneof=admin project_manager member viewer"`
}

// AddMember adds an existing user to the company by email.
func (h *CompanyHandler) AddMember(c echo.Context) error {
	var req addMemberReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Role == "" {
		req.Role = model.RoleMember
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return err
	}
	m := model.CompanyMember{UserID: u.ID, CompanyID: c.Param("id"), Role: req.Role}
	if err := h.Companies.AddMember(ctx, &m); err != nil {
		return err // existing member becomes 409 with field "userId"
	}
	m.User = &model.UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
	return respond(c, http.StatusCreated, "Member added successfully", echo.Map{"member": m})
}
