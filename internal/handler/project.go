package handler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/apperr"
	"github.com/iliyamo/projecthub/internal/auth"
	"github.com/iliyamo/projecthub/internal/middleware"
	"github.com/iliyamo/projecthub/internal/model"
	"github.com/iliyamo/projecthub/internal/queue"
	"github.com/iliyamo/projecthub/internal/repository"
	"github.com/iliyamo/projecthub/internal/stats"
)

// ProjectStore is the project persistence used by ProjectHandler.
type ProjectStore interface {
	Create(ctx context.Context, p *model.Project) error
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (model.Project, error)
	ListByOwner(ctx context.Context, ownerID string, f repository.ProjectFilter) ([]model.Project, int, error)
	Update(ctx context.Context, p *model.Project) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error
}

// TaskStore is the task persistence used by the project and task
// endpoints.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) error
	GetByIDForOwner(ctx context.Context, id, ownerID string) (model.Task, error)
	ListByProject(ctx context.Context, projectID string, f repository.TaskFilter) ([]model.Task, error)
	ListByProjectIDs(ctx context.Context, projectIDs []string) ([]model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, id string) error
	CountByProject(ctx context.Context, projectID string) (int, error)
}

const (
	msgProjectNotFound = "Project not found"
	msgDateOrder       = "Start date cannot be after end date"
)

// ProjectHandler serves /api/projects.  Projects are visible to their
// owner only.
type ProjectHandler struct {
	Projects ProjectStore
	Tasks    TaskStore
	Members  middleware.MembershipFinder
	Events   Events
	Now      func() time.Time
}

func NewProjectHandler(p ProjectStore, t TaskStore, m middleware.MembershipFinder, ev Events) *ProjectHandler {
	return &ProjectHandler{Projects: p, Tasks: t, Members: m, Events: eventsOrNop(ev), Now: time.Now}
}

type projectView struct {
	model.Project
	Stats stats.Summary `json:"stats"`
	Tasks []model.Task  `json:"tasks,omitempty"`
}

// maxPage bounds the page parameter so the row offset cannot overflow.
const maxPage = 100000

type pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// List returns one page of the caller's projects with task statistics.
func (h *ProjectHandler) List(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	page := queryInt(c, "page", 1, maxPage)
	limit := queryInt(c, "limit", 10, 100)

	ctx, cancel := requestCtx(c)
	defer cancel()

	projects, total, err := h.Projects.ListByOwner(ctx, id.UserID, repository.ProjectFilter{
		Status:      c.QueryParam("status"),
		Methodology: c.QueryParam("methodology"),
		Limit:       limit,
		Offset:      (page - 1) * limit,
	})
	if err != nil {
		return err
	}

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	tasks, err := h.Tasks.ListByProjectIDs(ctx, ids)
	if err != nil {
		return err
	}
	byProject := make(map[string][]stats.TaskRecord, len(projects))
	for _, t := range tasks {
		byProject[t.ProjectID] = append(byProject[t.ProjectID], stats.FromTask(t))
	}

	now := h.Now()
	views := make([]projectView, len(projects))
	for i, p := range projects {
		views[i] = projectView{Project: p, Stats: stats.Compute(byProject[p.ID], now).Summary()}
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"projects": views,
		"pagination": pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	})
}

// Get returns a project with its tasks and statistics.
func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Projects.GetByIDAndOwner(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgProjectNotFound)
	}
	tasks, err := h.Tasks.ListByProject(ctx, p.ID, repository.TaskFilter{})
	if err != nil {
		return err
	}
	view := projectView{
		Project: p,
		Stats:   stats.Compute(stats.FromTasks(tasks), h.Now()).Summary(),
		Tasks:   tasks,
	}
	return respond(c, http.StatusOK, "", echo.Map{"project": view})
}

type createProjectReq struct {
	Name        string  `json:"name" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"max=2000"`
	Methodology string  `json:"methodology" validate:"omitempty,oneof=kanban scrum agile waterfall custom"`
	Status      string  `json:"status" validate:"omitempty,oneof=planning active on_hold completed cancelled"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=critical high medium low"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	CompanyID   *string `json:"companyId"`
}

// Create adds a project owned by the caller.  Attaching it to a company
// requires an admin or project_manager membership there.
func (h *ProjectHandler) Create(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req createProjectReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	start, err := parseDate("startDate", req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("endDate", req.EndDate)
	if err != nil {
		return err
	}
	if start != nil && end != nil && start.After(*end) {
		return apperr.BadRequest(msgDateOrder)
	}
	if err := checkUUID("companyId", req.CompanyID); err != nil {
		return err
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	companyID := emptyToNil(req.CompanyID)
	if companyID != nil {
		if err := h.checkCompanyRole(ctx, *companyID, id.UserID); err != nil {
			return err
		}
	}

	p := model.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Methodology: req.Methodology,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   start,
		EndDate:     end,
		OwnerID:     id.UserID,
		CompanyID:   companyID,
	}
	if err := h.Projects.Create(ctx, &p); err != nil {
		return err
	}
	h.Events.Emit(queue.ActivityEvent{Type: queue.ProjectCreated, EntityID: p.ID, ProjectID: p.ID, UserID: id.UserID, Title: p.Name, Status: p.Status})
	return respond(c, http.StatusCreated, "Project created successfully", echo.Map{"project": p})
}

func (h *ProjectHandler) checkCompanyRole(ctx context.Context, companyID, userID string) error {
	if h.Members == nil {
		return auth.ErrForbidden
	}
	m, err := h.Members.Membership(ctx, companyID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.ErrForbidden
	}
	if err != nil {
		return err
	}
	if !m.IsActive || !auth.InSet(m.Role, model.RoleAdmin, model.RoleProjectManager) {
		return auth.ErrForbidden
	}
	return nil
}

type updateProjectReq struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Methodology *string `json:"methodology" validate:"omitempty,oneof=kanban scrum agile waterfall custom"`
	Status      *string `json:"status" validate:"omitempty,oneof=planning active on_hold completed cancelled"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=critical high medium low"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
}

// Update applies the fields present in the body.  An explicit empty date
// clears it.
func (h *ProjectHandler) Update(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req updateProjectReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Projects.GetByIDAndOwner(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgProjectNotFound)
	}
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Methodology != nil {
		p.Methodology = *req.Methodology
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	if req.Priority != nil {
		p.Priority = *req.Priority
	}
	if req.StartDate != nil {
		if p.StartDate, err = parseDate("startDate", req.StartDate); err != nil {
			return err
		}
	}
	if req.EndDate != nil {
		if p.EndDate, err = parseDate("endDate", req.EndDate); err != nil {
			return err
		}
	}
	if p.StartDate != nil && p.EndDate != nil && p.StartDate.After(*p.EndDate) {
		return apperr.BadRequest(msgDateOrder)
	}

	if err := h.Projects.Update(ctx, &p); err != nil {
		return err
	}
	h.Events.Emit(queue.ActivityEvent{Type: queue.ProjectUpdated, EntityID: p.ID, ProjectID: p.ID, UserID: id.UserID, Title: p.Name, Status: p.Status})
	return respond(c, http.StatusOK, "Project updated successfully", echo.Map{"project": p})
}

// Delete removes an empty project.
func (h *ProjectHandler) Delete(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Projects.GetByIDAndOwner(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgProjectNotFound)
	}
	n, err := h.Tasks.CountByProject(ctx, p.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.BadRequest(fmt.Sprintf("Cannot delete project with %d existing tasks. Please delete all tasks first.", n))
	}
	if err := h.Projects.DeleteByIDAndOwner(ctx, p.ID, id.UserID); err != nil {
		return notFound(err, msgProjectNotFound)
	}
	h.Events.Emit(queue.ActivityEvent{Type: queue.ProjectDeleted, EntityID: p.ID, ProjectID: p.ID, UserID: id.UserID, Title: p.Name})
	return respond(c, http.StatusOK, "Project deleted successfully", nil)
}

type dashboardProject struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Methodology string     `json:"methodology"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// Dashboard returns the full statistics snapshot of a project.
func (h *ProjectHandler) Dashboard(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Projects.GetByIDAndOwner(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgProjectNotFound)
	}
	tasks, err := h.Tasks.ListByProject(ctx, p.ID, repository.TaskFilter{})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{
		"project": dashboardProject{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Methodology: p.Methodology,
			Status:      p.Status,
			Priority:    p.Priority,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
		},
		"stats": stats.Compute(stats.FromTasks(tasks), h.Now()),
	})
}
