package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/model"
	"github.com/iliyamo/projecthub/internal/queue"
	"github.com/iliyamo/projecthub/internal/repository"
)

const msgTaskNotFound = "Task not found"

// TaskHandler serves /api/projects/:id/tasks and /api/tasks/:id.  Access
// follows project ownership.
type TaskHandler struct {
	Projects ProjectStore
	Tasks    TaskStore
	Events   Events
}

func NewTaskHandler(p ProjectStore, t TaskStore, ev Events) *TaskHandler {
	return &TaskHandler{Projects: p, Tasks: t, Events: eventsOrNop(ev)}
}

// ListByProject returns a project's tasks, optionally filtered by status
// and priority.
func (h *TaskHandler) ListByProject(c echo.Context) error {
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
	tasks, err := h.Tasks.ListByProject(ctx, p.ID, repository.TaskFilter{
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"tasks": tasks})
}

type createTaskReq struct {
	Title          string   `json:"title" validate:"required,min=1,max=255"`
	Description    string   `json:"description" validate:"max=4000"`
	Status         string   `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority       string   `json:"priority" validate:"omitempty,oneof=critical high medium low"`
	DueDate        *string  `json:"dueDate"`
	EstimatedHours *float64 `json:"estimatedHours" validate:"omitempty,gte=0,lte=999.99"`
	ActualHours    *float64 `json:"actualHours" validate:"omitempty,gte=0,lte=999.99"`
	Tags           []string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	AssigneeID     *string  `json:"assigneeId"`
}

// Create adds a task to one of the caller's projects.
func (h *TaskHandler) Create(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req createTaskReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	due, err := parseDate("dueDate", req.DueDate)
	if err != nil {
		return err
	}
	if err := checkUUID("assigneeId", req.AssigneeID); err != nil {
		return err
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	p, err := h.Projects.GetByIDAndOwner(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgProjectNotFound)
	}
	t := model.Task{
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		DueDate:        due,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Tags:           req.Tags,
		ProjectID:      p.ID,
		AssigneeID:     emptyToNil(req.AssigneeID),
		CreatedByID:    id.UserID,
	}
	if err := h.Tasks.Create(ctx, &t); err != nil {
		return err // unknown assignee becomes 400 through the FK error
	}
	h.Events.Emit(queue.ActivityEvent{Type: queue.TaskCreated, EntityID: t.ID, ProjectID: p.ID, UserID: id.UserID, Title: t.Title, Status: t.Status})
	return respond(c, http.StatusCreated, "Task created successfully", echo.Map{"task": t})
}

// Get returns one task.
func (h *TaskHandler) Get(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	t, err := h.Tasks.GetByIDForOwner(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgTaskNotFound)
	}
	return respond(c, http.StatusOK, "", echo.Map{"task": t})
}

type updateTaskReq struct {
	Title          *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description    *string   `json:"description" validate:"omitempty,max=4000"`
	Status         *string   `json:"status" validate:"omitempty,oneof=todo in_progress done"`
	Priority       *string   `json:"priority" validate:"omitempty,oneof=critical high medium low"`
	DueDate        *string   `json:"dueDate"`
	EstimatedHours *float64  `json:"estimatedHours" validate:"omitempty,gte=0,lte=999.99"`
	ActualHours    *float64  `json:"actualHours" validate:"omitempty,gte=0,lte=999.99"`
	Tags           *[]string `json:"tags" validate:"omitempty,max=20,dive,min=1,max=50"`
	AssigneeID     *string   `json:"assigneeId"`
}

// Update applies the fields present in the body.  An empty assigneeId
// unassigns the task and an empty dueDate clears it.
func (h *TaskHandler) Update(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req updateTaskReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := checkUUID("assigneeId", req.AssigneeID); err != nil {
		return err
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	t, err := h.Tasks.GetByIDForOwner(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgTaskNotFound)
	}
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		if t.DueDate, err = parseDate("dueDate", req.DueDate); err != nil {
			return err
		}
	}
	if req.EstimatedHours != nil {
		t.EstimatedHours = req.EstimatedHours
	}
	if req.ActualHours != nil {
		t.ActualHours = req.ActualHours
	}
	if req.Tags != nil {
		t.Tags = *req.Tags
	}
	if req.AssigneeID != nil {
		t.AssigneeID = emptyToNil(req.AssigneeID)
		t.Assignee = nil
	}

	if err := h.Tasks.Update(ctx, &t); err != nil {
		return err
	}
	h.Events.Emit(queue.ActivityEvent{Type: queue.TaskUpdated, EntityID: t.ID, ProjectID: t.ProjectID, UserID: id.UserID, Title: t.Title, Status: t.Status})
	return respond(c, http.StatusOK, "Task updated successfully", echo.Map{"task": t})
}

// Delete removes one task.
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	t, err := h.Tasks.GetByIDForOwner(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgTaskNotFound)
	}
	if err := h.Tasks.Delete(ctx, t.ID); err != nil {
		return notFound(err, msgTaskNotFound)
	}
	h.Events.Emit(queue.ActivityEvent{Type: queue.TaskDeleted, EntityID: t.ID, ProjectID: t.ProjectID, UserID: id.UserID, Title: t.Title})
	return respond(c, http.StatusOK, "Task deleted successfully", nil)
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
