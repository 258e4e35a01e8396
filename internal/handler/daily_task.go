package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/model"
	"github.com/iliyamo/projecthub/internal/queue"
	"github.com/iliyamo/projecthub/internal/stats"
)

// DailyTaskStore is the daily task persistence used by DailyTaskHandler.
type DailyTaskStore interface {
	Create(ctx context.Context, d *model.DailyTask) error
	ListByUser(ctx context.Context, userID string) ([]model.DailyTask, error)
	GetByIDAndUser(ctx context.Context, id, userID string) (model.DailyTask, error)
	Update(ctx context.Context, d *model.DailyTask) error
	Delete(ctx context.Context, id, userID string) error
	Complete(ctx context.Context, id, userID string, at time.Time) (model.DailyTask, error)
	Uncomplete(ctx context.Context, id, userID string) (model.DailyTask, error)
	History(ctx context.Context, dailyTaskID string, since time.Time) ([]model.DailyTaskHistory, error)
}

const msgDailyTaskNotFound = "Daily task not found"

// DailyTaskHandler serves /api/daily-tasks.  Daily tasks belong to the
// caller only.
type DailyTaskHandler struct {
	Daily    DailyTaskStore
	Projects ProjectStore
	Events   Events
	Now      func() time.Time
}

func NewDailyTaskHandler(d DailyTaskStore, p ProjectStore, ev Events) *DailyTaskHandler {
	return &DailyTaskHandler{Daily: d, Projects: p, Events: eventsOrNop(ev), Now: time.Now}
}

// List returns the caller's daily tasks.
func (h *DailyTaskHandler) List(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	tasks, err := h.Daily.ListByUser(ctx, id.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"dailyTasks": tasks})
}

type dailyTaskReq struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description string  `json:"description" validate:"max=2000"`
	ProjectID   *string `json:"projectId"`
}

// ownedProject checks that a referenced project belongs to the caller.
func (h *DailyTaskHandler) ownedProject(ctx context.Context, projectID *string, userID string) (*string, error) {
	if err := checkUUID("projectId", projectID); err != nil {
		return nil, err
	}
	pid := emptyToNil(projectID)
	if pid == nil {
		return nil, nil
	}
	if _, err := h.Projects.GetByIDAndOwner(ctx, *pid, userID); err != nil {
		return nil, notFound(err, msgProjectNotFound)
	}
	return pid, nil
}

// Create adds a daily task for the caller.
func (h *DailyTaskHandler) Create(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dailyTaskReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	pid, err := h.ownedProject(ctx, req.ProjectID, id.UserID)
	if err != nil {
		return err
	}
	d := model.DailyTask{Title: strings.TrimSpace(req.Title), Description: req.Description, UserID: id.UserID, ProjectID: pid}
	if err := h.Daily.Create(ctx, &d); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Daily task created successfully", echo.Map{"dailyTask": d})
}

type updateDailyTaskReq struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ProjectID   *string `json:"projectId"`
}

// Update changes title, description or the linked project.  An empty
// projectId unlinks it.
func (h *DailyTaskHandler) Update(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req updateDailyTaskReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	d, err := h.Daily.GetByIDAndUser(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgDailyTaskNotFound)
	}
	if req.Title != nil {
		d.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.ProjectID != nil {
		if d.ProjectID, err = h.ownedProject(ctx, req.ProjectID, id.UserID); err != nil {
			return err
		}
	}
	if err := h.Daily.Update(ctx, &d); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Daily task updated successfully", echo.Map{"dailyTask": d})
}

// Delete removes a daily task and its history.
func (h *DailyTaskHandler) Delete(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Daily.Delete(ctx, c.Param("id"), id.UserID); err != nil {
		return notFound(err, msgDailyTaskNotFound)
	}
	return respond(c, http.StatusOK, "Daily task deleted successfully", nil)
}

// Complete marks the task done for today.
func (h *DailyTaskHandler) Complete(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	d, err := h.Daily.Complete(ctx, c.Param("id"), id.UserID, h.Now().UTC().Truncate(time.Second))
	if err != nil {
		return notFound(err, msgDailyTaskNotFound)
	}
	h.Events.Emit(queue.ActivityEvent{Type: queue.DailyTaskCompleted, EntityID: d.ID, UserID: id.UserID, Title: d.Title, Count: int64(d.Streak)})
	return respond(c, http.StatusOK, "Daily task completed", echo.Map{"dailyTask": d})
}

// Uncomplete reverts today's completion.
func (h *DailyTaskHandler) Uncomplete(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	d, err := h.Daily.Uncomplete(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgDailyTaskNotFound)
	}
	h.Events.Emit(queue.ActivityEvent{Type: queue.DailyTaskUncompleted, EntityID: d.ID, UserID: id.UserID, Title: d.Title})
	return respond(c, http.StatusOK, "Daily task marked as not completed", echo.Map{"dailyTask": d})
}

// History returns the last `days` closed days, newest first.
func (h *DailyTaskHandler) History(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	days := queryInt(c, "days", 30, 365)

	ctx, cancel := requestCtx(c)
	defer cancel()

	d, err := h.Daily.GetByIDAndUser(ctx, c.Param("id"), id.UserID)
	if err != nil {
		return notFound(err, msgDailyTaskNotFound)
	}
	now := h.Now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
	history, err := h.Daily.History(ctx, d.ID, since)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"dailyTask": d, "history": history})
}

// Stats summarises the caller's daily tasks for today.
func (h *DailyTaskHandler) Stats(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestCtx(c)
	defer cancel()

	tasks, err := h.Daily.ListByUser(ctx, id.UserID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"stats": stats.ComputeDaily(stats.FromDailyTasks(tasks))})
}
