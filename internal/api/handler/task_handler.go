package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tasknexus/tasknexus-api/internal/api/metrics"
	"github.com/tasknexus/tasknexus-api/internal/api/response"
	"github.com/tasknexus/tasknexus-api/internal/core/domain"
	"github.com/tasknexus/tasknexus-api/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations. Every operation is
// performed on behalf of the request principal.
type TaskHandler struct {
	service ports.TaskService
	now     func() time.Time
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service, now: time.Now}
}

// Create handles POST /tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  response.Envelope{data=taskResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      401   {object}  response.Envelope
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), p, toCreateTaskInput(req))
	if err != nil {
		return err
	}
	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()

	return response.Created(c, "Task created successfully", toTaskResponse(task, h.now()))
}

// List handles GET /tasks.
//
// @Summary      List the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        page     query     int     false  "Page number (1-based)"
// @Param        size     query     int     false  "Page size (max 100)"
// @Param        sortBy   query     string  false  "createdAt, dueDate, priority, status or title"
// @Param        sortDir  query     string  false  "asc or desc"
// @Success      200      {object}  response.Envelope{data=taskPageResponse}
// @Failure      400      {object}  response.Envelope
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}

	var (
		input   ports.ListTasksInput
		sortDir string
	)
	err = echo.QueryParamsBinder(c).
		Int("page", &input.Page).
		Int("size", &input.Size).
		String("sortBy", &input.SortBy).
		String("sortDir", &sortDir).
		BindError()
	if err != nil {
		return queryError(err)
	}
	switch strings.ToLower(sortDir) {
	case "", "desc":
		input.SortDesc = true
	case "asc":
	default:
		return domain.NewValidationError("sortDir", "sortDir must be asc or desc")
	}

	page, err := h.service.List(c.Request().Context(), p, input)
	if err != nil {
		return err
	}
	return response.OK(c, "Tasks fetched successfully", toTaskPageResponse(page, h.now()))
}

// Get handles GET /tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  response.Envelope{data=taskResponse}
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}
	return response.OK(c, "Task fetched successfully", toTaskResponse(task, h.now()))
}

// ByStatus handles GET /tasks/status/:status.
//
// @Summary      List the caller's tasks with a status
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status  path      string  true  "PENDING, IN_PROGRESS, COMPLETED or CANCELLED"
// @Success      200     {object}  response.Envelope{data=[]taskResponse}
// @Router       /tasks/status/{status} [get]
func (h *TaskHandler) ByStatus(c echo.Context) error {
	status := domain.TaskStatus(strings.ToUpper(c.Param("status")))
	return h.listItems(c, "Tasks fetched successfully", ports.ListTasksInput{Status: status})
}

// ByPriority handles GET /tasks/priority/:priority.
//
// @Summary      List the caller's tasks with a priority
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        priority  path      string  true  "LOW, MEDIUM or HIGH"
// @Success      200       {object}  response.Envelope{data=[]taskResponse}
// @Router       /tasks/priority/{priority} [get]
func (h *TaskHandler) ByPriority(c echo.Context) error {
	priority := domain.TaskPriority(strings.ToUpper(c.Param("priority")))
	return h.listItems(c, "Tasks fetched successfully", ports.ListTasksInput{Priority: priority})
}

// Search handles GET /tasks/search?query=.
//
// @Summary      Search the caller's tasks by title or description
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        query  query     string  true  "Search text"
// @Success      200    {object}  response.Envelope{data=[]taskResponse}
// @Failure      400    {object}  response.Envelope
// @Router       /tasks/search [get]
func (h *TaskHandler) Search(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("query"))
	if query == "" {
		return domain.NewValidationError("query", "query is required")
	}
	return h.listItems(c, "Search results fetched successfully", ports.ListTasksInput{Search: query})
}

// Overdue handles GET /tasks/overdue.
//
// @Summary      List the caller's overdue tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]taskResponse}
// @Router       /tasks/overdue [get]
func (h *TaskHandler) Overdue(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.Overdue(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return response.OK(c, "Overdue tasks fetched successfully", toTaskResponses(tasks, h.now()))
}

// DueToday handles GET /tasks/due-today.
//
// @Summary      List the caller's tasks due today (UTC)
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Envelope{data=[]taskResponse}
// @Router       /tasks/due-today [get]
func (h *TaskHandler) DueToday(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.DueToday(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return response.OK(c, "Tasks due today fetched successfully", toTaskResponses(tasks, h.now()))
}

// Update handles PUT /tasks/:id.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Task ID"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  response.Envelope{data=taskResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), p, id, toUpdateTaskInput(req))
	if err != nil {
		return err
	}
	return response.OK(c, "Task updated successfully", toTaskResponse(task, h.now()))
}

// UpdateStatus handles PATCH /tasks/:id/status.
//
// @Summary      Change a task's status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Task ID"
// @Param        body  body      updateStatusRequest  true  "New status"
// @Success      200   {object}  response.Envelope{data=taskResponse}
// @Failure      400   {object}  response.Envelope
// @Failure      403   {object}  response.Envelope
// @Failure      404   {object}  response.Envelope
// @Router       /tasks/{id}/status [patch]
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req updateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.UpdateStatus(c.Request().Context(), p, id, domain.TaskStatus(req.Status))
	if err != nil {
		return err
	}
	return response.OK(c, "Task status updated successfully", toTaskResponse(task, h.now()))
}

// Delete handles DELETE /tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  response.Envelope
// @Failure      403  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), p, id); err != nil {
		return err
	}
	return response.OK(c, "Task deleted successfully", nil)
}

func (h *TaskHandler) listItems(c echo.Context, msg string, input ports.ListTasksInput) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	input.SortDesc = true
	page, err := h.service.List(c.Request().Context(), p, input)
	if err != nil {
		return err
	}
	return response.OK(c, msg, toTaskResponses(page.Items, h.now()))
}

func queryError(err error) error {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return domain.NewValidationError(be.Field, be.Field+" must be an integer")
	}
	return domain.NewValidationError("query", "invalid query parameters")
}
