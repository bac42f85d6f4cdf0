package tasks

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/smartodo-go/apperror"
	"github.com/user/smartodo-go/auth"
)

// TaskHandler handles HTTP requests for tasks. Every route it registers
// assumes the authentication middleware already ran: the handlers read the
// resolved identity from the request context and refuse to proceed without it.
type TaskHandler struct {
	service TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// RegisterRoutes registers the task API routes on the given router. The
// router is expected to be mounted under /api/tasks with the auth middleware
// applied.
func (h *TaskHandler) RegisterRoutes(router chi.Router) {
	router.Post("/", h.createTask)
	router.Get("/", h.listTasks)
	router.Put("/{id}", h.updateTask)
	router.Delete("/{id}", h.deleteTask)
}

// createTask godoc
// @Summary Create a task
// @Description Creates a new task owned by the authenticated user.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param taskBody body tasks.CreateTaskRequest true "Task details"
// @Success 201 {object} apperror.Envelope "Task created successfully"
// @Failure 400 {object} apperror.Envelope "Bad Request - Missing or blank title"
// @Failure 401 {object} apperror.Envelope "Unauthorized"
// @Failure 500 {object} apperror.Envelope "Internal Server Error"
// @Router /api/tasks [post]
func (h *TaskHandler) createTask(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("User not authenticated", nil))
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	task, err := h.service.Create(r.Context(), user.ID, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	auth.WriteJSON(w, http.StatusCreated, apperror.Envelope{
		Success: true,
		Message: "Task created successfully.",
		Data:    map[string]any{"task": task},
	})
}

// listTasks godoc
// @Summary List tasks
// @Description Returns all tasks owned by the authenticated user, newest first.
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} apperror.Envelope "Tasks retrieved successfully"
// @Failure 401 {object} apperror.Envelope "Unauthorized"
// @Failure 500 {object} apperror.Envelope "Internal Server Error"
// @Router /api/tasks [get]
func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("User not authenticated", nil))
		return
	}

	tasks, err := h.service.ListForUser(r.Context(), user.ID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, apperror.Envelope{
		Success: true,
		Message: "Tasks retrieved successfully.",
		Data:    TaskListData{Tasks: tasks, Count: len(tasks)},
	})
}

// updateTask godoc
// @Summary Update a task
// @Description Partially updates a task; only supplied fields change. Owner only.
// @Tags Tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param taskBody body tasks.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} apperror.Envelope "Task updated successfully"
// @Failure 400 {object} apperror.Envelope "Bad Request - Malformed id, blank title or invalid status"
// @Failure 401 {object} apperror.Envelope "Unauthorized"
// @Failure 403 {object} apperror.Envelope "Forbidden - Not the owner"
// @Failure 404 {object} apperror.Envelope "Not Found"
// @Failure 500 {object} apperror.Envelope "Internal Server Error"
// @Router /api/tasks/{id} [put]
func (h *TaskHandler) updateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("User not authenticated", nil))
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	// An empty body is a valid partial update touching nothing.
	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	task, err := h.service.Update(r.Context(), id, user.ID, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, apperror.Envelope{
		Success: true,
		Message: "Task updated successfully.",
		Data:    map[string]any{"task": task},
	})
}

// deleteTask godoc
// @Summary Delete a task
// @Description Permanently deletes a task. Owner only.
// @Tags Tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} apperror.Envelope "Task deleted successfully"
// @Failure 400 {object} apperror.Envelope "Bad Request - Malformed id"
// @Failure 401 {object} apperror.Envelope "Unauthorized"
// @Failure 403 {object} apperror.Envelope "Forbidden - Not the owner"
// @Failure 404 {object} apperror.Envelope "Not Found"
// @Failure 500 {object} apperror.Envelope "Internal Server Error"
// @Router /api/tasks/{id} [delete]
func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("User not authenticated", nil))
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id, user.ID); err != nil {
		auth.WriteError(w, r, err)
		return
	}

	auth.WriteJSON(w, http.StatusOK, apperror.Envelope{
		Success: true,
		Message: "Task deleted successfully.",
	})
}

// parseTaskID extracts and validates the {id} path parameter. A value that is
// not a UUID is a validation failure, not a lookup miss or a server fault.
func parseTaskID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.NewValidationError("Invalid task ID format.", err)
	}
	return id, nil
}
