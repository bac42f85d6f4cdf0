package tasks

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/smartodo-go/apperror"
)

// TaskService defines the operations available on the task resource. Handlers
// depend on this interface rather than the Postgres-backed implementation.
type TaskService interface {
	Create(ctx context.Context, userID int, req CreateTaskRequest) (*Task, error)
	ListForUser(ctx context.Context, userID int) ([]Task, error)
	Update(ctx context.Context, id uuid.UUID, userID int, req UpdateTaskRequest) (*Task, error)
	Delete(ctx context.Context, id uuid.UUID, userID int) error
}

// taskServiceImpl is the pgx-backed implementation of TaskService.
type taskServiceImpl struct {
	db *pgxpool.Pool
}

// NewTaskService creates a new TaskService backed by the given pool.
func NewTaskService(db *pgxpool.Pool) TaskService {
	return &taskServiceImpl{db: db}
}

// authorizeOwner is the ownership rule: a task may be mutated only by the
// identity recorded as its creator. It runs strictly after the existence
// check, so a missing task is reported as 404 before ownership is considered.
func authorizeOwner(resourceOwnerID, userID int) error {
	if resourceOwnerID != userID {
		return apperror.NewUnauthorizedError("Access denied. You can only modify your own tasks.", nil)
	}
	return nil
}

// newTaskFromRequest validates a create request and builds the task to
// persist. The title must be non-blank after trimming; the description is
// trimmed; a missing status defaults to pending and a supplied one must be a
// known value. The owner is always userID, whatever else the caller sent.
func newTaskFromRequest(userID int, req CreateTaskRequest) (*Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.NewValidationError("Title is required.", nil)
	}

	status := StatusPending
	if req.Status != "" {
		status = Status(req.Status)
		if !status.Valid() {
			return nil, apperror.NewValidationError(`Status must be either "pending" or "completed".`, nil)
		}
	}

	return &Task{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Status:      status,
		UserID:      userID,
	}, nil
}

// applyUpdate validates the supplied fields of a partial update and applies
// them to the task in place. Omitted (nil) fields are left untouched.
func applyUpdate(task *Task, req UpdateTaskRequest) error {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return apperror.NewValidationError("Title is required.", nil)
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		status := Status(*req.Status)
		if !status.Valid() {
			return apperror.NewValidationError(`Status must be either "pending" or "completed".`, nil)
		}
		task.Status = status
	}
	return nil
}

// Create persists a new task owned by userID.
func (s *taskServiceImpl) Create(ctx context.Context, userID int, req CreateTaskRequest) (*Task, error) {
	task, err := newTaskFromRequest(userID, req)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO tasks (title, description, status, user_id)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`
	err = s.db.QueryRow(ctx, query, task.Title, task.Description, task.Status, task.UserID).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create task", err)
	}
	return task, nil
}

// ListForUser returns all tasks owned by userID, newest-created first. The
// result is a snapshot; no isolation against concurrent writers is promised
// beyond what the database provides by default.
func (s *taskServiceImpl) ListForUser(ctx context.Context, userID int) ([]Task, error) {
	query := `SELECT id, title, description, status, user_id, created_at, updated_at
	          FROM tasks
	          WHERE user_id = $1
	          ORDER BY created_at DESC`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list tasks", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan task", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list tasks", err)
	}
	return tasks, nil
}

// Update applies a partial update to the task with the given id. Sequence:
// fetch (absent -> NotFound), ownership check (mismatch -> Unauthorized),
// validate and apply only the supplied fields, persist.
func (s *taskServiceImpl) Update(ctx context.Context, id uuid.UUID, userID int, req UpdateTaskRequest) (*Task, error) {
	task, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := authorizeOwner(task.UserID, userID); err != nil {
		return nil, err
	}

	if err := applyUpdate(task, req); err != nil {
		return nil, err
	}

	query := `UPDATE tasks
	          SET title = $1, description = $2, status = $3, updated_at = now()
	          WHERE id = $4
	          RETURNING updated_at`
	err = s.db.QueryRow(ctx, query, task.Title, task.Description, task.Status, task.ID).Scan(&task.UpdatedAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to update task", err)
	}
	return task, nil
}

// Delete removes the task with the given id permanently, after the same
// fetch/ownership sequence as Update. Deleting an already-deleted id yields
// NotFound, not success.
func (s *taskServiceImpl) Delete(ctx context.Context, id uuid.UUID, userID int) error {
	task, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}

	if err := authorizeOwner(task.UserID, userID); err != nil {
		return err
	}

	if _, err := s.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, task.ID); err != nil {
		return apperror.NewDatabaseError("failed to delete task", err)
	}
	return nil
}

func (s *taskServiceImpl) getByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var t Task
	query := `SELECT id, title, description, status, user_id, created_at, updated_at
	          FROM tasks
	          WHERE id = $1`
	err := s.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Task not found.", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get task", err)
	}
	return &t, nil
}
