package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/smartodo-go/apperror"
	"github.com/user/smartodo-go/auth"
)

// fakeTaskService records calls and plays back canned results, standing in
// for the Postgres-backed implementation.
type fakeTaskService struct {
	createdFor int
	lastCreate CreateTaskRequest
	lastID     uuid.UUID
	lastUpdate UpdateTaskRequest

	task  *Task
	tasks []Task
	err   error
}

func (f *fakeTaskService) Create(ctx context.Context, userID int, req CreateTaskRequest) (*Task, error) {
	f.createdFor = userID
	f.lastCreate = req
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

func (f *fakeTaskService) ListForUser(ctx context.Context, userID int) ([]Task, error) {
	f.createdFor = userID
	if f.err != nil {
		return nil, f.err
	}
	return f.tasks, nil
}

func (f *fakeTaskService) Update(ctx context.Context, id uuid.UUID, userID int, req UpdateTaskRequest) (*Task, error) {
	f.lastID = id
	f.createdFor = userID
	f.lastUpdate = req
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

func (f *fakeTaskService) Delete(ctx context.Context, id uuid.UUID, userID int) error {
	f.lastID = id
	f.createdFor = userID
	return f.err
}

// newTestRouter mounts the handler behind a middleware that injects the given
// identity, mirroring what the authentication gate does in main.
func newTestRouter(service TaskService, user *auth.CurrentUser) http.Handler {
	r := chi.NewRouter()
	if user != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.NewContextWithUser(req.Context(), user)))
			})
		})
	}
	NewTaskHandler(service).RegisterRoutes(r)
	return r
}

func testUser() *auth.CurrentUser {
	return &auth.CurrentUser{ID: 7, Username: "ann", Email: "ann@example.com", CreatedAt: time.Now()}
}

func doJSON(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) apperror.Envelope {
	t.Helper()
	var env apperror.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return env
}

func TestCreateTask(t *testing.T) {
	fake := &fakeTaskService{task: &Task{ID: uuid.New(), Title: "Buy milk", Status: StatusPending, UserID: 7}}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodPost, "/", `{"title":"Buy milk"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("envelope success should be true")
	}
	if fake.createdFor != 7 {
		t.Errorf("service received userID %d, want 7", fake.createdFor)
	}
}

func TestCreateTask_OwnerComesFromIdentityNotBody(t *testing.T) {
	fake := &fakeTaskService{task: &Task{ID: uuid.New(), Title: "Buy milk", Status: StatusPending, UserID: 7}}
	router := newTestRouter(fake, testUser())

	// A caller-supplied owner field is not part of the request shape and is
	// silently dropped by decoding.
	rec := doJSON(t, router, http.MethodPost, "/", `{"title":"Buy milk","user_id":999}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if fake.createdFor != 7 {
		t.Errorf("service received userID %d, want the authenticated 7", fake.createdFor)
	}
}

func TestCreateTask_ValidationFailure(t *testing.T) {
	fake := &fakeTaskService{err: apperror.NewValidationError("Title is required.", nil)}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodPost, "/", `{"description":"no title"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestCreateTask_NoIdentity(t *testing.T) {
	fake := &fakeTaskService{}
	router := newTestRouter(fake, nil)

	rec := doJSON(t, router, http.MethodPost, "/", `{"title":"Buy milk"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestListTasks(t *testing.T) {
	fake := &fakeTaskService{tasks: []Task{
		{ID: uuid.New(), Title: "newer", Status: StatusPending, UserID: 7},
		{ID: uuid.New(), Title: "older", Status: StatusCompleted, UserID: 7},
	}}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp struct {
		Success bool         `json:"success"`
		Data    TaskListData `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Count != 2 || len(resp.Data.Tasks) != 2 {
		t.Errorf("count = %d with %d tasks, want 2 and 2", resp.Data.Count, len(resp.Data.Tasks))
	}
}

func TestListTasks_Empty(t *testing.T) {
	fake := &fakeTaskService{tasks: []Task{}}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodGet, "/", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp struct {
		Data TaskListData `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Count != 0 {
		t.Errorf("count = %d, want 0", resp.Data.Count)
	}
	if resp.Data.Tasks == nil {
		t.Error("tasks should serialize as an empty array, not null")
	}
}

func TestUpdateTask_MalformedID(t *testing.T) {
	fake := &fakeTaskService{}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodPut, "/not-a-uuid", `{"status":"completed"}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if fake.lastID != uuid.Nil {
		t.Error("service should not be called for a malformed id")
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	fake := &fakeTaskService{err: apperror.NewNotFoundError("Task not found.", nil)}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodPut, "/"+uuid.NewString(), `{"status":"completed"}`)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestUpdateTask_Forbidden(t *testing.T) {
	fake := &fakeTaskService{err: apperror.NewUnauthorizedError("Access denied. You can only modify your own tasks.", nil)}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodPut, "/"+uuid.NewString(), `{"status":"completed"}`)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestUpdateTask_PartialBodyDecoding(t *testing.T) {
	id := uuid.New()
	fake := &fakeTaskService{task: &Task{ID: id, Title: "Buy milk", Status: StatusCompleted, UserID: 7}}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodPut, "/"+id.String(), `{"status":"completed"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if fake.lastID != id {
		t.Errorf("service received id %v, want %v", fake.lastID, id)
	}
	if fake.lastUpdate.Title != nil || fake.lastUpdate.Description != nil {
		t.Error("omitted fields should decode as nil")
	}
	if fake.lastUpdate.Status == nil || *fake.lastUpdate.Status != "completed" {
		t.Errorf("status = %v, want completed", fake.lastUpdate.Status)
	}
}

func TestUpdateTask_EmptyBodyIsNoOp(t *testing.T) {
	id := uuid.New()
	fake := &fakeTaskService{task: &Task{ID: id, Title: "Buy milk", Status: StatusPending, UserID: 7}}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodPut, "/"+id.String(), "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if fake.lastID != id {
		t.Errorf("service received id %v, want %v", fake.lastID, id)
	}
	if fake.lastUpdate.Title != nil || fake.lastUpdate.Description != nil || fake.lastUpdate.Status != nil {
		t.Errorf("empty body should reach the service as an all-nil update: %+v", fake.lastUpdate)
	}
}

func TestDeleteTask(t *testing.T) {
	id := uuid.New()
	fake := &fakeTaskService{}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodDelete, "/"+id.String(), "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("envelope success should be true")
	}
	if env.Data != nil {
		t.Error("delete confirmation should carry no data payload")
	}
	if fake.lastID != id {
		t.Errorf("service received id %v, want %v", fake.lastID, id)
	}
}

func TestDeleteTask_SecondDeleteIsNotFound(t *testing.T) {
	fake := &fakeTaskService{err: apperror.NewNotFoundError("Task not found.", nil)}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodDelete, "/"+uuid.NewString(), "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDeleteTask_MalformedID(t *testing.T) {
	fake := &fakeTaskService{}
	router := newTestRouter(fake, testUser())

	rec := doJSON(t, router, http.MethodDelete, "/123", "")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
