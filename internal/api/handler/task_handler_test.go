package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskdeck/task-system/internal/api/middleware"
	"github.com/taskdeck/task-system/internal/core/domain"
	"github.com/taskdeck/task-system/internal/core/ports"
)

type stubTaskService struct {
	getTasksFn     func(ctx context.Context, filter ports.ListTasksFilter, userID string) (*ports.ListTasksResult, error)
	getTaskByIDFn  func(ctx context.Context, id, userID string) (*domain.Task, error)
	createTaskFn   func(ctx context.Context, input ports.CreateTaskInput, userID string) (*domain.Task, error)
	deleteTaskFn   func(ctx context.Context, id, userID string) error
	updateStatusFn func(ctx context.Context, id string, status domain.TaskStatus, userID string) (*domain.Task, error)
}

func (s *stubTaskService) GetTasks(ctx context.Context, filter ports.ListTasksFilter, userID string) (*ports.ListTasksResult, error) {
	return s.getTasksFn(ctx, filter, userID)
}

func (s *stubTaskService) GetTaskByID(ctx context.Context, id, userID string) (*domain.Task, error) {
	return s.getTaskByIDFn(ctx, id, userID)
}

func (s *stubTaskService) CreateTask(ctx context.Context, input ports.CreateTaskInput, userID string) (*domain.Task, error) {
	return s.createTaskFn(ctx, input, userID)
}

func (s *stubTaskService) DeleteTask(ctx context.Context, id, userID string) error {
	return s.deleteTaskFn(ctx, id, userID)
}

func (s *stubTaskService) UpdateTaskStatus(ctx context.Context, id string, status domain.TaskStatus, userID string) (*domain.Task, error) {
	return s.updateStatusFn(ctx, id, status, userID)
}

// newTaskContext builds an echo context pre-populated with the authenticated
// user id, the way the BasicAuth middleware would leave it.
func newTaskContext(e *echo.Echo, method, target, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set(middleware.CtxUserID, userID)
	}
	return c, rec
}

func TestTaskHandler_List_Success(t *testing.T) {
	e := echo.New()
	stub := &stubTaskService{
		getTasksFn: func(ctx context.Context, filter ports.ListTasksFilter, userID string) (*ports.ListTasksResult, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			if filter.Status != domain.StatusOpen || filter.Search != "report" {
				t.Fatalf("unexpected filter: %+v", filter)
			}
			if filter.Page != 2 || filter.Limit != 5 {
				t.Fatalf("unexpected pagination: %+v", filter)
			}
			return &ports.ListTasksResult{
				Items:      []*domain.Task{{ID: "task-1", Title: "write report", Status: domain.StatusOpen, UserID: userID}},
				Total:      6,
				Page:       2,
				Limit:      5,
				TotalPages: 2,
			}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := newTaskContext(e, http.MethodGet, "/v1/tasks?status=open&search=report&page=2&limit=5", "", "user-1")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp listTasksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "task-1" {
		t.Fatalf("unexpected data: %+v", resp.Data)
	}
	if resp.Pagination.Total != 6 || resp.Pagination.TotalPages != 2 {
		t.Fatalf("unexpected pagination: %+v", resp.Pagination)
	}
}

func TestTaskHandler_List_InvalidStatus(t *testing.T) {
	e := echo.New()
	stub := &stubTaskService{
		getTasksFn: func(ctx context.Context, filter ports.ListTasksFilter, userID string) (*ports.ListTasksResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := newTaskContext(e, http.MethodGet, "/v1/tasks?status=archived", "", "user-1")
	err := handler.List(c)
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestTaskHandler_List_MissingUser(t *testing.T) {
	e := echo.New()
	stub := &stubTaskService{
		getTasksFn: func(ctx context.Context, filter ports.ListTasksFilter, userID string) (*ports.ListTasksResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := newTaskContext(e, http.MethodGet, "/v1/tasks", "", "")
	err := handler.List(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestTaskHandler_Get_Success(t *testing.T) {
	e := echo.New()
	stub := &stubTaskService{
		getTaskByIDFn: func(ctx context.Context, id, userID string) (*domain.Task, error) {
			if id != "task-9" || userID != "user-1" {
				t.Fatalf("unexpected args: %s %s", id, userID)
			}
			return &domain.Task{ID: id, Title: "laundry", Status: domain.StatusInProgress, UserID: userID}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := newTaskContext(e, http.MethodGet, "/v1/tasks/task-9", "", "user-1")
	c.SetParamNames("id")
	c.SetParamValues("task-9")

	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp taskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.ID != "task-9" || resp.Status != string(domain.StatusInProgress) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestTaskHandler_Get_NotFound(t *testing.T) {
	e := echo.New()
	stub := &stubTaskService{
		getTaskByIDFn: func(ctx context.Context, id, userID string) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := newTaskContext(e, http.MethodGet, "/v1/tasks/ghost", "", "user-1")
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	err := handler.Get(c)
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskHandler_Create_Success(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubTaskService{
		createTaskFn: func(ctx context.Context, input ports.CreateTaskInput, userID string) (*domain.Task, error) {
			if input.Title != "buy milk" || userID != "user-1" {
				t.Fatalf("unexpected args: %+v %s", input, userID)
			}
			return &domain.Task{ID: "task-1", Title: input.Title, Description: input.Description, Status: domain.StatusOpen, UserID: userID}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := newTaskContext(e, http.MethodPost, "/v1/tasks", `{"title":"buy milk","description":"2 liters"}`, "user-1")
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp taskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != string(domain.StatusOpen) {
		t.Fatalf("new tasks must start OPEN, got %s", resp.Status)
	}
}

func TestTaskHandler_Create_MissingTitle(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubTaskService{
		createTaskFn: func(ctx context.Context, input ports.CreateTaskInput, userID string) (*domain.Task, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := newTaskContext(e, http.MethodPost, "/v1/tasks", `{"description":"no title"}`, "user-1")
	err := handler.Create(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTaskHandler_UpdateStatus_NormalizesInput(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubTaskService{
		updateStatusFn: func(ctx context.Context, id string, status domain.TaskStatus, userID string) (*domain.Task, error) {
			if status != domain.StatusDone {
				t.Fatalf("expected DONE after normalization, got %s", status)
			}
			return &domain.Task{ID: id, Title: "laundry", Status: status, UserID: userID}, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := newTaskContext(e, http.MethodPatch, "/v1/tasks/task-1/status", `{"status":"done"}`, "user-1")
	c.SetParamNames("id")
	c.SetParamValues("task-1")

	if err := handler.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTaskHandler_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubTaskService{
		updateStatusFn: func(ctx context.Context, id string, status domain.TaskStatus, userID string) (*domain.Task, error) {
			t.Fatalf("admission must run before the service is called")
			return nil, nil
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := newTaskContext(e, http.MethodPatch, "/v1/tasks/task-1/status", `{"status":"cancelled"}`, "user-1")
	c.SetParamNames("id")
	c.SetParamValues("task-1")

	err := handler.UpdateStatus(c)
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if !strings.Contains(err.Error(), "CANCELLED") {
		t.Fatalf("rejection should carry the normalized literal, got %q", err.Error())
	}
}

func TestTaskHandler_UpdateStatus_NotFound(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	stub := &stubTaskService{
		updateStatusFn: func(ctx context.Context, id string, status domain.TaskStatus, userID string) (*domain.Task, error) {
			return nil, domain.ErrTaskNotFound
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := newTaskContext(e, http.MethodPatch, "/v1/tasks/ghost/status", `{"status":"OPEN"}`, "user-1")
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	err := handler.UpdateStatus(c)
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTaskHandler_Delete_Success(t *testing.T) {
	e := echo.New()
	stub := &stubTaskService{
		deleteTaskFn: func(ctx context.Context, id, userID string) error {
			if id != "task-1" || userID != "user-1" {
				t.Fatalf("unexpected args: %s %s", id, userID)
			}
			return nil
		},
	}
	handler := NewTaskHandler(stub)

	c, rec := newTaskContext(e, http.MethodDelete, "/v1/tasks/task-1", "", "user-1")
	c.SetParamNames("id")
	c.SetParamValues("task-1")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestTaskHandler_Delete_NotFound(t *testing.T) {
	e := echo.New()
	stub := &stubTaskService{
		deleteTaskFn: func(ctx context.Context, id, userID string) error {
			return domain.ErrTaskNotFound
		},
	}
	handler := NewTaskHandler(stub)

	c, _ := newTaskContext(e, http.MethodDelete, "/v1/tasks/ghost", "", "user-1")
	c.SetParamNames("id")
	c.SetParamValues("ghost")

	err := handler.Delete(c)
	if !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}
