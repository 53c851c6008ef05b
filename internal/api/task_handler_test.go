package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/mocks"
	"github.com/phrazzld/taskpulse-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// taskRouter mounts the handler the way the server does, minus auth.
func taskRouter(h *TaskHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", h.CreateTask)
		r.Get("/", h.ListTasks)
		r.Get("/my-created", h.ListMyCreated)
		r.Get("/my-assigned", h.ListMyAssigned)
		r.Get("/my-overdue", h.ListMyOverdue)
		r.Get("/{id}", h.GetTask)
		r.Put("/{id}", h.UpdateTask)
		r.Delete("/{id}", h.DeleteTask)
	})
	return r
}

func sampleTask(t *testing.T, creatorID uuid.UUID) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(creatorID, "Write docs", "Explain the API",
		time.Now().Add(48*time.Hour), domain.PriorityHigh, "", nil)
	require.NoError(t, err)
	return task
}

func serveTask(
	t *testing.T,
	tasks *mocks.MockTaskService,
	userID uuid.UUID,
	req *http.Request,
) *httptest.ResponseRecorder {
	t.Helper()
	h := NewTaskHandler(tasks, nil)
	h.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	rr := httptest.NewRecorder()
	if userID != uuid.Nil {
		req = authenticated(req, userID, "tok")
	}
	taskRouter(h).ServeHTTP(rr, req)
	return rr
}

func TestCreateTaskHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("created", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		task := sampleTask(t, userID)
		tasks.On("CreateTask", mock.Anything, userID, mock.MatchedBy(func(in service.CreateTaskInput) bool {
			return in.Title == "Write docs" && in.DueDate.Equal(due) && in.Priority == domain.PriorityHigh
		})).Return(task, nil)

		rr := serveTask(t, tasks, userID, jsonRequest(t, http.MethodPost, "/tasks", map[string]interface{}{
			"title":       "Write docs",
			"description": "Explain the API",
			"dueDate":     due.Format(time.RFC3339),
			"priority":    "High",
		}))

		require.Equal(t, http.StatusCreated, rr.Code)
		var got domain.Task
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Equal(t, task.ID, got.ID)
		tasks.AssertExpectations(t)
	})

	t.Run("missing title", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		rr := serveTask(t, tasks, userID, jsonRequest(t, http.MethodPost, "/tasks", map[string]interface{}{
			"description": "Explain the API",
			"dueDate":     due.Format(time.RFC3339),
		}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "title is required", decodeError(t, rr))
		tasks.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		tasks.On("CreateTask", mock.Anything, userID, mock.Anything).Return(nil, service.ErrAssigneeNotFound)

		rr := serveTask(t, tasks, userID, jsonRequest(t, http.MethodPost, "/tasks", map[string]interface{}{
			"title":        "Write docs",
			"description":  "Explain the API",
			"dueDate":      due.Format(time.RFC3339),
			"assignedToId": uuid.NewString(),
		}))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Assigned user not found", decodeError(t, rr))
	})

	t.Run("domain validation", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		tasks.On("CreateTask", mock.Anything, userID, mock.Anything).
			Return(nil, domain.NewValidationError("status", "must be one of To Do, In Progress, Review, Completed",
				domain.ErrInvalidStatus))

		rr := serveTask(t, tasks, userID, jsonRequest(t, http.MethodPost, "/tasks", map[string]interface{}{
			"title":       "Write docs",
			"description": "Explain the API",
			"dueDate":     due.Format(time.RFC3339),
			"status":      "Blocked",
		}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		rr := serveTask(t, tasks, uuid.Nil, jsonRequest(t, http.MethodPost, "/tasks", map[string]interface{}{}))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestListTasksHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("passes filters through", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		want := domain.TaskQuery{
			Status:    domain.StatusInProgress,
			Priority:  domain.PriorityUrgent,
			SortBy:    domain.SortByDueDate,
			SortOrder: domain.SortDesc,
		}
		tasks.On("ListTasks", mock.Anything, want).Return([]*domain.Task{sampleTask(t, userID)}, nil)

		rr := serveTask(t, tasks, userID, httptest.NewRequest(http.MethodGet,
			"/tasks?status=In+Progress&priority=Urgent&sortBy=dueDate&sortOrder=desc", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var got []domain.Task
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Len(t, got, 1)
		tasks.AssertExpectations(t)
	})

	t.Run("empty list encodes as array", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		tasks.On("ListTasks", mock.Anything, domain.TaskQuery{}).Return(nil, nil)

		rr := serveTask(t, tasks, userID, httptest.NewRequest(http.MethodGet, "/tasks", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("invalid sort field", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		tasks.On("ListTasks", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidSortField)

		rr := serveTask(t, tasks, userID, httptest.NewRequest(http.MethodGet, "/tasks?sortBy=title", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid sort field", decodeError(t, rr))
	})
}

func TestMyTaskListsHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		path   string
		method string
		args   []interface{}
	}{
		{"/tasks/my-created", "ListCreatedBy", []interface{}{mock.Anything, userID}},
		{"/tasks/my-assigned", "ListAssignedTo", []interface{}{mock.Anything, userID}},
		{"/tasks/my-overdue", "ListOverdue", []interface{}{mock.Anything, userID, now}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			tasks := new(mocks.MockTaskService)
			tasks.On(tt.method, tt.args...).Return([]*domain.Task{sampleTask(t, userID)}, nil)

			rr := serveTask(t, tasks, userID, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, rr.Code)
			tasks.AssertExpectations(t)
		})
	}
}

func TestGetTaskHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		task := sampleTask(t, userID)
		tasks.On("GetTask", mock.Anything, task.ID).Return(task, nil)

		rr := serveTask(t, tasks, userID, httptest.NewRequest(http.MethodGet, "/tasks/"+task.ID.String(), nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"title":"Write docs"`)
	})

	t.Run("not found", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		id := uuid.New()
		tasks.On("GetTask", mock.Anything, id).Return(nil, service.ErrTaskNotFound)

		rr := serveTask(t, tasks, userID, httptest.NewRequest(http.MethodGet, "/tasks/"+id.String(), nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "Task not found", decodeError(t, rr))
	})

	t.Run("malformed id", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		rr := serveTask(t, tasks, userID, httptest.NewRequest(http.MethodGet, "/tasks/abc", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateTaskHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	tests := []struct {
		name  string
		body  string
		check func(in service.UpdateTaskInput) bool
	}{
		{
			name: "status only",
			body: `{"status":"Completed"}`,
			check: func(in service.UpdateTaskInput) bool {
				return in.Status != nil && *in.Status == domain.StatusCompleted &&
					in.Title == nil && !in.AssignedToID.Set
			},
		},
		{
			name: "explicit unassign",
			body: `{"assignedToId":null}`,
			check: func(in service.UpdateTaskInput) bool {
				return in.AssignedToID.Set && in.AssignedToID.ID == nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := new(mocks.MockTaskService)
			task := sampleTask(t, userID)
			tasks.On("UpdateTask", mock.Anything, task.ID, userID, mock.MatchedBy(tt.check)).Return(task, nil)

			req := httptest.NewRequest(http.MethodPut, "/tasks/"+task.ID.String(), strings.NewReader(tt.body))
			rr := serveTask(t, tasks, userID, req)

			require.Equal(t, http.StatusOK, rr.Code)
			tasks.AssertExpectations(t)
		})
	}

	t.Run("bad assignee id", func(t *testing.T) {
		tasks := new(mocks.MockTaskService)
		id := uuid.New()
		req := httptest.NewRequest(http.MethodPut, "/tasks/"+id.String(), strings.NewReader(`{"assignedToId":"nope"}`))

		rr := serveTask(t, tasks, userID, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request format", decodeError(t, rr))
	})
}

func TestDeleteTaskHandler(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	taskID := uuid.New()

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"deleted", nil, http.StatusOK, ""},
		{"not creator", service.ErrNotTaskCreator, http.StatusForbidden, "Only the creator can delete this task"},
		{"not found", service.ErrTaskNotFound, http.StatusNotFound, "Task not found"},
		{"store failure", fmt.Errorf("boom"), http.StatusInternalServerError, "Failed to delete task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := new(mocks.MockTaskService)
			tasks.On("DeleteTask", mock.Anything, taskID, userID).Return(tt.err)

			rr := serveTask(t, tasks, userID, httptest.NewRequest(http.MethodDelete, "/tasks/"+taskID.String(), nil))

			require.Equal(t, tt.status, rr.Code)
			if tt.err == nil {
				assert.JSONEq(t, `{"message":"Task deleted successfully"}`, rr.Body.String())
				return
			}
			assert.Equal(t, tt.message, decodeError(t, rr))
		})
	}
}
