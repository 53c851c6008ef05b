package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock of service.UserService for handler tests.
type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

func (m *MockUserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	args := m.Called(ctx, name, email, password)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUserService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	input service.UpdateProfileInput,
) (*domain.User, error) {
	args := m.Called(ctx, userID, input)
	return userArg(args, 0), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]*domain.User)
	return users, args.Error(1)
}

// MockTaskService is a mock of service.TaskService for handler tests.
type MockTaskService struct {
	mock.Mock
}

var _ service.TaskService = (*MockTaskService)(nil)

func (m *MockTaskService) CreateTask(
	ctx context.Context,
	creatorID uuid.UUID,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, creatorID, input)
	return taskArg(args, 0), args.Error(1)
}

func (m *MockTaskService) UpdateTask(
	ctx context.Context,
	taskID, actorID uuid.UUID,
	input service.UpdateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, taskID, actorID, input)
	return taskArg(args, 0), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, taskID, actorID uuid.UUID) error {
	args := m.Called(ctx, taskID, actorID)
	return args.Error(0)
}

func (m *MockTaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, taskID)
	return taskArg(args, 0), args.Error(1)
}

func (m *MockTaskService) ListTasks(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error) {
	args := m.Called(ctx, query)
	return tasksArg(args, 0), args.Error(1)
}

func (m *MockTaskService) ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, userID)
	return tasksArg(args, 0), args.Error(1)
}

func (m *MockTaskService) ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, userID)
	return tasksArg(args, 0), args.Error(1)
}

func (m *MockTaskService) ListOverdue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.Task, error) {
	args := m.Called(ctx, userID, now)
	return tasksArg(args, 0), args.Error(1)
}

func userArg(args mock.Arguments, i int) *domain.User {
	user, _ := args.Get(i).(*domain.User)
	return user
}

func taskArg(args mock.Arguments, i int) *domain.Task {
	task, _ := args.Get(i).(*domain.Task)
	return task
}

func tasksArg(args mock.Arguments, i int) []*domain.Task {
	tasks, _ := args.Get(i).([]*domain.Task)
	return tasks
}
