package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/events"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// CreateTaskInput carries the fields of a new task.
type CreateTaskInput struct {
	Title        string
	Description  string
	DueDate      time.Time
	Priority     domain.Priority
	Status       domain.Status
	AssignedToID *uuid.UUID
}

// OptionalUUID is a tri-state assignee: not Set leaves the value unchanged,
// Set with a nil ID clears it, Set with an ID replaces it.
type OptionalUUID struct {
	Set bool
	ID  *uuid.UUID
}

// UpdateTaskInput carries a partial task update. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	Priority     *domain.Priority
	Status       *domain.Status
	AssignedToID OptionalUUID
}

// TaskService provides task operations. Every successful mutation is
// reported to the notifier after its transaction commits.
type TaskService interface {
	CreateTask(ctx context.Context, creatorID uuid.UUID, input CreateTaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, taskID, actorID uuid.UUID, input UpdateTaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID, actorID uuid.UUID) error

	GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error)
	ListTasks(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error)
	ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Task, error)
}

type taskServiceImpl struct {
	taskStore store.TaskStore
	userStore store.UserStore
	db        *sql.DB
	notifier  events.Notifier
	logger    *slog.Logger
}

// NewTaskService creates a TaskService. A nil notifier discards events.
func NewTaskService(
	taskStore store.TaskStore,
	userStore store.UserStore,
	db *sql.DB,
	notifier events.Notifier,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if userStore == nil {
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	}
	if db == nil {
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	}
	if notifier == nil {
		notifier = events.NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		userStore: userStore,
		db:        db,
		notifier:  notifier,
		logger:    logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask validates the assignee, stores the task, and announces it.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	creatorID uuid.UUID,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if input.AssignedToID != nil {
		if err := requireUser(ctx, s.userStore, *input.AssignedToID); err != nil {
			return nil, err
		}
	}

	task, err := domain.NewTask(creatorID, input.Title, input.Description,
		input.DueDate, input.Priority, input.Status, input.AssignedToID)
	if err != nil {
		log.Debug("invalid task", slog.String("error", err.Error()))
		return nil, err
	}

	var created *domain.Task
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)
		if err := txTasks.Create(ctx, task); err != nil {
			return err
		}
		created, err = txTasks.GetByID(ctx, task.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrInvalidEntity) && input.AssignedToID != nil {
			// The assignee was deleted between the check and the insert.
			return nil, ErrAssigneeNotFound
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("creator_id", creatorID.String()))
		return nil, NewServiceError("task", "create", err)
	}

	log.Info("task created",
		slog.String("task_id", created.ID.String()),
		slog.String("creator_id", creatorID.String()))

	evs := []events.TaskEvent{events.TaskCreated(created)}
	if assignee, ok := created.AssigneeID(); ok {
		evs = append(evs, events.TaskAssigned(assignee, created))
	}
	s.notifier.Notify(ctx, evs...)

	return created, nil
}

// UpdateTask applies a partial update. An assignment notification is sent
// only when the task gains an assignee different from the previous one. The
// previous assignee is read under a row lock so concurrent updates agree on it.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	taskID, actorID uuid.UUID,
	input UpdateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("task_id", taskID.String()),
		slog.String("actor_id", actorID.String()))

	var (
		previous *uuid.UUID
		updated  *domain.Task
	)
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		current, err := txTasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		previous = current.AssignedToID

		if input.AssignedToID.Set && input.AssignedToID.ID != nil {
			if err := requireUser(ctx, s.userStore.WithTx(tx), *input.AssignedToID.ID); err != nil {
				return err
			}
		}

		applyUpdate(current, input)
		if err := current.Validate(); err != nil {
			return err
		}

		if err := txTasks.Update(ctx, current); err != nil {
			return err
		}
		updated, err = txTasks.GetByID(ctx, taskID)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTaskNotFound):
			return nil, ErrTaskNotFound
		case errors.Is(err, ErrAssigneeNotFound):
			return nil, ErrAssigneeNotFound
		case errors.Is(err, store.ErrInvalidEntity) && input.AssignedToID.ID != nil:
			return nil, ErrAssigneeNotFound
		case domain.IsValidationError(err):
			log.Debug("invalid task update", slog.String("error", err.Error()))
			return nil, err
		}
		var serviceErr *ServiceError
		if errors.As(err, &serviceErr) {
			return nil, err
		}
		log.Error("failed to update task", slog.String("error", err.Error()))
		return nil, NewServiceError("task", "update", err)
	}

	log.Info("task updated")

	evs := []events.TaskEvent{events.TaskUpdated(updated)}
	if assignee, ok := updated.AssigneeID(); ok && assigneeChanged(previous, assignee) {
		evs = append(evs, events.TaskAssigned(assignee, updated))
	}
	s.notifier.Notify(ctx, evs...)

	return updated, nil
}

// DeleteTask removes a task. Only its creator may delete it.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, taskID, actorID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("task_id", taskID.String()),
		slog.String("actor_id", actorID.String()))

	existing, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if existing.CreatorID != actorID {
		log.Debug("delete refused for non-creator")
		return ErrNotTaskCreator
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.taskStore.WithTx(tx).Delete(ctx, taskID)
	})
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		log.Error("failed to delete task", slog.String("error", err.Error()))
		return NewServiceError("task", "delete", err)
	}

	log.Info("task deleted")
	s.notifier.Notify(ctx, events.TaskDeleted(taskID))

	return nil
}

// GetTask retrieves a task with its creator and assignee.
func (s *taskServiceImpl) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve task",
			slog.String("error", err.Error()),
			slog.String("task_id", taskID.String()))
		return nil, NewServiceError("task", "get", err)
	}
	return task, nil
}

// ListTasks returns the tasks matching query after normalizing it.
func (s *taskServiceImpl) ListTasks(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error) {
	query, err := query.Normalize()
	if err != nil {
		return nil, err
	}
	return s.list(ctx, "list", query)
}

// ListCreatedBy returns the tasks userID created, newest first.
func (s *taskServiceImpl) ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query, _ := domain.TaskQuery{CreatorID: &userID}.Normalize()
	return s.list(ctx, "list_created", query)
}

// ListAssignedTo returns the tasks assigned to userID, newest first.
func (s *taskServiceImpl) ListAssignedTo(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	query, _ := domain.TaskQuery{AssignedToID: &userID}.Normalize()
	return s.list(ctx, "list_assigned", query)
}

// ListOverdue returns the unfinished tasks userID created or is assigned
// that were due before now.
func (s *taskServiceImpl) ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Task, error) {
	tasks, err := s.taskStore.ListOverdue(ctx, userID, now)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list overdue tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("task", "list_overdue", err)
	}
	return tasks, nil
}

func (s *taskServiceImpl) list(ctx context.Context, op string, query domain.TaskQuery) ([]*domain.Task, error) {
	tasks, err := s.taskStore.List(ctx, query)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("operation", op))
		return nil, NewServiceError("task", op, err)
	}
	return tasks, nil
}

func requireUser(ctx context.Context, users store.UserStore, userID uuid.UUID) error {
	if _, err := users.GetByID(ctx, userID); err != nil {
		if store.IsNotFoundError(err) {
			return ErrAssigneeNotFound
		}
		return NewServiceError("task", "lookup_assignee", err)
	}
	return nil
}

func applyUpdate(task *domain.Task, input UpdateTaskInput) {
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate.UTC()
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.AssignedToID.Set {
		task.AssignedToID = input.AssignedToID.ID
	}
}

func assigneeChanged(previous *uuid.UUID, current uuid.UUID) bool {
	return previous == nil || *previous != current
}
