package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
// Read methods return tasks with Creator and AssignedTo populated.
type TaskStore interface {
	// Create saves a new task.
	// Returns ErrInvalidEntity if the creator or assignee does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with its joined users.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// GetByIDForUpdate is GetByID with the task row locked until the
	// surrounding transaction ends. Only meaningful on a store from WithTx.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update persists every mutable field of the task and bumps UpdatedAt.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns tasks matching the query. The query must already be normalized.
	List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error)

	// ListOverdue returns tasks created by or assigned to userID whose due date
	// is before now and whose status is not Completed, earliest due first.
	ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
