package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/platform/logger"
	"github.com/phrazzld/taskpulse-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// selectTaskJoined reads a task together with its creator and optional assignee.
const selectTaskJoined = `
	SELECT t.id, t.title, t.description, t.due_date, t.priority, t.status,
		t.creator_id, t.assigned_to_id, t.created_at, t.updated_at,
		c.name, c.email,
		a.name, a.email
	FROM tasks t
	JOIN users c ON c.id = t.creator_id
	LEFT JOIN users a ON a.id = t.assigned_to_id
`

// sortColumns maps the public sort fields to columns. Priority sorts by the
// enum declaration order, Low first.
var sortColumns = map[string]string{
	domain.SortByDueDate:   "t.due_date",
	domain.SortByCreatedAt: "t.created_at",
	domain.SortByPriority:  "t.priority",
}

// Create implements store.TaskStore.Create
// Returns store.ErrInvalidEntity if the creator or assignee does not exist.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, due_date, priority, status,
			creator_id, assigned_to_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		string(task.Priority),
		string(task.Status),
		task.CreatorID,
		nullUUID(task.AssignedToID),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("error", err.Error()),
				slog.String("task_id", task.ID.String()),
				slog.String("creator_id", task.CreatorID.String()))
			return errorf(store.ErrInvalidEntity, "creator or assignee of task %s not found", task.ID)
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "create", "failed to create task", MapError(err))
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("creator_id", task.CreatorID.String()))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.getByID(ctx, "get", selectTaskJoined+` WHERE t.id = $1`, id)
}

// GetByIDForUpdate implements store.TaskStore.GetByIDForUpdate
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	// Only the task row is locked; the joined users are read as of now.
	return s.getByID(ctx, "get_for_update", selectTaskJoined+` WHERE t.id = $1 FOR UPDATE OF t`, id)
}

func (s *PostgresTaskStore) getByID(ctx context.Context, op, query string, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", op, "failed to get task", MapError(err))
	}

	return task, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task.UpdatedAt = time.Now().UTC()
	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, priority = $4,
			status = $5, assigned_to_id = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.DueDate,
		string(task.Priority),
		string(task.Status),
		nullUUID(task.AssignedToID),
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return errorf(store.ErrInvalidEntity, "assignee of task %s not found", task.ID)
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for update", slog.String("task_id", task.ID.String()))
		return err
	}

	log.Info("task updated successfully", slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return err
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, query domain.TaskQuery) ([]*domain.Task, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if query.Status != "" {
		add("t.status = $%d", string(query.Status))
	}
	if query.Priority != "" {
		add("t.priority = $%d", string(query.Priority))
	}
	if query.CreatorID != nil {
		add("t.creator_id = $%d", *query.CreatorID)
	}
	if query.AssignedToID != nil {
		add("t.assigned_to_id = $%d", *query.AssignedToID)
	}

	column, ok := sortColumns[query.SortBy]
	if !ok {
		column = "t.created_at"
	}
	direction := "ASC"
	if query.SortOrder == domain.SortDesc {
		direction = "DESC"
	}

	var sb strings.Builder
	sb.WriteString(selectTaskJoined)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, t.id ASC", column, direction)

	return s.queryTasks(ctx, "list", sb.String(), args...)
}

// ListOverdue implements store.TaskStore.ListOverdue
func (s *PostgresTaskStore) ListOverdue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.Task, error) {
	query := selectTaskJoined + `
		WHERE (t.creator_id = $1 OR t.assigned_to_id = $1)
			AND t.due_date < $2
			AND t.status <> $3
		ORDER BY t.due_date ASC, t.id ASC
	`
	return s.queryTasks(ctx, "list_overdue", query, userID, now.UTC(), string(domain.StatusCompleted))
}

// WithTx implements store.TaskStore.WithTx
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

func (s *PostgresTaskStore) queryTasks(ctx context.Context, op, query string, args ...any) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("error", err.Error()),
			slog.String("operation", op))
		return nil, store.NewStoreError("task", op, "failed to query tasks", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", op, "failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", op, "failed to iterate tasks", err)
	}

	log.Debug("tasks queried", slog.String("operation", op), slog.Int("count", len(tasks)))
	return tasks, nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task          domain.Task
		priority      string
		status        string
		assignedTo    uuid.NullUUID
		creatorName   string
		creatorEmail  string
		assigneeName  sql.NullString
		assigneeEmail sql.NullString
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.DueDate,
		&priority,
		&status,
		&task.CreatorID,
		&assignedTo,
		&task.CreatedAt,
		&task.UpdatedAt,
		&creatorName,
		&creatorEmail,
		&assigneeName,
		&assigneeEmail,
	); err != nil {
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)
	task.Creator = &domain.UserSummary{ID: task.CreatorID, Name: creatorName, Email: creatorEmail}

	if assignedTo.Valid {
		id := assignedTo.UUID
		task.AssignedToID = &id
		task.AssignedTo = &domain.UserSummary{
			ID:    id,
			Name:  assigneeName.String,
			Email: assigneeEmail.String,
		}
	}

	return &task, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
