package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTaskTitleLength is the longest title a task may carry, in characters.
const MaxTaskTitleLength = 100

// Priority is the urgency of a task.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Status is the workflow state of a task.
type Status string

// Task statuses.
const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusReview     Status = "Review"
	StatusCompleted  Status = "Completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusReview, StatusCompleted:
		return true
	}
	return false
}

// Task validation errors.
var (
	ErrEmptyTaskID          = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle       = errors.New("title cannot be empty")
	ErrTaskTitleTooLong     = errors.New("title cannot exceed 100 characters")
	ErrEmptyTaskDescription = errors.New("description cannot be empty")
	ErrEmptyDueDate         = errors.New("due date is required")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrEmptyCreatorID       = errors.New("creator ID cannot be empty")
	ErrInvalidAssigneeID    = errors.New("assignee ID cannot be the nil UUID")
)

// Task is a unit of work created by one user and optionally assigned to another.
// Creator and AssignedTo are populated when the task is read back with its
// joined users; they are the snapshot delivered to live connections.
type Task struct {
	ID           uuid.UUID    `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	DueDate      time.Time    `json:"dueDate"`
	Priority     Priority     `json:"priority"`
	Status       Status       `json:"status"`
	CreatorID    uuid.UUID    `json:"creatorId"`
	AssignedToID *uuid.UUID   `json:"assignedToId"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Creator      *UserSummary `json:"creator"`
	AssignedTo   *UserSummary `json:"assignedTo"`
}

// NewTask creates a new Task owned by creatorID. Empty priority and status
// fall back to Medium and To Do.
func NewTask(
	creatorID uuid.UUID,
	title, description string,
	dueDate time.Time,
	priority Priority,
	status Status,
	assignedToID *uuid.UUID,
) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	if status == "" {
		status = StatusToDo
	}

	now := time.Now().UTC()
	task := &Task{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(title),
		Description:  strings.TrimSpace(description),
		DueDate:      dueDate.UTC(),
		Priority:     priority,
		Status:       status,
		CreatorID:    creatorID,
		AssignedToID: assignedToID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if utf8.RuneCountInString(t.Title) > MaxTaskTitleLength {
		return ErrTaskTitleTooLong
	}

	if t.Description == "" {
		return ErrEmptyTaskDescription
	}

	if t.DueDate.IsZero() {
		return ErrEmptyDueDate
	}

	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}

	if t.CreatorID == uuid.Nil {
		return ErrEmptyCreatorID
	}
	if t.AssignedToID != nil && *t.AssignedToID == uuid.Nil {
		return ErrInvalidAssigneeID
	}

	return nil
}

// IsOverdue reports whether the task is past its due date and not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.Status != StatusCompleted && t.DueDate.Before(now)
}

// AssigneeID returns the assignee and whether one is set.
func (t *Task) AssigneeID() (uuid.UUID, bool) {
	if t.AssignedToID == nil {
		return uuid.Nil, false
	}
	return *t.AssignedToID, true
}

// Sort fields accepted by TaskQuery.
const (
	SortByDueDate   = "dueDate"
	SortByCreatedAt = "createdAt"
	SortByPriority  = "priority"
)

// Sort orders accepted by TaskQuery.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

var (
	ErrInvalidSortField = errors.New("invalid sort field")
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// TaskQuery filters and orders task listings. Zero values mean "no filter".
type TaskQuery struct {
	Status       Status
	Priority     Priority
	CreatorID    *uuid.UUID
	AssignedToID *uuid.UUID
	SortBy       string
	SortOrder    string
}

// Normalize fills in the default ordering and validates the query.
// Without a sort field the listing is newest first; a sort field without an
// order sorts ascending.
func (q TaskQuery) Normalize() (TaskQuery, error) {
	if q.Status != "" && !q.Status.Valid() {
		return q, ErrInvalidStatus
	}
	if q.Priority != "" && !q.Priority.Valid() {
		return q, ErrInvalidPriority
	}

	switch q.SortBy {
	case "":
		q.SortBy = SortByCreatedAt
		if q.SortOrder == "" {
			q.SortOrder = SortDesc
		}
	case SortByDueDate, SortByCreatedAt, SortByPriority:
	default:
		return q, ErrInvalidSortField
	}

	switch strings.ToLower(q.SortOrder) {
	case "":
		q.SortOrder = SortAsc
	case SortAsc:
		q.SortOrder = SortAsc
	case SortDesc:
		q.SortOrder = SortDesc
	default:
		return q, ErrInvalidSortOrder
	}

	return q, nil
}
