package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
	"github.com/phrazzld/taskpulse-api/internal/service"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the payload for the profile update endpoint.
// Omitted fields are left unchanged.
type UpdateProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=2,max=50"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	User *domain.UserSummary `json:"user"`

	// Token is also set as an HTTP-only cookie.
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expiresAt"`
}

// CreateTaskRequest defines the payload for creating a task.
// Priority and status default to Medium and To Do.
type CreateTaskRequest struct {
	Title        string          `json:"title"        validate:"required,max=100"`
	Description  string          `json:"description"  validate:"required"`
	DueDate      time.Time       `json:"dueDate"`
	Priority     domain.Priority `json:"priority"`
	Status       domain.Status   `json:"status"`
	AssignedToID *uuid.UUID      `json:"assignedToId"`
}

func (r CreateTaskRequest) toInput() service.CreateTaskInput {
	return service.CreateTaskInput{
		Title:        r.Title,
		Description:  r.Description,
		DueDate:      r.DueDate,
		Priority:     r.Priority,
		Status:       r.Status,
		AssignedToID: r.AssignedToID,
	}
}

// UpdateTaskRequest defines the payload for a partial task update.
type UpdateTaskRequest struct {
	Title        *string          `json:"title"        validate:"omitempty,min=1,max=100"`
	Description  *string          `json:"description"  validate:"omitempty,min=1"`
	DueDate      *time.Time       `json:"dueDate"`
	Priority     *domain.Priority `json:"priority"`
	Status       *domain.Status   `json:"status"`
	AssignedToID NullableUUID     `json:"assignedToId"`
}

func (r UpdateTaskRequest) toInput() service.UpdateTaskInput {
	return service.UpdateTaskInput{
		Title:        r.Title,
		Description:  r.Description,
		DueDate:      r.DueDate,
		Priority:     r.Priority,
		Status:       r.Status,
		AssignedToID: service.OptionalUUID{Set: r.AssignedToID.Set, ID: r.AssignedToID.Value},
	}
}

// NullableUUID distinguishes an absent JSON field (Set is false) from an
// explicit null (Set is true, Value is nil).
type NullableUUID struct {
	Set   bool
	Value *uuid.UUID
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("assignedToId must be a string or null: %w", err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("assignedToId is not a valid UUID: %w", err)
	}
	n.Value = &id
	return nil
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status      string `json:"status"`
	Connections int    `json:"connections"`
}
