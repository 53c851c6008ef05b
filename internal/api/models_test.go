package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/api/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		request RegisterRequest
		wantMsg string
	}{
		{
			name:    "valid",
			request: RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret"},
		},
		{
			name:    "missing name",
			request: RegisterRequest{Email: "ada@example.com", Password: "secret"},
			wantMsg: "name is required",
		},
		{
			name:    "bad email",
			request: RegisterRequest{Name: "Ada", Email: "ada", Password: "secret"},
			wantMsg: "email must be a valid email address",
		},
		{
			name:    "short password",
			request: RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "12345"},
			wantMsg: "password must be at least 6 characters",
		},
		{
			name:    "long password",
			request: RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: strings.Repeat("p", 73)},
			wantMsg: "password must be at most 72 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := shared.ValidateRequest(tt.request)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, shared.ValidationMessage(err))
		})
	}
}

func TestUpdateProfileRequestValidation(t *testing.T) {
	assert.NoError(t, shared.ValidateRequest(UpdateProfileRequest{}), "empty update is allowed")

	short := "A"
	assert.Error(t, shared.ValidateRequest(UpdateProfileRequest{Name: &short}))

	bad := "not-an-email"
	assert.Error(t, shared.ValidateRequest(UpdateProfileRequest{Email: &bad}))
}

func TestUpdateTaskRequestAssignee(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		body      string
		wantSet   bool
		wantValue *uuid.UUID
		wantErr   bool
	}{
		{name: "absent", body: `{"title":"x"}`},
		{name: "explicit null", body: `{"assignedToId":null}`, wantSet: true},
		{name: "uuid", body: `{"assignedToId":"` + id.String() + `"}`, wantSet: true, wantValue: &id},
		{name: "not a uuid", body: `{"assignedToId":"bob"}`, wantErr: true},
		{name: "not a string", body: `{"assignedToId":42}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateTaskRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			input := req.toInput()
			assert.Equal(t, tt.wantSet, input.AssignedToID.Set)
			assert.Equal(t, tt.wantValue, input.AssignedToID.ID)
		})
	}
}

func TestCreateTaskRequestDecoding(t *testing.T) {
	body := `{
		"title": "Ship it",
		"description": "Tag and release",
		"dueDate": "2026-05-01T17:00:00Z",
		"priority": "High"
	}`

	var req CreateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.NoError(t, shared.ValidateRequest(req))

	input := req.toInput()
	assert.Equal(t, "Ship it", input.Title)
	assert.Equal(t, 2026, input.DueDate.Year())
	assert.Equal(t, "High", string(input.Priority))
	assert.Empty(t, input.Status, "status default is applied by the domain")
	assert.Nil(t, input.AssignedToID)

	long := CreateTaskRequest{Title: strings.Repeat("t", 101), Description: "d"}
	err := shared.ValidateRequest(long)
	require.Error(t, err)
	assert.Equal(t, "title must be at most 100 characters", shared.ValidationMessage(err))
}
