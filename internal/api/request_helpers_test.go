package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpulse-api/internal/api/shared"
	"github.com/phrazzld/taskpulse-api/internal/domain"
)

func TestGetUserIDFromContext(t *testing.T) {
	tests := []struct {
		name       string
		ctx        context.Context
		expectedOK bool
	}{
		{
			name:       "valid user ID in context",
			ctx:        shared.WithUserID(context.Background(), uuid.New(), "tok"),
			expectedOK: true,
		},
		{
			name:       "missing user ID in context",
			ctx:        context.Background(),
			expectedOK: false,
		},
		{
			name:       "nil user ID in context",
			ctx:        context.WithValue(context.Background(), shared.UserIDContextKey, uuid.Nil),
			expectedOK: false,
		},
		{
			name:       "wrong type in context",
			ctx:        context.WithValue(context.Background(), shared.UserIDContextKey, "not-a-uuid"),
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(tt.ctx)

			userID, ok := getUserIDFromContext(req)

			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.NotEqual(t, uuid.Nil, userID)
			} else {
				assert.Equal(t, uuid.Nil, userID)
			}
		})
	}
}

// routeParam runs req through a chi router so URL params are populated,
// then calls fn with the routed request.
func routeParam(t *testing.T, pattern, path string, fn func(w http.ResponseWriter, r *http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	r.Get(pattern, fn)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func TestGetPathUUID(t *testing.T) {
	validUUID := uuid.New()

	t.Run("valid UUID parameter", func(t *testing.T) {
		routeParam(t, "/tasks/{id}", "/tasks/"+validUUID.String(), func(w http.ResponseWriter, r *http.Request) {
			id, err := getPathUUID(r, "id")
			require.NoError(t, err)
			assert.Equal(t, validUUID, id)
		})
	})

	t.Run("missing parameter", func(t *testing.T) {
		routeParam(t, "/tasks", "/tasks", func(w http.ResponseWriter, r *http.Request) {
			id, err := getPathUUID(r, "id")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrValidation))
			assert.Equal(t, uuid.Nil, id)
		})
	})

	t.Run("invalid UUID format", func(t *testing.T) {
		routeParam(t, "/tasks/{id}", "/tasks/not-a-uuid", func(w http.ResponseWriter, r *http.Request) {
			id, err := getPathUUID(r, "id")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidID))
			assert.Equal(t, uuid.Nil, id)
		})
	})
}

func TestHandleUserIDFromContext(t *testing.T) {
	t.Run("user present", func(t *testing.T) {
		userID := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(shared.WithUserID(req.Context(), userID, "tok"))
		rr := httptest.NewRecorder()

		got, ok := handleUserIDFromContext(rr, req, nil)

		assert.True(t, ok)
		assert.Equal(t, userID, got)
		assert.Equal(t, http.StatusOK, rr.Code, "nothing should be written on success")
	})

	t.Run("user missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rr := httptest.NewRecorder()

		_, ok := handleUserIDFromContext(rr, req, nil)

		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		var body shared.ErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "Authentication required", body.Error)
	})
}

func TestHandleUserIDAndPathUUID(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()

	tests := []struct {
		name           string
		authenticated  bool
		path           string
		expectedOK     bool
		expectedStatus int
	}{
		{"valid user and path", true, "/tasks/" + taskID.String(), true, http.StatusOK},
		{"missing user", false, "/tasks/" + taskID.String(), false, http.StatusUnauthorized},
		{"invalid path uuid", true, "/tasks/42", false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			var gotUser, gotPath uuid.UUID
			var gotOK bool
			r.Get("/tasks/{id}", func(w http.ResponseWriter, req *http.Request) {
				gotUser, gotPath, gotOK = handleUserIDAndPathUUID(w, req, "id", nil)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.authenticated {
				req = req.WithContext(shared.WithUserID(req.Context(), userID, "tok"))
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedOK, gotOK)
			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedOK {
				assert.Equal(t, userID, gotUser)
				assert.Equal(t, taskID, gotPath)
			}
		})
	}
}

func TestParseAndValidateRequest(t *testing.T) {
	tests := []struct {
		name            string
		body            string
		expectedOK      bool
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:       "valid request",
			body:       `{"name":"Alice","email":"alice@example.com","password":"secret1"}`,
			expectedOK: true,
		},
		{
			name:            "malformed json",
			body:            `{"name":`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Invalid request format",
		},
		{
			name:            "missing email",
			body:            `{"name":"Alice","password":"secret1"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "email is required",
		},
		{
			name:            "short password",
			body:            `{"name":"Alice","email":"alice@example.com","password":"12345"}`,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "password must be at least 6 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tt.body))
			rr := httptest.NewRecorder()

			var parsed RegisterRequest
			ok := parseAndValidateRequest(rr, req, &parsed, nil)

			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.Equal(t, "alice@example.com", parsed.Email)
				return
			}
			assert.Equal(t, tt.expectedStatus, rr.Code)
			var body shared.ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
			assert.Equal(t, tt.expectedMessage, body.Error)
		})
	}
}
