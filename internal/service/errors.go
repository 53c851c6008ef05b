package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the services. Callers classify them with
// errors.Is; the API layer maps each one to a status code and a fixed message.
var (
	// ErrTaskNotFound indicates the task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrAssigneeNotFound indicates an assignment target that is not a known user.
	ErrAssigneeNotFound = errors.New("assigned user not found")

	// ErrNotTaskCreator indicates a delete attempted by someone other than the creator.
	ErrNotTaskCreator = errors.New("only the creator can delete this task")

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken indicates registration with an email that already has an account.
	ErrEmailTaken = errors.New("user with this email already exists")

	// ErrEmailInUse indicates a profile update to an email owned by another user.
	ErrEmailInUse = errors.New("email already in use")
)

// ServiceError wraps an unexpected failure with the service and operation
// that produced it.
type ServiceError struct {
	Service string
	Op      string
	Err     error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s operation failed: %v", e.Service, e.Op, e.Err)
	}
	return fmt.Sprintf("%s service %s operation failed", e.Service, e.Op)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, op string, err error) error {
	return &ServiceError{
		Service: service,
		Op:      op,
		Err:     err,
	}
}
