// Package service contains the application use cases.
//
// Services receive stores, a *sql.DB for transaction boundaries and their
// collaborators through constructors. Every mutation runs inside
// store.RunInTransaction; TaskService reports committed mutations to an
// events.Notifier only after the commit succeeds, and the outcome of that
// notification never changes the result returned to the caller.
//
// Expected failures are sentinel errors (ErrTaskNotFound, ErrNotTaskCreator,
// ...) that the API layer maps to status codes. Unexpected failures are
// wrapped in ServiceError.
package service
