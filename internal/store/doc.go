// Package store defines the persistence interfaces for users and tasks,
// the errors every implementation returns, and the transaction helper
// services use to group writes. Implementations live under
// internal/platform.
package store
