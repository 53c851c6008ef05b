// Package mocks provides shared test doubles for the store, auth and events
// interfaces.
//
// Store mocks are built on testify/mock so expectations read the same in
// every package:
//
//	tasks := new(mocks.MockTaskStore)
//	tasks.On("WithTx", mock.Anything).Return(tasks)
//	tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
//
// MockUserService and MockTaskService stand in for the service layer in
// handler tests. Auth mocks use function fields with default values, and
// RecordingNotifier captures the events a service emits.
package mocks
