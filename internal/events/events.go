package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/phrazzld/taskpulse-api/internal/domain"
)

// Kind identifies a task lifecycle event.
type Kind int

// Event kinds.
const (
	Created Kind = iota + 1
	Updated
	Deleted
	Assigned
)

// Frame names as seen by clients.
const (
	FrameTaskCreated  = "task:created"
	FrameTaskUpdated  = "task:updated"
	FrameTaskDeleted  = "task:deleted"
	FrameTaskAssigned = "task:assigned"
)

// String returns the frame name for k.
func (k Kind) String() string {
	switch k {
	case Created:
		return FrameTaskCreated
	case Updated:
		return FrameTaskUpdated
	case Deleted:
		return FrameTaskDeleted
	case Assigned:
		return FrameTaskAssigned
	default:
		return "unknown"
	}
}

// TaskEvent is produced by the task workflow after a mutation commits.
// Task is set for every kind except Deleted, which carries only TaskID.
// Assignee is set only for Assigned.
type TaskEvent struct {
	Kind     Kind
	Task     *domain.Task
	TaskID   uuid.UUID
	Assignee uuid.UUID
}

// TaskCreated builds a Created event.
func TaskCreated(task *domain.Task) TaskEvent {
	return TaskEvent{Kind: Created, Task: task, TaskID: taskID(task)}
}

// TaskUpdated builds an Updated event.
func TaskUpdated(task *domain.Task) TaskEvent {
	return TaskEvent{Kind: Updated, Task: task, TaskID: taskID(task)}
}

// TaskDeleted builds a Deleted event.
func TaskDeleted(id uuid.UUID) TaskEvent {
	return TaskEvent{Kind: Deleted, TaskID: id}
}

// TaskAssigned builds an Assigned event targeted at assignee.
func TaskAssigned(assignee uuid.UUID, task *domain.Task) TaskEvent {
	return TaskEvent{Kind: Assigned, Task: task, TaskID: taskID(task), Assignee: assignee}
}

func taskID(task *domain.Task) uuid.UUID {
	if task == nil {
		return uuid.Nil
	}
	return task.ID
}

// DeletedPayload is the data of a task:deleted frame.
type DeletedPayload struct {
	TaskID uuid.UUID `json:"taskId"`
}

// Frame is one outbound message. It serializes as {"event": ..., "data": ...}.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// errMissingSnapshot is returned by frameFor when an event that must carry a
// task snapshot has none.
var errMissingSnapshot = errors.New("event has no task snapshot")

func frameFor(ev TaskEvent) (Frame, error) {
	if ev.Kind == Deleted {
		return Frame{Event: FrameTaskDeleted, Data: DeletedPayload{TaskID: ev.TaskID}}, nil
	}
	if ev.Task == nil {
		return Frame{}, errMissingSnapshot
	}
	return Frame{Event: ev.Kind.String(), Data: ev.Task}, nil
}

// ErrConnectionClosed is returned by a Transport when the connection no
// longer exists. The Router treats it as a silent no-op.
var ErrConnectionClosed = errors.New("connection closed")

// Transport pushes a frame to one live connection. Send must not block on
// the remote peer.
type Transport interface {
	Send(ctx context.Context, connID string, frame Frame) error
}

// Notifier accepts committed task events. Events passed in one call are
// delivered in argument order. Notify never fails; delivery is best-effort.
type Notifier interface {
	Notify(ctx context.Context, events ...TaskEvent)
}

// NopNotifier discards every event.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, ...TaskEvent) {}
