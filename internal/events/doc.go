// Package events routes task lifecycle events to live client connections.
//
// The Registry maps each user to the one connection currently registered for
// them. The Router turns a TaskEvent into frames: Created, Updated and Deleted
// are broadcast to every registered connection, Assigned goes only to the
// assignee and is dropped when they are offline. Delivery is best-effort and
// never reports failure back to the caller.
//
// The package knows nothing about websockets; frames are handed to a
// Transport, implemented by internal/realtime.
package events
