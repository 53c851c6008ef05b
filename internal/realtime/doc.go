// Package realtime is the websocket transport for task events.
//
// Handler authenticates the upgrade request, then hands the connection to
// the Hub, which implements events.Transport. Each connection owns a read
// goroutine that detects disconnects and a write goroutine that serializes
// every outbound frame, so frames reach a client in the order they were sent.
package realtime
