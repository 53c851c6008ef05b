// Package api handles incoming HTTP requests, request validation and
// response formatting for the auth, task and user endpoints. It adapts HTTP
// to the service layer; errors from services are mapped to status codes and
// client-safe messages in one place, HandleAPIError.
//
// The auth cookie set here is the same credential the websocket handshake
// in package realtime accepts.
package api
