// Package api wires HTTP routing for the cabinet backend: the REST
// thread surface, authentication endpoints and the chat WebSocket
// upgrade point.
package api
