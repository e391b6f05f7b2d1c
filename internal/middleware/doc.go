// Package middleware provides the HTTP middleware used by the cabinet
// API, currently JWT bearer authentication.
package middleware
