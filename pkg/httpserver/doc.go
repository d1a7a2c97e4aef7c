// Package httpserver provides a thin wrapper around net/http's Server with
// graceful shutdown, signal handling, and health check endpoints.
package httpserver
