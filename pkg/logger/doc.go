// Package logger builds configured slog.Logger instances with JSON or text
// output and optional context-based attribute injection.
package logger
