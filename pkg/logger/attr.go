package logger

import "log/slog"

// Error returns a standard attribute for error values.
// Nil errors produce an empty attribute that slog drops from output.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

// Component tags log records with the subsystem that produced them.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
