// Package logger provides structured logging functionality for the application
// using Go's standard library log/slog package. Request-scoped loggers travel
// in the context so that every layer logs with the same trace attributes.
package logger
