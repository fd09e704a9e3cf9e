// Package logging provides structured logging using Go's standard library log/slog.
// Logs are written as JSON by default, or as logfmt-style text for interactive builds.
package logging
