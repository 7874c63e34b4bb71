// Package logger provides structured logging functionality for the application.
//
// It builds on log/slog: JSON output for production, colored text output via
// tint for local runs, and a redacting handler in front of either so API keys
// never reach the log stream.
package logger
