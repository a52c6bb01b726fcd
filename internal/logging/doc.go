// Package logging sets up slog for confscope.
//
// By default logging is minimal and goes to stderr only. With --debug,
// structured JSON logs are also written to ~/.confscope/logs/ with
// size-based rotation.
package logging
