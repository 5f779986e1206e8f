// Package logging configures the process-wide slog logger for indexbench.
//
// Logs are JSON. They go to stderr unless a log file is configured, in which
// case they go to a size-rotated file. The benchmark report itself is written
// to stdout and never passes through this package.
package logging
