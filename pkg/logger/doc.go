// Package logger builds the structured slog loggers used across pathrouter.
// Production environments log JSON, everything else logs text. Std bridges a
// slog logger to libraries that expect a Println-style logger.
package logger
