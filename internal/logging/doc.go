// Package logging constructs slog loggers with a console or JSON handler.
package logging
