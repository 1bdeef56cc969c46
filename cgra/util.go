package cgra

import (
	"context"
	"log/slog"
)

// LevelTrace is the level the engine's task, barrier, and run events
// are logged at.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs a message at the trace level.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}
