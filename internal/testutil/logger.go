package testutil

import (
	"log/slog"
)

// DiscardLogger returns a slog.Logger that discards all output. Use it to
// keep test output quiet; log.NewNop() is equivalent for callers already
// importing internal/log.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
