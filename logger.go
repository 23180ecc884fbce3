package chime

import (
	"log/slog"

	"github.com/phanxgames/chime/internal/logx"
)

// SetLogger configures the logger for chime and all its sub-packages.
// By default chime produces no log output. Pass nil to restore silence.
//
// Log levels used by chime:
//   - [slog.LevelDebug]: body registration, frame timings in debug mode
//   - [slog.LevelInfo]: headset and window lifecycle
//   - [slog.LevelWarn]: physics warnings, unroutable VR events, transforms
//     that could not be applied
//
// Example:
//
//	chime.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logx.Set(l)
}

// Logger returns the current logger. It is never nil.
func Logger() *slog.Logger {
	return logx.Get()
}
