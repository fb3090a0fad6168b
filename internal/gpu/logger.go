package gpu

import (
	"log/slog"
	"sync/atomic"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

func slogger() *slog.Logger { return loggerPtr.Load() }

// SetLogger tags l with component=gpu and uses it for device, geometry and
// frame records. Nil discards them.
func SetLogger(l *slog.Logger) {
	if l == nil {
		loggerPtr.Store(slog.New(slog.DiscardHandler))
		return
	}
	loggerPtr.Store(l.With("component", "gpu"))
}
