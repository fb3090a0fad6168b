package termtext

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/termtext/internal/gpu"
)

var silent = slog.New(slog.DiscardHandler)

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(silent)
}

// SetLogger routes termtext diagnostics, including the GPU layer's, to l.
// The terminal is silent until this is called; nil silences it again.
// Safe to call while frames are rendering on other goroutines.
//
// Records by level:
//   - [slog.LevelDebug]: frame submitted, geometry growth, fps
//   - [slog.LevelInfo]: device opened, font atlas built, config reloaded
//   - [slog.LevelWarn]: rejected config reload, watcher errors
//
// The demo installs a charmbracelet/log logger:
//
//	termtext.SetLogger(slog.New(log.NewWithOptions(os.Stderr, log.Options{
//	    Level: log.DebugLevel,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	logger.Store(l)
	gpu.SetLogger(l)
}

// Logger returns the logger installed by SetLogger.
func Logger() *slog.Logger {
	return logger.Load()
}
