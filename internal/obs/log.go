package obs

import (
	"log/slog"
	"os"
	"sync"
)

var (
	loggerMu sync.Mutex
	logger   *slog.Logger
)

// Logger returns the shared structured logger used across the console core.
func Logger() *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return logger
}

// SetLogger replaces the shared logger. The CLI installs a text handler here;
// tests install a discard handler.
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}
