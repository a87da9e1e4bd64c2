package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	enabled bool
	writer  io.WriteCloser
	logger  = slog.New(slog.DiscardHandler)
	mu      sync.Mutex
)

// Enable turns on debug logging to the specified file. The file is rotated
// once it grows past a few megabytes.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // megabytes
		MaxBackups: 2,
	}
	logger = slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: slog.LevelDebug}))
	enabled = true

	logger.Info("Debug logging enabled")
	return nil
}

// Close closes the debug log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if writer != nil {
		_ = writer.Close()
		writer = nil
	}
	logger = slog.New(slog.DiscardHandler)
	enabled = false
}

// IsEnabled returns whether debug logging is enabled.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Logger returns the structured logger. It discards everything until Enable
// succeeds.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes a formatted debug message if debugging is enabled.
func Log(format string, args ...any) {
	Logger().Debug(fmt.Sprintf(format, args...))
}

// Timed logs the duration of an operation. Usage:
//
//	defer debug.Timed("operation name")()
func Timed(name string) func() {
	if !IsEnabled() {
		return func() {}
	}

	start := time.Now()
	Logger().Debug("started", "op", name)

	return func() {
		Logger().Debug("completed", "op", name, "elapsed", time.Since(start))
	}
}
