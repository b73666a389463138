package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var logLevelMap = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// setupLogging installs the default slog logger. With logFile set, records
// go to that file as JSON; otherwise they go to stderr as text. Unknown
// levels fall back to warn.
func setupLogging(level, logFile string, stderr io.Writer) error {
	lvl, ok := logLevelMap[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		lvl = slog.LevelWarn
	}

	var handler slog.Handler
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		handler = slog.NewJSONHandler(f, &slog.HandlerOptions{Level: lvl, AddSource: true})
	} else {
		handler = slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: lvl})
	}

	slog.SetDefault(slog.New(handler))
	slog.Debug("logging initialized", "level", lvl.String(), "log_file", logFile)
	return nil
}
