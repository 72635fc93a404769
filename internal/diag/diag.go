// Package diag builds the diagnostic logger. All output goes to stderr:
// stdout belongs to the MCP stdio channel and must carry protocol frames
// only.
package diag

import (
	"log/slog"
	"os"
	"strings"
)

// Config selects the verbosity and wire format of diagnostic output.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// New builds a logger from the config. Unknown levels fall back to info,
// unknown formats to text.
func New(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
