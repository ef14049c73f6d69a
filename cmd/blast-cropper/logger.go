package main

import (
	"io"
	"log/slog"
	"strings"
)

// parseLevel maps BLAST_CROPPER_LOG_LEVEL values to slog levels. Unknown or
// empty values mean info.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text slog.Logger writing to w at the given level.
// stdout is never used: it carries MCP protocol traffic in serve mode.
func NewLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
