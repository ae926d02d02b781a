// Package logging builds the bot's slog loggers.
//
// Bots talk to the game server over stdout, so every logger here writes
// somewhere else (stderr by default).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// New returns a logger writing to w in the given format.
func New(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			a.Key = canonicalKey(a.Key)
			return a
		},
	}

	switch strings.ToLower(format) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case FormatPretty:
		return slog.New(NewPrettyJSONHandler(w, level)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// canonicalKey shortens "error" to "err" so every handler agrees.
func canonicalKey(k string) string {
	if k == "error" {
		return "err"
	}
	return k
}
