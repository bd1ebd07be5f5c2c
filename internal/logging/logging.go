// Package logging sends structured logs to a rotating file. The terminal
// belongs to the chat screen, so nothing here writes to stdout or stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file created under <data dir>/logs.
const FileName = "echochat.log"

// Rotation limits. One chat session logs a handful of lines, so these stay small.
const (
	rotateSizeMB  = 5
	rotateBackups = 3
	rotateAgeDays = 14
)

// Options selects where and how to log.
type Options struct {
	Path   string // log file; empty disables logging
	Level  string // debug, info, warn or error
	Format string // json (default) or text
}

// PathIn returns the log file location for dataDir.
func PathIn(dataDir string) string {
	return filepath.Join(dataDir, "logs", FileName)
}

// Open returns a logger writing to opts.Path and makes it the slog default.
// The closer releases the file and must be closed when the command exits.
// On error the returned logger discards everything and is still usable.
func Open(opts Options) (*slog.Logger, io.Closer, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return install(opts, io.Discard), nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o700); err != nil {
		return install(opts, io.Discard), nopCloser{}, err
	}

	file := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    rotateSizeMB,
		MaxBackups: rotateBackups,
		MaxAge:     rotateAgeDays,
		Compress:   true,
	}
	return install(opts, file), file, nil
}

func install(opts Options, out io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var h slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "text") {
		h = slog.NewTextHandler(out, handlerOpts)
	} else {
		h = slog.NewJSONHandler(out, handlerOpts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel maps a config level name to a slog level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
