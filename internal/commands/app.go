package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/diogo/echochat/internal/config"
	"github.com/diogo/echochat/internal/dom"
	"github.com/diogo/echochat/internal/logging"
	"github.com/diogo/echochat/internal/schedule"
	"github.com/diogo/echochat/internal/storage"
	"github.com/diogo/echochat/internal/widget"
)

// app bundles what every command needs: config, logger and the chat store
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	logs     io.Closer
	store    *storage.ChatStore
	location string
}

func setup(opts *globalOptions) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}

	dir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}

	logPath := strings.TrimSpace(cfg.LogFile)
	if logPath == "" {
		logPath = logging.PathIn(dir)
	}
	logger, logs, err := logging.Open(logging.Options{
		Path:   logPath,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}

	a := &app{cfg: cfg, logger: logger, logs: logs}
	var kv storage.KV
	if opts.ephemeral {
		kv = storage.NewMemoryKV()
		a.location = "in-memory"
	} else {
		fileKV, err := storage.NewFileKV(dir)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		kv = fileKV
		a.location = fileKV.Dir()
	}
	a.store = storage.NewChatStore(kv, logger)
	return a, nil
}

// Close releases the log file.
func (a *app) Close() {
	if err := a.logs.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing log file: %v\n", err)
	}
}

// newWidget mounts and initializes a widget on a fresh chat page
func (a *app) newWidget(s schedule.Scheduler) (*widget.Widget, error) {
	w, err := widget.New(dom.NewChatPage(), a.store,
		widget.WithScheduler(s),
		widget.WithLogger(a.logger),
		widget.WithReplyDelay(a.cfg.ReplyDelay()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat widget: %w", err)
	}
	if err := w.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize chat widget: %w", err)
	}
	return w, nil
}
