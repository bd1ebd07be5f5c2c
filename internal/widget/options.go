package widget

import (
	"log/slog"
	"time"

	"github.com/diogo/echochat/internal/schedule"
)

// DefaultReplyDelay is how long the echo bot waits before answering.
const DefaultReplyDelay = 500 * time.Millisecond

// Option configures a Widget
type Option func(*Widget)

// WithScheduler sets the scheduler used for echo replies.
func WithScheduler(s schedule.Scheduler) Option {
	return func(w *Widget) {
		if s != nil {
			w.scheduler = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Widget) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithReplyDelay overrides DefaultReplyDelay. Negative values are ignored.
func WithReplyDelay(d time.Duration) Option {
	return func(w *Widget) {
		if d >= 0 {
			w.replyDelay = d
		}
	}
}
