package chat

import (
	"fmt"
	"log/slog"
)

// Persister writes the whole chat to durable storage
type Persister interface {
	Save(c Chat) error
}

// Session owns the current chat. It is not safe for concurrent use; callers
// drive it from a single logical thread.
type Session struct {
	current   Chat
	persister Persister
	logger    *slog.Logger
}

// NewSession creates a session holding an empty, unsaved chat.
func NewSession(p Persister, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		current:   NewChat(),
		persister: p,
		logger:    logger,
	}
}

// Messages returns a copy of the current message sequence.
func (s *Session) Messages() []Message {
	return s.current.Clone().Messages
}

// Len returns the number of messages in the current chat.
func (s *Session) Len() int {
	return len(s.current.Messages)
}

// Chat returns a copy of the current chat.
func (s *Session) Chat() Chat {
	return s.current.Clone()
}

// Append normalizes text and adds it to the current chat, then persists.
// Empty text is ignored and reported as false. The message stays in memory
// even when persisting fails.
func (s *Session) Append(role Role, text string) (bool, error) {
	content, ok := Normalize(text)
	if !ok {
		return false, nil
	}

	s.current.Messages = append(s.current.Messages, Message{Role: role, Content: content})
	s.logger.Debug("message appended",
		slog.String("role", string(role)),
		slog.Int("length", len(content)),
		slog.Int("count", len(s.current.Messages)))

	if err := s.save(); err != nil {
		return true, err
	}
	return true, nil
}

// Reset discards the current chat and replaces it with an empty one.
func (s *Session) Reset() error {
	s.current = NewChat()
	s.logger.Debug("chat reset")
	return s.save()
}

// Adopt installs a previously persisted chat as the current one.
func (s *Session) Adopt(c Chat) {
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	s.current = c.Clone()
	s.logger.Debug("chat adopted", slog.Int("count", len(c.Messages)))
}

func (s *Session) save() error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(s.current); err != nil {
		return fmt.Errorf("failed to persist chat: %w", err)
	}
	return nil
}
