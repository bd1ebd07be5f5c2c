package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/diogo/echochat/internal/chat"
)

// ChatKey is the fixed slot the current chat is stored under.
const ChatKey = "chat_key"

// ChatStore persists the current chat to a single KV slot
type ChatStore struct {
	kv     KV
	logger *slog.Logger
}

// NewChatStore creates a chat store on top of kv
func NewChatStore(kv KV, logger *slog.Logger) *ChatStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatStore{kv: kv, logger: logger}
}

// Save serializes the whole chat and overwrites the slot.
func (s *ChatStore) Save(c chat.Chat) error {
	if c.Messages == nil {
		c.Messages = []chat.Message{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal chat: %w", err)
	}
	if err := s.kv.Set(ChatKey, string(data)); err != nil {
		return err
	}
	return nil
}

// Load returns the persisted chat. Missing, empty, malformed and null
// records are all reported as absent with a nil error. An error means the
// slot could not be read at all and its content is unknown.
func (s *ChatStore) Load() (chat.Chat, bool, error) {
	raw, ok, err := s.kv.Get(ChatKey)
	if err != nil {
		s.logger.Warn("failed to read stored chat", slog.String("error", err.Error()))
		return chat.Chat{}, false, err
	}
	if !ok || raw == "" {
		return chat.Chat{}, false, nil
	}

	if !gjson.Valid(raw) {
		s.logger.Debug("stored chat is not valid JSON", slog.Int("bytes", len(raw)))
		return chat.Chat{}, false, nil
	}
	if gjson.Parse(raw).Type == gjson.Null {
		return chat.Chat{}, false, nil
	}

	var c chat.Chat
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		s.logger.Debug("stored chat does not decode", slog.String("error", err.Error()))
		return chat.Chat{}, false, nil
	}
	if c.Messages == nil {
		c.Messages = []chat.Message{}
	}
	return c, true, nil
}

// Raw returns the stored record exactly as written.
func (s *ChatStore) Raw() (string, bool, error) {
	return s.kv.Get(ChatKey)
}

// Clear removes the stored record.
func (s *ChatStore) Clear() error {
	return s.kv.Delete(ChatKey)
}
