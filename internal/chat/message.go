// Package chat holds the conversation data model and the single active chat.
package chat

import "unicode/utf8"

// Role identifies who sent a message
type Role string

const (
	RoleUser Role = "User"
	RoleEcho Role = "Echo"
)

// MaxContentLength is the maximum number of characters kept per message.
const MaxContentLength = 500

// echoPrefix and echoSuffix wrap the user's text in the bot reply.
const (
	echoPrefix = `You said: "`
	echoSuffix = `"`
)

// Message is one turn in the conversation
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsUser reports whether the message was sent by the user.
// Any other role renders as an echo.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Chat is the ordered message sequence of a conversation
type Chat struct {
	Messages []Message `json:"messages"`
}

// NewChat returns an empty chat whose messages marshal as [] rather than null.
func NewChat() Chat {
	return Chat{Messages: []Message{}}
}

// Clone returns a deep copy of the chat.
func (c Chat) Clone() Chat {
	msgs := make([]Message, len(c.Messages))
	copy(msgs, c.Messages)
	return Chat{Messages: msgs}
}

// Normalize applies the content rules to text: empty text is rejected and
// anything past MaxContentLength characters is dropped.
func Normalize(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	if utf8.RuneCountInString(text) <= MaxContentLength {
		return text, true
	}

	n := 0
	for i := range text {
		if n == MaxContentLength {
			return text[:i], true
		}
		n++
	}
	return text, true
}

// EchoReply builds the simulated bot answer for text.
func EchoReply(text string) string {
	return echoPrefix + text + echoSuffix
}
