package chat

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportFormat represents the format for exporting a chat
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseExportFormat accepts "markdown", "md" or "json".
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", s)
	}
}

// Export renders the chat in the given format.
func Export(c Chat, format ExportFormat) (string, error) {
	switch format {
	case ExportFormatMarkdown:
		return ExportMarkdown(c), nil
	case ExportFormatJSON:
		return ExportJSON(c)
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

// ExportMarkdown renders the chat as a Markdown document
func ExportMarkdown(c Chat) string {
	var sb strings.Builder

	sb.WriteString("# Echo Chat\n\n")
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n\n---\n", len(c.Messages)))

	for _, msg := range c.Messages {
		role := string(RoleEcho)
		if msg.IsUser() {
			role = string(RoleUser)
		}
		sb.WriteString("\n## ")
		sb.WriteString(role)
		sb.WriteString("\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}

	return sb.String()
}

// ExportJSON renders the chat in the storage format, indented
func ExportJSON(c Chat) (string, error) {
	if c.Messages == nil {
		c.Messages = []Message{}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat: %w", err)
	}
	return string(data) + "\n", nil
}

// Transcript renders one line per message, prefixed with the speaker.
func Transcript(msgs []Message) string {
	var sb strings.Builder
	for _, msg := range msgs {
		if msg.IsUser() {
			sb.WriteString("You: ")
		} else {
			sb.WriteString("Echo: ")
		}
		sb.WriteString(msg.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
