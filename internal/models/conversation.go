package models

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Tool invocation states as reported by the chat UI.
const (
	ToolStatePartialCall = "partial-call"
	ToolStateCall        = "call"
	ToolStateResult      = "result"
)

const (
	defaultTitle   = "New chat"
	maxTitleLength = 80
)

type Attachment struct {
	URL         string `json:"url"`
	Name        string `json:"name,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// IsImage reports whether the attachment can be handed to a model as an image part.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(a.ContentType), "image/")
}

type ToolInvocation struct {
	State      string          `json:"state"`
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Args       json.RawMessage `json:"args,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

func (t ToolInvocation) HasResult() bool {
	return t.State == ToolStateResult && len(t.Result) > 0
}

type Message struct {
	ID              string           `json:"id"`
	Role            Role             `json:"role"`
	Content         string           `json:"content"`
	ToolInvocations []ToolInvocation `json:"toolInvocations,omitempty"`
	Attachments     []Attachment     `json:"experimental_attachments,omitempty"`
	CreatedAt       time.Time        `json:"createdAt,omitempty"`
}

// Empty reports whether the message carries nothing a model could read.
func (m Message) Empty() bool {
	if strings.TrimSpace(m.Content) != "" || len(m.Attachments) > 0 {
		return false
	}
	for _, inv := range m.ToolInvocations {
		if inv.HasResult() {
			return false
		}
	}
	return true
}

// NonEmpty returns the messages that survive Empty filtering, preserving order.
func NonEmpty(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if !m.Empty() {
			out = append(out, m)
		}
	}
	return out
}

// Extends reports whether messages begins with history. Messages are matched
// by role and content, since ids of client-side messages are not stable.
func Extends(messages, history []Message) bool {
	if len(messages) < len(history) {
		return false
	}
	for i, h := range history {
		if messages[i].Role != h.Role || messages[i].Content != h.Content {
			return false
		}
	}
	return true
}

type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages"`
}

func (c *Chat) OwnedBy(userID string) bool {
	return userID != "" && c.UserID == userID
}

type ChatSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// DeriveTitle names a chat after its first user message.
func DeriveTitle(messages []Message) string {
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		title := strings.Join(strings.Fields(m.Content), " ")
		if title == "" {
			continue
		}
		if utf8.RuneCountInString(title) > maxTitleLength {
			runes := []rune(title)
			title = strings.TrimSpace(string(runes[:maxTitleLength-1])) + "…"
		}
		return title
	}
	return defaultTitle
}
