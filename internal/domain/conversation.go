package domain

import "time"

// MessageRole enumerates chat message authorship.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single chat turn stored inside a conversation.
type Message struct {
	ID        string         `json:"id"`
	Role      MessageRole    `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ChatSettings tunes the text-generation call for a conversation.
type ChatSettings struct {
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"maxTokens"`
	SystemPrompt string  `json:"systemPrompt,omitempty"`
}

// Conversation groups chat messages with their provider settings. Language is
// "en" or "ar"; IsRTL mirrors the detected script of the latest user message.
type Conversation struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	Title     string       `json:"title"`
	Language  string       `json:"language"`
	Provider  string       `json:"provider"`
	Model     string       `json:"model"`
	Settings  ChatSettings `json:"settings"`
	Messages  []Message    `json:"messages"`
	IsRTL     bool         `json:"isRTL"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
