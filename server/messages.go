package server

import "github.com/citadelhq/citadel-go/store"

// ClientMessage is the envelope received over the websocket.
type ClientMessage struct {
	Type           string `json:"type"`
	Content        string `json:"content,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ServerMessage is the envelope sent over the websocket.
type ServerMessage struct {
	Type           string          `json:"type"`
	Content        string          `json:"content,omitempty"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Messages       []store.Message `json:"messages,omitempty"`
	TokenUsage     *TokenUsage     `json:"token_usage,omitempty"`
}

// TokenUsage reports token spend to the client.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}
