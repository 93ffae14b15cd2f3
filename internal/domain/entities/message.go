package entities

import (
	"time"

	"github.com/google/uuid"
)

type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// NewToolCall creates a function tool call with the given name and raw
// JSON-encoded arguments.
func NewToolCall(id, name, arguments string) ToolCall {
	tc := ToolCall{
		ID:   id,
		Type: "function",
	}
	tc.Function.Name = name
	tc.Function.Arguments = arguments
	return tc
}

type Message struct {
	ID         string     `json:"id"`
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

func NewMessage(role, content string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewToolResultMessage creates a tool-role message carrying the result of
// the tool call identified by toolCallID.
func NewToolResultMessage(toolCallID, content string) *Message {
	return &Message{
		ID:         uuid.New().String(),
		Role:       "tool",
		Content:    content,
		ToolCallID: toolCallID,
		Timestamp:  time.Now(),
	}
}
