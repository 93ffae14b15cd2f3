package interfaces

import (
	"context"

	"github.com/flowbridge/flowbridge/internal/domain/entities"
)

// Completion is one model reply: free text, zero or more tool calls.
type Completion struct {
	Content   string
	ToolCalls []entities.ToolCall
}

// ChatModel generates a single completion for a conversation. It never
// loops on tool calls itself; deciding what to do with a tool call is the
// caller's responsibility.
type ChatModel interface {
	Complete(ctx context.Context, messages []*entities.Message, tools []*entities.Tool) (*Completion, error)
}

// SchemaModel answers a one-shot prompt with plain text. Used for
// deriving tool schemas from workflow definitions.
type SchemaModel interface {
	CompleteText(ctx context.Context, system, user string) (string, error)
}
