package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flowbridge/flowbridge/internal/domain/entities"
	"github.com/flowbridge/flowbridge/internal/domain/events"
	"github.com/flowbridge/flowbridge/internal/domain/interfaces"
	"github.com/flowbridge/flowbridge/internal/metrics"

	"go.uber.org/zap"
)

// maxToolCalls bounds the number of tool-call-bearing model replies in
// one exchange. Unbounded loops risk request amplification against the
// workflow source; this is a hard circuit breaker, not a heuristic the
// model can override.
const maxToolCalls = 10

const noResponseMessage = "No response generated"

const routingSystemPrompt = `You are an AI assistant that helps users interact with automation workflows.
You have access to tools that can trigger these workflows via webhooks.

When a user asks you to perform a task:
1. Select the most appropriate tool based on the user's request
2. Only ask for parameters that are explicitly marked as required in the tool description
3. Do not ask for additional parameters like subject, body, or other fields unless they are listed as required
4. The workflow will handle all additional processing once triggered

If no tool matches the user's request, respond conversationally and explain what you can help with.`

// Agent runs one bounded conversational exchange per incoming message:
// it alternates between asking the model for the next action and
// executing the tool calls the model requested, and terminates on a
// content-only reply or the tool-call ceiling.
type Agent struct {
	model   interfaces.ChatModel
	catalog *Catalog
	logger  *zap.Logger
}

func NewAgent(model interfaces.ChatModel, catalog *Catalog, logger *zap.Logger) *Agent {
	return &Agent{
		model:   model,
		catalog: catalog,
		logger:  logger,
	}
}

// ProcessMessage runs the exchange for one user message and returns
// exactly one final textual answer. Each call starts a fresh message
// sequence; prior turns are not retained. Failures never escape: they
// are logged and converted to a user-facing error string.
func (a *Agent) ProcessMessage(ctx context.Context, text string) string {
	metrics.ExchangesTotal.Inc()

	messages := []*entities.Message{
		entities.NewMessage("system", routingSystemPrompt),
		entities.NewMessage("user", text),
	}

	toolCallReplies := 0
	for {
		completion, err := a.model.Complete(ctx, messages, a.catalog.List())
		if err != nil {
			a.logger.Error("Error processing message", zap.Error(err))
			return fmt.Sprintf("Error processing your request: %v", err)
		}

		reply := entities.NewMessage("assistant", completion.Content)
		reply.ToolCalls = completion.ToolCalls
		messages = append(messages, reply)

		if len(completion.ToolCalls) == 0 {
			break
		}

		toolCallReplies++
		if toolCallReplies >= maxToolCalls {
			a.logger.Warn("Reached maximum tool calls, ending exchange",
				zap.Int("ceiling", maxToolCalls))
			metrics.CeilingReachedTotal.Inc()
			break
		}

		// Tool calls run one at a time, in the order the model
		// emitted them.
		for _, toolCall := range completion.ToolCalls {
			messages = append(messages, a.executeToolCall(ctx, toolCall))
		}
	}

	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "system" && messages[i].Content != "" {
			return messages[i].Content
		}
	}
	return noResponseMessage
}

func (a *Agent) executeToolCall(ctx context.Context, toolCall entities.ToolCall) *entities.Message {
	name := toolCall.Function.Name
	a.logger.Info("Tool call requested",
		zap.String("tool", name),
		zap.String("arguments", toolCall.Function.Arguments))

	var params map[string]any
	if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &params); err != nil {
		a.logger.Warn("Malformed tool arguments",
			zap.String("tool", name),
			zap.Error(err))
		params = map[string]any{}
	}

	result := a.catalog.Execute(ctx, name, params)

	content, err := json.Marshal(result)
	if err != nil {
		content = []byte(`{"status":"error","message":"unencodable tool result"}`)
	}

	events.PublishToolCallEvent(entities.NewToolCallEvent(
		toolCall.ID,
		name,
		toolCall.Function.Arguments,
		string(content),
		result.Message,
	))

	return entities.NewToolResultMessage(toolCall.ID, string(content))
}

// RefreshTools resynthesizes the catalog and reports a human-readable
// status message.
func (a *Agent) RefreshTools(ctx context.Context) string {
	count, err := a.catalog.Refresh(ctx)
	if err != nil {
		a.logger.Error("Error refreshing tools", zap.Error(err))
		return fmt.Sprintf("Error refreshing tools: %v", err)
	}
	return fmt.Sprintf("Successfully refreshed tools. %d tools available.", count)
}

// Tools exposes the current catalog entries for listing surfaces.
func (a *Agent) Tools() []*entities.Tool {
	return a.catalog.List()
}
