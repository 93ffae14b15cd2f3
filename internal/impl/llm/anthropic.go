package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/flowbridge/flowbridge/internal/domain/entities"
	"github.com/flowbridge/flowbridge/internal/domain/errs"
	"github.com/flowbridge/flowbridge/internal/domain/interfaces"

	"go.uber.org/zap"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	maxTokens        = 1024
)

// AnthropicClient implements ChatModel and SchemaModel against the
// Anthropic messages API. It issues exactly one completion per call.
type AnthropicClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAnthropicClient(apiKey, model string, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errs.ConfigErrorf("apiKey cannot be empty")
	}
	if model == "" {
		return nil, errs.ConfigErrorf("model cannot be empty")
	}
	return &AnthropicClient{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}, nil
}

// NewAnthropicClientWithBaseURL is used by tests to point the client at a
// stub server.
func NewAnthropicClientWithBaseURL(baseURL, apiKey, model string, logger *zap.Logger) (*AnthropicClient, error) {
	client, err := NewAnthropicClient(apiKey, model, logger)
	if err != nil {
		return nil, err
	}
	client.baseURL = baseURL
	return client, nil
}

// convertMessages maps role-tagged messages to the Anthropic wire format.
// System entries are skipped here; the API takes the system prompt as a
// top-level field. Tool results ride on the user role.
func convertMessages(messages []*entities.Message) []map[string]any {
	apiMessages := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			continue
		case "user":
			apiMessages = append(apiMessages, map[string]any{
				"role":    "user",
				"content": msg.Content,
			})
		case "assistant":
			if len(msg.ToolCalls) > 0 {
				content := make([]map[string]any, 0, len(msg.ToolCalls))
				if msg.Content != "" {
					content = append(content, map[string]any{
						"type": "text",
						"text": msg.Content,
					})
				}
				for _, tc := range msg.ToolCalls {
					content = append(content, map[string]any{
						"type":  "tool_use",
						"id":    tc.ID,
						"name":  tc.Function.Name,
						"input": json.RawMessage(tc.Function.Arguments),
					})
				}
				apiMessages = append(apiMessages, map[string]any{
					"role":    "assistant",
					"content": content,
				})
			} else {
				apiMessages = append(apiMessages, map[string]any{
					"role":    "assistant",
					"content": msg.Content,
				})
			}
		case "tool":
			apiMessages = append(apiMessages, map[string]any{
				"role": "user",
				"content": []map[string]any{
					{
						"type":        "tool_result",
						"tool_use_id": msg.ToolCallID,
						"content":     msg.Content,
					},
				},
			})
		}
	}
	return apiMessages
}

// convertTools maps catalog tools to the API's tool declarations.
func convertTools(tools []*entities.Tool) []map[string]any {
	apiTools := make([]map[string]any, 0, len(tools))
	for _, tool := range tools {
		properties := make(map[string]any)
		for _, param := range tool.Parameters {
			property := map[string]any{
				"type":        param.Type,
				"description": param.Description,
			}
			if param.Type == "array" {
				property["items"] = map[string]any{"type": "string"}
			}
			properties[param.Name] = property
		}
		apiTools = append(apiTools, map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"input_schema": map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   tool.RequiredParameters(),
			},
		})
	}
	return apiTools
}

// Complete sends the conversation and tool declarations, returning the
// model's text content and any tool calls it requested.
func (c *AnthropicClient) Complete(ctx context.Context, messages []*entities.Message, tools []*entities.Tool) (*interfaces.Completion, error) {
	reqBody := map[string]any{
		"model":       c.model,
		"max_tokens":  maxTokens,
		"temperature": 0.0,
		"messages":    convertMessages(messages),
	}
	for _, msg := range messages {
		if msg.Role == "system" {
			reqBody["system"] = msg.Content
			break
		}
	}
	if len(tools) > 0 {
		reqBody["tools"] = convertTools(tools)
	}

	respBody, err := c.post(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	var response struct {
		StopReason string `json:"stop_reason"`
		Content    []struct {
			Type  string          `json:"type"`
			Text  string          `json:"text,omitempty"`
			ID    string          `json:"id"`
			Name  string          `json:"name"`
			Input json.RawMessage `json:"input"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return nil, errs.TransportErrorf("error decoding response: %v", err)
	}

	completion := &interfaces.Completion{}
	for _, block := range response.Content {
		switch block.Type {
		case "text":
			completion.Content += block.Text
		case "tool_use":
			completion.ToolCalls = append(completion.ToolCalls,
				entities.NewToolCall(block.ID, block.Name, string(block.Input)))
		}
	}

	c.logger.Debug("Model completion",
		zap.String("stop_reason", response.StopReason),
		zap.Int("tool_calls", len(completion.ToolCalls)))

	return completion, nil
}

// CompleteText answers a one-shot system+user prompt with plain text.
func (c *AnthropicClient) CompleteText(ctx context.Context, system, user string) (string, error) {
	reqBody := map[string]any{
		"model":       c.model,
		"max_tokens":  maxTokens,
		"temperature": 0.0,
		"system":      system,
		"messages": []map[string]any{
			{"role": "user", "content": user},
		},
	}

	respBody, err := c.post(ctx, reqBody)
	if err != nil {
		return "", err
	}

	var response struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", errs.TransportErrorf("error decoding response: %v", err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}

func (c *AnthropicClient) post(ctx context.Context, reqBody map[string]any) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errs.InternalErrorf("error marshaling request: %v", err)
	}

	var resp *http.Response
	for attempt := 0; attempt < 3; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(jsonBody))
		if err != nil {
			return nil, errs.InternalErrorf("error creating request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", anthropicVersion)

		resp, err = c.httpClient.Do(req)
		if err != nil {
			if attempt < 2 {
				c.logger.Warn("Error making request, retrying", zap.Error(err))
				time.Sleep(time.Duration(attempt+1) * time.Second)
				continue
			}
			return nil, errs.TransportErrorf("error making request: %v", err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			if attempt < 2 {
				time.Sleep(time.Duration(attempt+1) * time.Second)
				continue
			}
			return nil, errs.TransportErrorf("rate limit exceeded")
		}
		break
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.TransportErrorf("error reading response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Model API error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, errs.TransportErrorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

var (
	_ interfaces.ChatModel   = (*AnthropicClient)(nil)
	_ interfaces.SchemaModel = (*AnthropicClient)(nil)
)
