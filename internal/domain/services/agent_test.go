package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/flowbridge/flowbridge/internal/domain/entities"
	"github.com/flowbridge/flowbridge/internal/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// scriptedChatModel replays a fixed sequence of completions, then keeps
// repeating the last one.
type scriptedChatModel struct {
	completions []*interfaces.Completion
	err         error
	calls       int
}

func (m *scriptedChatModel) Complete(ctx context.Context, messages []*entities.Message, tools []*entities.Tool) (*interfaces.Completion, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	i := m.calls - 1
	if i >= len(m.completions) {
		i = len(m.completions) - 1
	}
	return m.completions[i], nil
}

// loopingChatModel asks for a tool call on every turn, no matter what.
type loopingChatModel struct {
	calls int
}

func (m *loopingChatModel) Complete(ctx context.Context, messages []*entities.Message, tools []*entities.Tool) (*interfaces.Completion, error) {
	m.calls++
	return &interfaces.Completion{
		ToolCalls: []entities.ToolCall{
			entities.NewToolCall(fmt.Sprintf("call-%d", m.calls), "first_tool", "{}"),
		},
	}, nil
}

const sendEmailReply = `{
	"name": "send_email",
	"description": "Send a welcome email",
	"method": "POST",
	"path": "emails",
	"input_schema": {
		"type": "object",
		"properties": {
			"name": {"type": "string", "description": "Recipient name"},
			"attendees": {"type": "array", "description": "Email addresses"}
		},
		"required": ["name"]
	}
}`

func TestAgentProcessMessage_EndToEnd(t *testing.T) {
	source := new(mockWorkflowSource)
	source.On("ListWorkflows", mock.Anything).Return([]*entities.Workflow{
		simpleWorkflow("wf-1", "Send Email", "emails"),
	}, nil)
	source.On("Trigger", mock.Anything, "https://flow.example.com/webhook/emails", map[string]any{
		"name":      "Alice",
		"attendees": []string{"a@example.com", "b@example.com"},
	}).Return(entities.NewSuccessResult(map[string]any{"sent": true}))

	catalog := newTestCatalog(source, map[string]string{"wf-1": sendEmailReply})
	_, err := catalog.Refresh(context.Background())
	assert.NoError(t, err)

	model := &scriptedChatModel{completions: []*interfaces.Completion{
		{ToolCalls: []entities.ToolCall{
			entities.NewToolCall("call-1", "send_email",
				`{"name": "Alice", "attendees": "[\"a@example.com\", \"b@example.com\"]"}`),
		}},
		{Content: "Email sent to Alice."},
	}}

	agent := NewAgent(model, catalog, zap.NewNop())
	answer := agent.ProcessMessage(context.Background(), "send a welcome email to Alice")

	assert.Equal(t, "Email sent to Alice.", answer)
	assert.Equal(t, 2, model.calls)
	source.AssertExpectations(t)
}

func TestAgentProcessMessage_ToolCallCeiling(t *testing.T) {
	source := new(mockWorkflowSource)
	source.On("ListWorkflows", mock.Anything).Return([]*entities.Workflow{
		simpleWorkflow("wf-1", "First", "first"),
	}, nil)
	source.On("Trigger", mock.Anything, mock.Anything, mock.Anything).
		Return(entities.NewSuccessResult("ok"))

	catalog := newTestCatalog(source, map[string]string{"wf-1": toolReply("first_tool", "first")})
	_, err := catalog.Refresh(context.Background())
	assert.NoError(t, err)

	model := &loopingChatModel{}
	agent := NewAgent(model, catalog, zap.NewNop())
	answer := agent.ProcessMessage(context.Background(), "keep going")

	// The tenth tool-call-bearing reply trips the ceiling before its
	// calls run, so nine executions happen in total.
	assert.Equal(t, 10, model.calls)
	source.AssertNumberOfCalls(t, "Trigger", 9)
	assert.NotEmpty(t, answer)
}

func TestAgentProcessMessage_ModelFailure(t *testing.T) {
	source := new(mockWorkflowSource)
	catalog := newTestCatalog(source, nil)

	model := &scriptedChatModel{err: assert.AnError}
	agent := NewAgent(model, catalog, zap.NewNop())
	answer := agent.ProcessMessage(context.Background(), "hello")

	assert.Contains(t, answer, "Error processing your request:")
	assert.Contains(t, answer, assert.AnError.Error())
}

func TestAgentProcessMessage_FallsBackToToolResult(t *testing.T) {
	source := new(mockWorkflowSource)
	source.On("ListWorkflows", mock.Anything).Return([]*entities.Workflow{
		simpleWorkflow("wf-1", "First", "first"),
	}, nil)
	source.On("Trigger", mock.Anything, mock.Anything, mock.Anything).
		Return(entities.NewSuccessResult("done"))

	catalog := newTestCatalog(source, map[string]string{"wf-1": toolReply("first_tool", "first")})
	_, err := catalog.Refresh(context.Background())
	assert.NoError(t, err)

	// The model never produces final text, so the answer is the last
	// tool result.
	model := &scriptedChatModel{completions: []*interfaces.Completion{
		{ToolCalls: []entities.ToolCall{entities.NewToolCall("call-1", "first_tool", "{}")}},
		{},
	}}
	agent := NewAgent(model, catalog, zap.NewNop())
	answer := agent.ProcessMessage(context.Background(), "run it")

	assert.Contains(t, answer, `"status":"success"`)
}

func TestAgentProcessMessage_NoResponse(t *testing.T) {
	source := new(mockWorkflowSource)
	catalog := newTestCatalog(source, nil)

	model := &scriptedChatModel{completions: []*interfaces.Completion{{}}}
	agent := NewAgent(model, catalog, zap.NewNop())
	answer := agent.ProcessMessage(context.Background(), "")

	assert.Equal(t, "No response generated", answer)
}

func TestAgentProcessMessage_MalformedArguments(t *testing.T) {
	source := new(mockWorkflowSource)
	source.On("ListWorkflows", mock.Anything).Return([]*entities.Workflow{
		simpleWorkflow("wf-1", "First", "first"),
	}, nil)
	source.On("Trigger", mock.Anything, mock.Anything, map[string]any{}).
		Return(entities.NewSuccessResult("ok"))

	catalog := newTestCatalog(source, map[string]string{"wf-1": toolReply("first_tool", "first")})
	_, err := catalog.Refresh(context.Background())
	assert.NoError(t, err)

	model := &scriptedChatModel{completions: []*interfaces.Completion{
		{ToolCalls: []entities.ToolCall{entities.NewToolCall("call-1", "first_tool", "not json")}},
		{Content: "All done."},
	}}
	agent := NewAgent(model, catalog, zap.NewNop())
	answer := agent.ProcessMessage(context.Background(), "run it")

	assert.Equal(t, "All done.", answer)
	source.AssertExpectations(t)
}

func TestAgentRefreshTools(t *testing.T) {
	source := new(mockWorkflowSource)
	source.On("ListWorkflows", mock.Anything).Return([]*entities.Workflow{
		simpleWorkflow("wf-1", "First", "first"),
	}, nil)

	catalog := newTestCatalog(source, map[string]string{"wf-1": toolReply("first_tool", "first")})
	agent := NewAgent(&scriptedChatModel{}, catalog, zap.NewNop())

	assert.Equal(t, "Successfully refreshed tools. 1 tools available.",
		agent.RefreshTools(context.Background()))
}

func TestAgentRefreshTools_Failure(t *testing.T) {
	source := new(mockWorkflowSource)
	source.On("ListWorkflows", mock.Anything).Return(nil, assert.AnError)

	catalog := newTestCatalog(source, nil)
	agent := NewAgent(&scriptedChatModel{}, catalog, zap.NewNop())

	answer := agent.RefreshTools(context.Background())
	assert.Contains(t, answer, "Error refreshing tools:")
}
