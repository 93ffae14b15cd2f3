package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowWebhookNode(t *testing.T) {
	workflow := &Workflow{
		ID:   "wf-1",
		Name: "Send Email",
		Nodes: []Node{
			{Name: "Webhook", Type: "n8n-nodes-base.webhook", Parameters: map[string]any{"path": "emails"}},
			{Name: "Code", Type: "n8n-nodes-base.code", Parameters: map[string]any{"jsCode": "return payload;"}},
			{Name: "Send", Type: "n8n-nodes-base.emailSend"},
		},
	}

	webhook := workflow.WebhookNode()
	assert.NotNil(t, webhook)
	assert.Equal(t, "emails", webhook.StringParameter("path"))

	code := workflow.CodeNodes()
	assert.Len(t, code, 1)
	assert.Equal(t, "Code", code[0].Name)
}

func TestWorkflowWithoutWebhookNode(t *testing.T) {
	workflow := &Workflow{ID: "wf-2", Nodes: []Node{{Name: "Send", Type: "n8n-nodes-base.emailSend"}}}
	assert.Nil(t, workflow.WebhookNode())
}

func TestNodeStringParameter(t *testing.T) {
	node := Node{Parameters: map[string]any{"path": "emails", "depth": 3}}

	assert.Equal(t, "emails", node.StringParameter("path"))
	assert.Equal(t, "", node.StringParameter("depth"))
	assert.Equal(t, "", node.StringParameter("missing"))
}

func TestToolParameterLookup(t *testing.T) {
	tool := &Tool{
		Name: "send_email",
		Parameters: []Parameter{
			{Name: "name", Type: "string", Required: true},
			{Name: "attendees", Type: "array"},
		},
	}

	assert.NotNil(t, tool.Parameter("attendees"))
	assert.Nil(t, tool.Parameter("subject"))
	assert.Equal(t, []string{"name"}, tool.RequiredParameters())
}

func TestNewToolResultMessage(t *testing.T) {
	msg := NewToolResultMessage("toolu_1", `{"status":"success"}`)

	assert.Equal(t, "tool", msg.Role)
	assert.Equal(t, "toolu_1", msg.ToolCallID)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestToolResultStatus(t *testing.T) {
	assert.False(t, NewSuccessResult("ok").IsError())
	assert.True(t, NewErrorResult("boom").IsError())
}
