package flowsource

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowbridge/flowbridge/internal/domain/entities"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestListWorkflows(t *testing.T) {
	var gotKey, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-N8N-API-KEY")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"id": "wf-1", "name": "Send Email", "active": true, "nodes": [
				{"name": "Webhook", "type": "n8n-nodes-base.webhook", "parameters": {"path": "emails"}}
			]},
			{"id": "wf-2", "name": "Daily Report", "active": false, "nodes": []}
		]}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "secret-key", zap.NewNop())
	assert.NoError(t, err)

	workflows, err := client.ListWorkflows(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "/api/v1/workflows", gotPath)
	assert.Len(t, workflows, 2)
	assert.Equal(t, "Send Email", workflows[0].Name)
	assert.True(t, workflows[0].Active)
	assert.NotNil(t, workflows[0].WebhookNode())
}

func TestListWorkflows_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "wrong-key", zap.NewNop())
	assert.NoError(t, err)

	_, err = client.ListWorkflows(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGetWorkflow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/workflows/wf-1", r.URL.Path)
		w.Write([]byte(`{"id": "wf-1", "name": "Send Email", "nodes": []}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", zap.NewNop())
	assert.NoError(t, err)

	workflow, err := client.GetWorkflow(context.Background(), "wf-1")

	assert.NoError(t, err)
	assert.Equal(t, "Send Email", workflow.Name)
}

func TestNewClient_EmptyBaseURL(t *testing.T) {
	_, err := NewClient("", "key", zap.NewNop())
	assert.Error(t, err)
}

func TestTrigger_PostSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "Alice", payload["name"])

		w.Write([]byte(`{"sent": true}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", zap.NewNop())
	assert.NoError(t, err)

	result := client.Trigger(context.Background(), server.URL+"/webhook/emails", map[string]any{"name": "Alice"})

	assert.Equal(t, entities.ResultSuccess, result.Status)
	assert.Equal(t, map[string]any{"sent": true}, result.Data)
}

func TestTrigger_FallsBackToGet(t *testing.T) {
	var methods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		if r.Method == http.MethodPost {
			http.Error(w, "POST not registered for this webhook", http.StatusNotFound)
			return
		}
		assert.Equal(t, "Alice", r.URL.Query().Get("name"))
		w.Write([]byte(`{"sent": true}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", zap.NewNop())
	assert.NoError(t, err)

	result := client.Trigger(context.Background(), server.URL+"/webhook/emails", map[string]any{"name": "Alice"})

	assert.Equal(t, []string{http.MethodPost, http.MethodGet}, methods)
	assert.Equal(t, entities.ResultSuccess, result.Status)
}

func TestTrigger_BothMethodsFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "webhook not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", zap.NewNop())
	assert.NoError(t, err)

	result := client.Trigger(context.Background(), server.URL+"/webhook/missing", nil)

	assert.True(t, result.IsError())
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
	assert.Contains(t, result.Response, "webhook not found")
}

func TestTrigger_RelativeURLResolvedAgainstBase(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`"ok"`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", zap.NewNop())
	assert.NoError(t, err)

	result := client.Trigger(context.Background(), "/webhook/emails", nil)

	assert.Equal(t, "/webhook/emails", gotPath)
	assert.Equal(t, entities.ResultSuccess, result.Status)
}

func TestTrigger_NonJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Workflow was started"))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key", zap.NewNop())
	assert.NoError(t, err)

	result := client.Trigger(context.Background(), server.URL+"/webhook/emails", nil)

	assert.Equal(t, entities.ResultSuccess, result.Status)
	assert.Equal(t, "Workflow was started", result.Data)
}
