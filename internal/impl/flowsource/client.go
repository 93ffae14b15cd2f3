package flowsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flowbridge/flowbridge/internal/domain/entities"
	"github.com/flowbridge/flowbridge/internal/domain/errs"
	"github.com/flowbridge/flowbridge/internal/domain/interfaces"

	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

// Client talks to the workflow platform's REST API and webhook endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, errs.ConfigErrorf("workflow source baseURL cannot be empty")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
		logger:     logger,
	}, nil
}

// ListWorkflows fetches all workflows from the platform.
func (c *Client) ListWorkflows(ctx context.Context) ([]*entities.Workflow, error) {
	body, err := c.apiGet(ctx, "/api/v1/workflows")
	if err != nil {
		return nil, err
	}

	var listing struct {
		Data []*entities.Workflow `json:"data"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, errs.TransportErrorf("error decoding workflow listing: %v", err)
	}
	return listing.Data, nil
}

// GetWorkflow fetches a single workflow by ID.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*entities.Workflow, error) {
	body, err := c.apiGet(ctx, "/api/v1/workflows/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	var workflow entities.Workflow
	if err := json.Unmarshal(body, &workflow); err != nil {
		return nil, errs.TransportErrorf("error decoding workflow %s: %v", id, err)
	}
	return &workflow, nil
}

func (c *Client) apiGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errs.InternalErrorf("error creating request: %v", err)
	}
	req.Header.Set("X-N8N-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errs.TransportErrorf("error fetching %s: %v", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.TransportErrorf("error reading response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Workflow API error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, errs.TransportErrorf("unexpected status %d from %s", resp.StatusCode, path)
	}
	return body, nil
}

// Trigger invokes a webhook with the given payload. It tries an HTTP
// POST with a JSON body first and falls back to a GET with the payload
// as query parameters. Only a failure of both is surfaced, and then as
// an error result rather than an error.
func (c *Client) Trigger(ctx context.Context, webhookURL string, payload map[string]any) *entities.ToolResult {
	if !strings.HasPrefix(webhookURL, "http") {
		webhookURL = c.baseURL + "/" + strings.TrimLeft(webhookURL, "/")
	}

	c.logger.Info("Triggering webhook", zap.String("url", webhookURL))

	data, status, err := c.triggerPost(ctx, webhookURL, payload)
	if err != nil {
		c.logger.Warn("POST request failed, trying GET", zap.Error(err))
		data, status, err = c.triggerGet(ctx, webhookURL, payload)
	}
	if err != nil {
		c.logger.Error("Error triggering webhook", zap.String("url", webhookURL), zap.Error(err))
		result := entities.NewErrorResult(err.Error())
		if status != 0 {
			result.StatusCode = status
			result.Response = string(data)
		}
		return result
	}

	var parsed any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			parsed = string(data)
		}
	}
	return entities.NewSuccessResult(parsed)
}

func (c *Client) triggerPost(ctx context.Context, webhookURL string, payload map[string]any) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("error marshaling payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req)
}

func (c *Client) triggerGet(ctx context.Context, webhookURL string, payload map[string]any) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, webhookURL, nil)
	if err != nil {
		return nil, 0, err
	}

	query := req.URL.Query()
	for key, value := range payload {
		query.Set(key, fmt.Sprintf("%v", value))
	}
	req.URL.RawQuery = query.Encode()

	return c.send(req)
}

func (c *Client) send(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, resp.StatusCode, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, resp.StatusCode, nil
}

var _ interfaces.WorkflowSource = (*Client)(nil)
