package interfaces

import (
	"context"

	"github.com/flowbridge/flowbridge/internal/domain/entities"
)

// WorkflowSource exposes the workflow platform's listing and
// webhook-trigger operations.
type WorkflowSource interface {
	ListWorkflows(ctx context.Context) ([]*entities.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (*entities.Workflow, error)
	// Trigger invokes a webhook with the given payload. Transport
	// failures are folded into the returned result, never an error.
	Trigger(ctx context.Context, url string, payload map[string]any) *entities.ToolResult
}
