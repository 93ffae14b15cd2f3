package services

import (
	"context"
	"sync"

	"github.com/flowbridge/flowbridge/internal/domain/entities"
	"github.com/flowbridge/flowbridge/internal/domain/events"
	"github.com/flowbridge/flowbridge/internal/domain/interfaces"
	"github.com/flowbridge/flowbridge/internal/metrics"

	"go.uber.org/zap"
)

// Catalog holds the current set of synthesized tools keyed by name and
// mediates all webhook calls through the workflow source. Refresh
// replaces the whole catalog atomically: a new set is built first and
// published under the lock, so readers never observe a half-rebuilt one.
type Catalog struct {
	source      interfaces.WorkflowSource
	synthesizer *Synthesizer
	logger      *zap.Logger

	mu    sync.RWMutex
	tools map[string]*entities.Tool
	order []string
}

func NewCatalog(source interfaces.WorkflowSource, synthesizer *Synthesizer, logger *zap.Logger) *Catalog {
	return &Catalog{
		source:      source,
		synthesizer: synthesizer,
		logger:      logger,
		tools:       make(map[string]*entities.Tool),
	}
}

// Refresh discards the previous catalog and resynthesizes every tool
// from the current workflow listing. Workflows that fail synthesis are
// skipped; partial failures produce a smaller catalog, never a mixed
// stale/fresh one. Returns the number of tools registered.
func (c *Catalog) Refresh(ctx context.Context) (int, error) {
	workflows, err := c.source.ListWorkflows(ctx)
	if err != nil {
		return 0, err
	}

	fresh := make(map[string]*entities.Tool, len(workflows))
	order := make([]string, 0, len(workflows))
	for _, workflow := range workflows {
		tool, err := c.synthesizer.Synthesize(ctx, workflow)
		if err != nil {
			c.logger.Warn("Skipping workflow",
				zap.String("workflow_id", workflow.ID),
				zap.String("workflow_name", workflow.Name),
				zap.Error(err))
			metrics.SynthesesTotal.WithLabelValues("skipped").Inc()
			continue
		}
		if _, exists := fresh[tool.Name]; !exists {
			order = append(order, tool.Name)
		}
		fresh[tool.Name] = tool
		metrics.SynthesesTotal.WithLabelValues("registered").Inc()
		c.logger.Info("Registered tool",
			zap.String("tool", tool.Name),
			zap.String("webhook_url", tool.WebhookURL))
	}

	c.mu.Lock()
	c.tools = fresh
	c.order = order
	c.mu.Unlock()

	metrics.CatalogSize.Set(float64(len(fresh)))
	events.PublishCatalogRefreshEvent(order)
	c.logger.Info("Catalog refreshed",
		zap.Int("workflows", len(workflows)),
		zap.Int("tools", len(fresh)))

	return len(fresh), nil
}

// List returns all catalog entries in insertion order from the last
// refresh.
func (c *Catalog) List() []*entities.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tools := make([]*entities.Tool, 0, len(c.order))
	for _, name := range c.order {
		tools = append(tools, c.tools[name])
	}
	return tools
}

// Get returns the named tool, or nil when absent.
func (c *Catalog) Get(name string) *entities.Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tools[name]
}

// Execute normalizes params against the tool's schema and triggers its
// webhook. A missing tool and any transport failure both come back as
// error results, never errors: the conversation loop must not need to
// handle transport-layer failures.
func (c *Catalog) Execute(ctx context.Context, name string, params map[string]any) *entities.ToolResult {
	tool := c.Get(name)
	if tool == nil {
		c.logger.Warn("Tool not found", zap.String("tool", name))
		metrics.ToolExecutionsTotal.WithLabelValues(name, entities.ResultError).Inc()
		return entities.NewErrorResult("Tool '" + name + "' not found")
	}

	normalized := NormalizeParams(tool, params)
	c.logger.Info("Executing tool",
		zap.String("tool", name),
		zap.Any("params", normalized))

	result := c.source.Trigger(ctx, tool.WebhookURL, normalized)
	metrics.ToolExecutionsTotal.WithLabelValues(name, result.Status).Inc()
	return result
}
