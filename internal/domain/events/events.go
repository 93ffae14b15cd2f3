package events

import (
	"github.com/flowbridge/flowbridge/internal/domain/entities"
	"github.com/kelindar/event"
)

// Event types
const (
	ToolCallEventType       uint32 = 1
	CatalogRefreshEventType uint32 = 2
)

// ToolCallEventData wraps the ToolCallEvent for publishing
type ToolCallEventData struct {
	Event *entities.ToolCallEvent
}

// CatalogRefreshEventData carries the outcome of a catalog refresh
type CatalogRefreshEventData struct {
	ToolNames []string
}

// Type implements the Event interface
func (t ToolCallEventData) Type() uint32 {
	return ToolCallEventType
}

// Type implements the Event interface
func (c CatalogRefreshEventData) Type() uint32 {
	return CatalogRefreshEventType
}

// PublishToolCallEvent publishes a tool call event
func PublishToolCallEvent(toolEvent *entities.ToolCallEvent) {
	event.Emit(ToolCallEventData{Event: toolEvent})
}

// SubscribeToToolCallEvents subscribes to tool call events
func SubscribeToToolCallEvents(handler func(data ToolCallEventData)) func() {
	return event.On(handler)
}

// PublishCatalogRefreshEvent publishes a catalog refresh event
func PublishCatalogRefreshEvent(toolNames []string) {
	event.Emit(CatalogRefreshEventData{ToolNames: toolNames})
}

// SubscribeToCatalogRefreshEvents subscribes to catalog refresh events
func SubscribeToCatalogRefreshEvents(handler func(data CatalogRefreshEventData)) func() {
	return event.On(handler)
}
