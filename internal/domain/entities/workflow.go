package entities

import "strings"

const (
	webhookNodeSuffix = ".webhook"
	codeNodeSuffix    = ".code"
)

// Node is one step in a workflow graph. Parameters is the raw node
// configuration as returned by the workflow platform.
type Node struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Parameters map[string]any `json:"parameters"`
}

// IsWebhook reports whether the node is a webhook trigger.
func (n *Node) IsWebhook() bool {
	return strings.HasSuffix(n.Type, webhookNodeSuffix)
}

// IsCode reports whether the node holds an inline code snippet.
func (n *Node) IsCode() bool {
	return strings.HasSuffix(n.Type, codeNodeSuffix)
}

// StringParameter returns the named node parameter as a string, or ""
// when absent or not a string.
func (n *Node) StringParameter(name string) string {
	v, ok := n.Parameters[name]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Workflow is an externally defined automation graph triggered via an
// HTTP webhook.
type Workflow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	Nodes  []Node `json:"nodes"`
}

// WebhookNode returns the first webhook node in the workflow, or nil.
func (w *Workflow) WebhookNode() *Node {
	for i := range w.Nodes {
		if w.Nodes[i].IsWebhook() {
			return &w.Nodes[i]
		}
	}
	return nil
}

// CodeNodes returns all inline-code nodes in the workflow.
func (w *Workflow) CodeNodes() []*Node {
	var nodes []*Node
	for i := range w.Nodes {
		if w.Nodes[i].IsCode() {
			nodes = append(nodes, &w.Nodes[i])
		}
	}
	return nodes
}
