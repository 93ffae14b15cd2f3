package entities

// Parameter describes one input accepted by a tool. Type is one of
// "string", "number", "boolean" or "array" (array items are strings).
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Tool is a callable wrapper around one workflow's webhook. Name is the
// catalog key; WebhookURL is the fully resolved invocation target.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Method      string      `json:"method"`
	Path        string      `json:"path"`
	WebhookURL  string      `json:"webhook_url"`
	Parameters  []Parameter `json:"parameters"`
}

// Parameter returns the declared parameter with the given name, or nil.
func (t *Tool) Parameter(name string) *Parameter {
	for i := range t.Parameters {
		if t.Parameters[i].Name == name {
			return &t.Parameters[i]
		}
	}
	return nil
}

// RequiredParameters lists the names of all required parameters.
func (t *Tool) RequiredParameters() []string {
	required := make([]string, 0)
	for _, p := range t.Parameters {
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return required
}
