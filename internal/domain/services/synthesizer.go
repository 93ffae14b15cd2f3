package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/flowbridge/flowbridge/internal/domain/entities"
	"github.com/flowbridge/flowbridge/internal/domain/errs"
	"github.com/flowbridge/flowbridge/internal/domain/interfaces"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const synthesisSystemPrompt = `You are an expert at interpreting automation workflows and converting them to tool definitions.

Analyze the workflow to create a tool definition that can be used by an AI agent.

IMPORTANT REQUIREMENTS:
1. The tool definition MUST be valid JSON with these fields: name, description, path, input_schema
2. Extract parameter names and types from code nodes that process input data
3. Only mark parameters as required if they are used without fallback values in the code
4. The 'path' field should match the webhook node's path parameter
5. The 'name' should be descriptive and related to the workflow's purpose
6. DO NOT add any parameters that are not explicitly used in the code nodes
7. If a parameter has a default value (e.g., 'Guest' for name), make it optional

EXAMPLE OUTPUT:
{
  "name": "send_email",
  "description": "Send an email to a recipient",
  "method": "POST",
  "path": "emails",
  "input_schema": {
    "type": "object",
    "properties": {
      "name": {
        "type": "string",
        "description": "Name of the recipient (optional, defaults to 'Guest')"
      },
      "email": {
        "type": "string",
        "description": "Email address of the recipient"
      }
    },
    "required": ["email"]
  }
}

RESPOND ONLY WITH THE JSON TOOL DEFINITION AND NOTHING ELSE.`

var (
	paramAccessPattern = regexp.MustCompile(`(?:payload|json)\.(\w+)`)
	nameCharPattern    = regexp.MustCompile(`[^a-z0-9_]`)
)

// toolDefinition is the shape the model must emit for one workflow.
type toolDefinition struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Method      string `mapstructure:"method"`
	Path        string `mapstructure:"path"`
	InputSchema struct {
		Type       string `mapstructure:"type"`
		Properties map[string]struct {
			Type        string `mapstructure:"type"`
			Description string `mapstructure:"description"`
		} `mapstructure:"properties"`
		Required []string `mapstructure:"required"`
	} `mapstructure:"input_schema"`
}

// Synthesizer converts one workflow definition into a callable tool by
// delegating schema derivation to a language model.
type Synthesizer struct {
	model          interfaces.SchemaModel
	webhookBaseURL string
	env            string
	logger         *zap.Logger
}

func NewSynthesizer(model interfaces.SchemaModel, webhookBaseURL, env string, logger *zap.Logger) *Synthesizer {
	return &Synthesizer{
		model:          model,
		webhookBaseURL: strings.TrimRight(webhookBaseURL, "/"),
		env:            strings.ToLower(env),
		logger:         logger,
	}
}

// Synthesize derives a tool from the workflow, or returns an error when
// the workflow cannot yield one. Callers skip failed workflows and
// continue; a single failure never aborts a refresh. There are no
// retries against the model within one call.
func (s *Synthesizer) Synthesize(ctx context.Context, workflow *entities.Workflow) (*entities.Tool, error) {
	webhookNode := workflow.WebhookNode()
	if webhookNode == nil {
		return nil, errs.SynthesisErrorf("no webhook node found in workflow %s", workflow.ID)
	}
	if webhookNode.StringParameter("path") == "" {
		return nil, errs.SynthesisErrorf("no webhook path found in workflow %s", workflow.ID)
	}

	serialized, err := json.Marshal(workflow)
	if err != nil {
		return nil, errs.SynthesisErrorf("error serializing workflow %s: %v", workflow.ID, err)
	}

	systemPrompt := synthesisSystemPrompt
	if hints := s.buildHints(workflow); hints != "" {
		systemPrompt += "\n\nHINTS:\n" + hints
	}
	userPrompt := fmt.Sprintf("Convert this workflow to a tool definition:\n\nWorkflow Data:\n%s", serialized)

	reply, err := s.model.CompleteText(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, errs.SynthesisErrorf("model invocation failed for workflow %s: %v", workflow.ID, err)
	}

	definition, err := parseToolDefinition(reply)
	if err != nil {
		s.logger.Warn("Failed to parse tool definition",
			zap.String("workflow_id", workflow.ID),
			zap.String("workflow_name", workflow.Name),
			zap.Error(err))
		return nil, err
	}

	tool := s.buildTool(definition)
	if tool.Name == "" || tool.WebhookURL == "" {
		return nil, errs.SynthesisErrorf("workflow %s yielded a tool without a name or target", workflow.ID)
	}

	s.logger.Info("Synthesized tool",
		zap.String("workflow_id", workflow.ID),
		zap.String("tool", tool.Name),
		zap.String("webhook_url", tool.WebhookURL))

	return tool, nil
}

// buildHints mines code nodes for payload.<name> / json.<name> access
// patterns and inline "<name> || <default>" fallbacks. The output is
// advisory context for the model, never ground truth.
func (s *Synthesizer) buildHints(workflow *entities.Workflow) string {
	var hints []string

	if node := workflow.WebhookNode(); node != nil {
		if path := node.StringParameter("path"); path != "" {
			hints = append(hints, fmt.Sprintf("The webhook path is '%s'", path))
		}
	}

	type paramHint struct {
		defaultValue string
		hasDefault   bool
	}
	params := make(map[string]paramHint)
	for _, node := range workflow.CodeNodes() {
		code := node.StringParameter("jsCode")
		if code == "" {
			continue
		}
		for _, match := range paramAccessPattern.FindAllStringSubmatch(code, -1) {
			name := match[1]
			if _, seen := params[name]; seen {
				continue
			}
			hint := paramHint{}
			defaultPattern := regexp.MustCompile(name + `\s*\|\|\s*('[^']*'|"[^"]*"|\w+)`)
			if m := defaultPattern.FindStringSubmatch(code); m != nil {
				hint.hasDefault = true
				hint.defaultValue = m[1]
			}
			params[name] = hint
		}
	}

	if len(params) > 0 {
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)

		lines := make([]string, 0, len(names))
		for _, name := range names {
			suffix := ""
			if params[name].hasDefault {
				suffix = fmt.Sprintf(" (has default: %s)", params[name].defaultValue)
			}
			lines = append(lines, "- "+name+suffix)
		}
		hints = append(hints, "Parameters found in code:\n"+strings.Join(lines, "\n"))
	}

	return strings.Join(hints, "\n")
}

// parseToolDefinition extracts and validates the model's JSON reply.
// The whole reply is tried first, then the outermost {...} span.
func parseToolDefinition(reply string) (*toolDefinition, error) {
	var rawDef map[string]any
	if err := json.Unmarshal([]byte(reply), &rawDef); err != nil {
		start := strings.Index(reply, "{")
		end := strings.LastIndex(reply, "}")
		if start < 0 || end <= start {
			return nil, errs.SynthesisErrorf("no JSON object found in model reply")
		}
		if err := json.Unmarshal([]byte(reply[start:end+1]), &rawDef); err != nil {
			return nil, errs.SynthesisErrorf("failed to parse model reply as JSON: %v", err)
		}
	}

	for _, field := range []string{"name", "description", "path", "input_schema"} {
		if _, ok := rawDef[field]; !ok {
			return nil, errs.SynthesisErrorf("model reply missing required field %q", field)
		}
	}
	schema, ok := rawDef["input_schema"].(map[string]any)
	if !ok {
		return nil, errs.SynthesisErrorf("input_schema is not an object")
	}
	if _, ok := schema["properties"]; !ok {
		return nil, errs.SynthesisErrorf("input_schema has no properties")
	}

	var definition toolDefinition
	if err := mapstructure.Decode(rawDef, &definition); err != nil {
		return nil, errs.SynthesisErrorf("invalid tool definition: %v", err)
	}
	return &definition, nil
}

// buildTool turns a validated definition into a catalog tool with a
// fully resolved invocation target.
func (s *Synthesizer) buildTool(definition *toolDefinition) *entities.Tool {
	required := make(map[string]bool, len(definition.InputSchema.Required))
	for _, name := range definition.InputSchema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(definition.InputSchema.Properties))
	for name := range definition.InputSchema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	parameters := make([]entities.Parameter, 0, len(names))
	for _, name := range names {
		property := definition.InputSchema.Properties[name]
		paramType := property.Type
		if paramType == "" {
			paramType = "string"
		}
		parameters = append(parameters, entities.Parameter{
			Name:        name,
			Type:        paramType,
			Description: property.Description,
			Required:    required[name],
		})
	}

	method := definition.Method
	if method == "" {
		method = "POST"
	}

	return &entities.Tool{
		Name:        sanitizeName(definition.Name),
		Description: definition.Description,
		Method:      method,
		Path:        definition.Path,
		WebhookURL:  s.resolveWebhookURL(definition.Path),
		Parameters:  parameters,
	}
}

// resolveWebhookURL combines the configured base URL, the environment
// prefix and the tool's declared path. The test environment uses the
// platform's test-webhook prefix.
func (s *Synthesizer) resolveWebhookURL(path string) string {
	if path == "" {
		return ""
	}
	prefix := "webhook"
	if s.env == "test" {
		prefix = "webhook-test"
	}
	return fmt.Sprintf("%s/%s/%s", s.webhookBaseURL, prefix, strings.TrimLeft(path, "/"))
}

// sanitizeName lowercases, replaces spaces with underscores and strips
// anything outside [a-z0-9_].
func sanitizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	return nameCharPattern.ReplaceAllString(name, "")
}
