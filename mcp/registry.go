package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Invoker executes a tool against the gateway with inputs that already passed validation.
type Invoker func(ctx context.Context, gw Gateway, inputs map[string]json.RawMessage) (json.RawMessage, error)

// Tool pairs a published definition with the code that runs it.
type Tool struct {
	Definition *sdk.Tool
	Invoke     Invoker

	resolved *jsonschema.Resolved
}

// Name returns the tool's registered name.
func (t *Tool) Name() string {
	return t.Definition.Name
}

// Validate checks inputs against the tool's input schema. Required fields are
// checked first, in schema order, so the error names the first missing field.
func (t *Tool) Validate(inputs map[string]json.RawMessage) error {
	for _, field := range t.Definition.InputSchema.Required {
		raw, ok := inputs[field]
		if !ok || isNull(raw) {
			return missingField(t.Name(), field)
		}
	}

	instance := make(map[string]any, len(inputs))
	for key, raw := range inputs {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return invalidParams(t.Name(), fmt.Sprintf("field '%s': %v", key, err))
		}
		instance[key] = v
	}
	if err := t.resolved.Validate(instance); err != nil {
		return invalidParams(t.Name(), err.Error())
	}
	return nil
}

// Registry is a read-only catalog of tools, kept in declaration order.
type Registry struct {
	tools  []*Tool
	byName map[string]*Tool
}

// NewRegistry builds a registry. Names must be unique and every schema must resolve.
func NewRegistry(tools ...*Tool) (*Registry, error) {
	r := &Registry{
		tools:  make([]*Tool, 0, len(tools)),
		byName: make(map[string]*Tool, len(tools)),
	}
	for _, tool := range tools {
		if tool == nil || tool.Definition == nil {
			return nil, fmt.Errorf("tool definition is required")
		}
		name := tool.Definition.Name
		if name == "" {
			return nil, fmt.Errorf("tool name is required")
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("duplicate tool name %q", name)
		}
		if tool.Invoke == nil {
			return nil, fmt.Errorf("tool %q has no invoker", name)
		}
		if tool.Definition.InputSchema == nil {
			return nil, fmt.Errorf("tool %q has no input schema", name)
		}
		resolved, err := tool.Definition.InputSchema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("tool %q: failed to resolve input schema: %w", name, err)
		}
		tool.resolved = resolved
		r.tools = append(r.tools, tool)
		r.byName[name] = tool
	}
	return r, nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	tool, ok := r.byName[name]
	return tool, ok
}

// Definitions returns the published definitions in declaration order.
func (r *Registry) Definitions() []*sdk.Tool {
	defs := make([]*sdk.Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Definition)
	}
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}
