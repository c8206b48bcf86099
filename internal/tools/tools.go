// Package tools implements the agent-facing tool surface: applying diffs,
// file and directory operations, glob search, command execution, HTTP fetch
// and file checks. Tools are registered by name with a JSON Schema describing
// their arguments; every invocation is validated against that schema before
// the handler runs.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Handler executes a tool call with already-validated raw arguments.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool couples a tool name with its argument schema and handler.
type Tool struct {
	Name        string
	Description string
	Schema      string
	Handler     Handler
}

// Info is the externally visible description of a registered tool.
type Info struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      json.RawMessage `json:"schema"`
}

// ValidationError reports argument payloads rejected by a tool's schema.
type ValidationError struct {
	Tool   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("arguments for %s failed validation", e.Tool)
	}
	return fmt.Sprintf("arguments for %s failed validation: %s", e.Tool, strings.Join(e.Issues, "; "))
}

// UnknownToolError reports invocations of names that were never registered.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Tool)
}

// Registry holds the registered tools and their compiled schemas.
type Registry struct {
	order    []string
	tools    map[string]Tool
	compiled map[string]*gojsonschema.Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		compiled: make(map[string]*gojsonschema.Schema),
	}
}

// Register adds a tool, compiling its argument schema up front so invalid
// schemas fail at startup rather than on first use.
func (r *Registry) Register(tool Tool) error {
	name := strings.TrimSpace(tool.Name)
	if name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if tool.Handler == nil {
		return fmt.Errorf("tool %s has no handler", name)
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s is already registered", name)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(tool.Schema))
	if err != nil {
		return fmt.Errorf("compile schema for %s: %w", name, err)
	}
	r.order = append(r.order, name)
	r.tools[name] = tool
	r.compiled[name] = schema
	return nil
}

// Invoke validates args against the tool's schema and runs its handler.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, &UnknownToolError{Tool: name}
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	outcome, err := r.compiled[name].Validate(gojsonschema.NewBytesLoader(args))
	if err != nil {
		return nil, &ValidationError{Tool: name, Issues: []string{err.Error()}}
	}
	if !outcome.Valid() {
		issues := make([]string, 0, len(outcome.Errors()))
		for _, issue := range outcome.Errors() {
			issues = append(issues, issue.String())
		}
		return nil, &ValidationError{Tool: name, Issues: issues}
	}

	return tool.Handler(ctx, args)
}

// Describe lists the registered tools in registration order.
func (r *Registry) Describe() []Info {
	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		infos = append(infos, Info{
			Name:        tool.Name,
			Description: tool.Description,
			Schema:      json.RawMessage(tool.Schema),
		})
	}
	return infos
}
