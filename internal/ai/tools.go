package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

// ToolHandler is the execution function for a read tool.
// It receives the raw JSON arguments from the model and returns a JSON-encoded result string.
// Write tools do not have handlers; they are proposed to the user for confirmation.
type ToolHandler func(ctx context.Context, args json.RawMessage) (string, error)

// ToolDefinition describes a single tool in the registry.
// Read tools execute autonomously during the agent loop.
// Write tools terminate the loop and surface a proposed action for human confirmation.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any // JSON Schema for the tool's input parameters
	IsReadTool  bool           // true = execute autonomously; false = requires human confirmation
	Handler     ToolHandler    // non-nil for read tools only; nil for write tools
}

// ToolRegistry holds the tools offered to the agent for one call, in registration order.
// Every read tool has a handler and no write tool does, so the loop can always tell what
// to run and what to propose.
type ToolRegistry struct {
	tools []ToolDefinition
	index map[string]int
}

// NewToolRegistry creates an empty ToolRegistry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{index: make(map[string]int)}
}

// Register adds a tool. Names must be unique.
func (r *ToolRegistry) Register(t ToolDefinition) error {
	switch {
	case t.Name == "":
		return errors.New("tool name is required")
	case t.IsReadTool && t.Handler == nil:
		return fmt.Errorf("read tool %q has no handler", t.Name)
	case !t.IsReadTool && t.Handler != nil:
		return fmt.Errorf("write tool %q must not have a handler", t.Name)
	}
	if _, dup := r.index[t.Name]; dup {
		return fmt.Errorf("tool %q registered twice", t.Name)
	}
	r.index[t.Name] = len(r.tools)
	r.tools = append(r.tools, t)
	return nil
}

// MustRegister is Register for statically known tool sets.
func (r *ToolRegistry) MustRegister(t ToolDefinition) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get returns the ToolDefinition for a given tool name, and whether it was found.
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	i, ok := r.index[name]
	if !ok {
		return ToolDefinition{}, false
	}
	return r.tools[i], true
}

// Len reports how many tools are registered.
func (r *ToolRegistry) Len() int { return len(r.tools) }

// Names splits the registered tool names into those that run autonomously and those
// that must be confirmed.
func (r *ToolRegistry) Names() (reads, writes []string) {
	for _, t := range r.tools {
		if t.IsReadTool {
			reads = append(reads, t.Name)
		} else {
			writes = append(writes, t.Name)
		}
	}
	return reads, writes
}

// ToOpenAITools converts the registry to the OpenAI Responses API tool format.
// Both read and write tools are included; the read/write distinction is enforced in
// the agent loop, not in the API payload.
func (r *ToolRegistry) ToOpenAITools() []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}
