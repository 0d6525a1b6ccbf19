package reagent

import (
	"context"
	"fmt"
	"strings"
)

// FinishToolName is the reserved terminal action. It is never part of a
// ToolCatalog; the prompt renderer injects it and the agent loop intercepts it.
const FinishToolName = "finish"

// FinishAnswerParam is the sole parameter of the finish action.
const FinishAnswerParam = "answer"

const toolErrorPrefix = "Error executing tool '"

// ToolErrorObservation renders a tool failure the way the executor reports it.
func ToolErrorObservation(name string, err error) string {
	return fmt.Sprintf("%s%s': %v", toolErrorPrefix, name, err)
}

// IsToolError reports whether an observation was produced by
// [ToolErrorObservation].
func IsToolError(observation string) bool {
	return strings.HasPrefix(observation, toolErrorPrefix)
}

// ParamType is the semantic type of a tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
)

// Valid reports whether t is one of the supported parameter types.
func (t ParamType) Valid() bool {
	switch t {
	case ParamString, ParamInteger, ParamNumber, ParamBoolean:
		return true
	}
	return false
}

// Param declares one argument of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
}

// ToolSpec is the declared name, description and ordered parameter list of a
// tool. A ToolSpec is treated as immutable once its tool is registered.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  []Param
}

// Param returns the declared parameter with the given name.
func (s ToolSpec) Param(name string) (Param, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// FinishSpec returns the spec of the reserved finish action.
func FinishSpec() ToolSpec {
	return ToolSpec{
		Name:        FinishToolName,
		Description: "Submit the final answer once you have gathered enough information to answer the question.",
		Parameters: []Param{
			{
				Name:        FinishAnswerParam,
				Type:        ParamString,
				Required:    true,
				Description: "The final answer for the user.",
			},
		},
	}
}

// Tool is an invocable capability with a declared argument schema.
//
// Tools focus purely on business logic. Argument filtering, validation and
// error conversion are handled by the [ToolExecutor]; Call only ever receives
// arguments declared in Spec().Parameters.
type Tool interface {
	// Spec returns the tool's declared schema.
	Spec() ToolSpec

	// Call executes the tool. Returned errors (and panics) are converted into
	// observation strings by the executor, so the agent loop never aborts on a
	// tool failure.
	Call(ctx context.Context, args map[string]string) (string, error)
}

// ToolFunc adapts a plain function into a Tool.
type ToolFunc struct {
	spec ToolSpec
	fn   func(ctx context.Context, args map[string]string) (string, error)
}

// NewToolFunc creates a Tool from spec and fn.
func NewToolFunc(
	spec ToolSpec,
	fn func(ctx context.Context, args map[string]string) (string, error),
) *ToolFunc {
	return &ToolFunc{spec: spec, fn: fn}
}

// Spec returns the tool's declared schema.
func (t *ToolFunc) Spec() ToolSpec {
	return t.spec
}

// Call invokes the wrapped function.
func (t *ToolFunc) Call(ctx context.Context, args map[string]string) (string, error) {
	return t.fn(ctx, args)
}

// ToolCatalog resolves tool names to tools. Implementations must enumerate
// specs in registration order so that prompts are byte-stable across calls.
type ToolCatalog interface {
	// Specs returns the specs of every registered tool in insertion order.
	Specs() []ToolSpec

	// Lookup returns the tool registered under name.
	Lookup(name string) (Tool, bool)
}

// ToolExecutor runs a resolved tool call and always produces an observation.
type ToolExecutor interface {
	// Execute invokes the named tool with args and returns its result as a
	// string. Failures of any kind are reported in the returned string; this
	// method never fails.
	Execute(ctx context.Context, name string, args map[string]string) string
}
