package toolchain

import (
	"context"
	"fmt"
	"sort"

	"github.com/helloagents/reagent"
	"github.com/helloagents/reagent/schema"
	"go.uber.org/zap"
)

// Executor runs tool calls resolved from a catalog and turns every outcome,
// including failures, into an observation string.
//
// For each call the executor:
//  1. looks the tool up (a miss becomes an error observation)
//  2. drops arguments the tool does not declare
//  3. validates the remaining arguments against the tool's JSON Schema
//  4. calls the tool, converting returned errors and panics into
//     "Error executing tool '<name>': <message>"
type Executor struct {
	catalog reagent.ToolCatalog
	logger  *zap.Logger
}

// NewExecutor creates an Executor over catalog.
func NewExecutor(catalog reagent.ToolCatalog) *Executor {
	return &Executor{catalog: catalog, logger: zap.NewNop()}
}

// WithLogger sets the logger used for dropped arguments and tool failures.
func (e *Executor) WithLogger(logger *zap.Logger) *Executor {
	if logger != nil {
		e.logger = logger
	}
	return e
}

// Execute invokes the named tool. It never returns an error; failures are
// reported in the returned observation.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]string) string {
	if e.catalog == nil {
		return reagent.ToolErrorObservation(name, fmt.Errorf("%w: %s", reagent.ErrUnknownTool, name))
	}
	tool, ok := e.catalog.Lookup(name)
	if !ok {
		return reagent.ToolErrorObservation(name, fmt.Errorf("%w: %s", reagent.ErrUnknownTool, name))
	}

	spec := tool.Spec()
	declared := e.filter(spec, args)

	if err := e.validate(spec, declared); err != nil {
		e.logger.Debug("tool arguments rejected",
			zap.String("tool", name),
			zap.Error(err),
		)
		return reagent.ToolErrorObservation(name, fmt.Errorf("%w: %v", reagent.ErrInvalidArgument, err))
	}

	out, err := e.call(ctx, tool, declared)
	if err != nil {
		e.logger.Warn("tool failed", zap.String("tool", name), zap.Error(err))
		return reagent.ToolErrorObservation(name, err)
	}
	return out
}

// filter keeps only the arguments declared in spec.
func (e *Executor) filter(spec reagent.ToolSpec, args map[string]string) map[string]string {
	out := make(map[string]string, len(spec.Parameters))
	var dropped []string
	for k, v := range args {
		if _, ok := spec.Param(k); ok {
			out[k] = v
		} else {
			dropped = append(dropped, k)
		}
	}
	if len(dropped) > 0 {
		sort.Strings(dropped)
		e.logger.Debug("dropping undeclared tool arguments",
			zap.String("tool", spec.Name),
			zap.Strings("args", dropped),
		)
	}
	return out
}

type schemaSource interface {
	Schema(name string) (*schema.Schema, bool)
}

func (e *Executor) validate(spec reagent.ToolSpec, args map[string]string) error {
	var s *schema.Schema
	if src, ok := e.catalog.(schemaSource); ok {
		s, _ = src.Schema(spec.Name)
	}
	if s == nil {
		compiled, err := schema.CompileTool(spec)
		if err != nil {
			return err
		}
		s = compiled
	}
	return s.Validate(schema.Coerce(spec, args))
}

func (e *Executor) call(
	ctx context.Context,
	tool reagent.Tool,
	args map[string]string,
) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", reagent.ErrToolPanic, r)
		}
	}()
	return tool.Call(ctx, args)
}

// Compile-time check that Executor implements reagent.ToolExecutor.
var _ reagent.ToolExecutor = (*Executor)(nil)
