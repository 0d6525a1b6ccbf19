// Package schema turns tool parameter declarations into compiled JSON Schemas
// and checks tool arguments against them.
//
//	s, err := schema.CompileTool(reagent.ToolSpec{
//	    Name: "get_weather",
//	    Parameters: []reagent.Param{
//	        {Name: "city", Type: reagent.ParamString, Required: true},
//	        {Name: "days", Type: reagent.ParamInteger},
//	    },
//	})
//	args := schema.Coerce(spec, map[string]string{"city": "Nanjing", "days": "3"})
//	err = s.Validate(args) // nil
//
// The agent loop passes every argument around as a string. [Coerce] converts
// them to their declared JSON types first, so that "3" satisfies an integer
// parameter but "three" does not.
package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/helloagents/reagent"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a raw JSON Schema plus its compiled validator.
type Schema struct {
	raw      map[string]any
	compiled *jsonschema.Schema
}

// Raw returns the schema as a plain map.
func (s *Schema) Raw() map[string]any {
	if s == nil {
		return nil
	}
	return s.raw
}

// Validate checks data against the schema. A nil Schema accepts everything.
func (s *Schema) Validate(data map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	if err := s.compiled.Validate(data); err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

// ValidationError reports arguments that do not match a schema.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments: %s", flatten(e.Err))
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// flatten collapses the validator's multi-line report to its bullet lines so
// it reads well inside a single observation.
func flatten(err error) string {
	var causes []string
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(line)
		if c, ok := strings.CutPrefix(line, "- "); ok {
			causes = append(causes, c)
		}
	}
	if len(causes) == 0 {
		return err.Error()
	}
	return strings.Join(causes, "; ")
}

// Compile compiles a raw schema map. A nil map yields a nil Schema.
func Compile(raw map[string]any) (*Schema, error) {
	if raw == nil {
		return nil, nil
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(b)))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("tool.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("tool.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Schema{raw: raw, compiled: compiled}, nil
}

// ForTool builds the object schema describing spec's parameters. Unknown
// parameter types are rejected.
func ForTool(spec reagent.ToolSpec) (map[string]any, error) {
	props := make(map[string]*Property, len(spec.Parameters))
	var required []string
	for _, p := range spec.Parameters {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: tool %q has a parameter without a name",
				reagent.ErrInvalidToolSpec, spec.Name)
		}
		if !p.Type.Valid() {
			return nil, fmt.Errorf("%w: parameter %q of tool %q has unsupported type %q",
				reagent.ErrInvalidToolSpec, p.Name, spec.Name, p.Type)
		}
		if _, dup := props[p.Name]; dup {
			return nil, fmt.Errorf("%w: tool %q declares parameter %q twice",
				reagent.ErrInvalidToolSpec, spec.Name, p.Name)
		}
		props[p.Name] = propertyFor(p)
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return Object(props, required...), nil
}

func propertyFor(p reagent.Param) *Property {
	switch p.Type {
	case reagent.ParamInteger:
		return Integer(p.Description)
	case reagent.ParamNumber:
		return Number(p.Description)
	case reagent.ParamBoolean:
		return Boolean(p.Description)
	default:
		return String(p.Description)
	}
}

// CompileTool is ForTool followed by Compile.
func CompileTool(spec reagent.ToolSpec) (*Schema, error) {
	raw, err := ForTool(spec)
	if err != nil {
		return nil, err
	}
	return Compile(raw)
}

// Coerce converts string arguments to the JSON types declared in spec.
// Values that do not parse are left as strings so that validation reports
// them as type mismatches. Arguments not declared in spec are omitted.
func Coerce(spec reagent.ToolSpec, args map[string]string) map[string]any {
	out := make(map[string]any, len(args))
	for _, p := range spec.Parameters {
		v, ok := args[p.Name]
		if !ok {
			continue
		}
		out[p.Name] = coerceValue(p.Type, v)
	}
	return out
}

func coerceValue(t reagent.ParamType, v string) any {
	s := strings.TrimSpace(v)
	switch t {
	case reagent.ParamInteger, reagent.ParamNumber:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case reagent.ParamBoolean:
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return v
}

// Object creates an object schema. Names passed as required are listed in
// the schema's "required" array.
func Object(properties map[string]*Property, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}

	s := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// Property is one entry of an object schema.
type Property struct {
	typ         string
	description string
}

func (p *Property) build() map[string]any {
	m := map[string]any{"type": p.typ}
	if p.description != "" {
		m["description"] = p.description
	}
	return m
}

// String creates a string property.
func String(description string) *Property {
	return &Property{typ: "string", description: description}
}

// Integer creates an integer property.
func Integer(description string) *Property {
	return &Property{typ: "integer", description: description}
}

// Number creates a number property.
func Number(description string) *Property {
	return &Property{typ: "number", description: description}
}

// Boolean creates a boolean property.
func Boolean(description string) *Property {
	return &Property{typ: "boolean", description: description}
}
