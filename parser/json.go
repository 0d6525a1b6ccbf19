// Package parser extracts the Thought and Action from a model response.
//
// Two formats are supported. [JSON] reads the default format the prompt asks
// for:
//
//	Thought: I need the weather first.
//	Action: {"name": "get_weather", "args": {"city": "Nanjing"}}
//
// [Bracket] reads the terser ToolName[input] format:
//
//	Thought: I need the weather first.
//	Action: get_weather[Nanjing]
//
// Parsers never panic and never return errors. Failure is part of the
// returned Step so that the agent loop can pick the matching corrective
// message.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/helloagents/reagent"
)

var (
	thoughtPattern = regexp.MustCompile("(?s)Thought:\\s*(.*?)\\s*(?:Action:|```|\\z)")

	// A fenced block optionally tagged json, holding a brace-delimited object.
	fencedPattern = regexp.MustCompile("(?s)```(?i:json)?\\s*(\\{.*?\\})\\s*```")

	// A brace-delimited object after an Action marker, greedy to the last brace.
	inlinePattern = regexp.MustCompile(`(?s)Action:\s*(\{.*\})`)
)

// JSON parses actions encoded as {"name": ..., "args": {...}}.
//
// A fenced code block wins over an inline "Action:" object when both are
// present. Argument values are flattened to strings: strings are kept as is,
// numbers keep their original spelling, booleans become "true"/"false", null
// becomes "" and nested objects or arrays are re-encoded as JSON.
type JSON struct{}

// NewJSON creates a JSON parser.
func NewJSON() *JSON {
	return &JSON{}
}

// Parse implements reagent.OutputParser.
func (p *JSON) Parse(raw string) reagent.Step {
	step := extractThought(raw)

	candidate, ok := findJSONCandidate(raw)
	if !ok {
		step.Failure = reagent.ParseNoAction
		return step
	}

	action, err := decodeAction(candidate)
	if err != nil {
		step.Failure = reagent.ParseMalformed
		step.Err = err
		return step
	}
	step.Action = action
	return step
}

func extractThought(raw string) reagent.Step {
	m := thoughtPattern.FindStringSubmatch(raw)
	if m == nil {
		return reagent.Step{}
	}
	return reagent.Step{Thought: strings.TrimSpace(m[1]), HasThought: true}
}

func findJSONCandidate(raw string) (string, bool) {
	if m := fencedPattern.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if m := inlinePattern.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	return "", false
}

type wireAction struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// decodeAction reads the first JSON value of candidate. Text after that value
// is ignored, which matters for the greedy inline match.
func decodeAction(candidate string) (*reagent.Action, error) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var w wireAction
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", reagent.ErrInvalidJSON, err)
	}
	name := strings.TrimSpace(w.Name)
	if name == "" {
		return nil, reagent.ErrMissingToolName
	}

	args := make(map[string]string, len(w.Args))
	for k, v := range w.Args {
		s, err := stringify(v)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %q: %v", reagent.ErrInvalidJSON, k, err)
		}
		args[k] = s
	}
	return &reagent.Action{ToolName: name, Args: args}, nil
}

func stringify(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		if x {
			return "true", nil
		}
		return "false", nil
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(x); err != nil {
			return "", err
		}
		return strings.TrimRight(buf.String(), "\n"), nil
	}
}

// Compile-time check that JSON implements reagent.OutputParser.
var _ reagent.OutputParser = (*JSON)(nil)
