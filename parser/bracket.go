package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/helloagents/reagent"
)

var (
	bracketMarker = regexp.MustCompile(`(?s)Action:\s*(.*)`)
	bracketName   = regexp.MustCompile(`^(\w+)\[`)
)

// Bracket parses actions written as ToolName[input] and Finish[answer].
//
// Only the line holding the action is read, and the input ends at the
// bracket that balances the opening one. Text the model invents after the
// action, such as a guessed Observation, is ignored.
//
// The single input is bound to the first declared parameter of the named
// tool, so the catalog is needed at construction. Names that are not in the
// catalog are passed through with the input under "input"; the agent loop
// reports them as unknown tools.
type Bracket struct {
	catalog reagent.ToolCatalog
}

// NewBracket creates a Bracket parser resolving parameters through catalog.
// A nil catalog is treated as empty.
func NewBracket(catalog reagent.ToolCatalog) *Bracket {
	return &Bracket{catalog: catalog}
}

// Parse implements reagent.OutputParser.
func (p *Bracket) Parse(raw string) reagent.Step {
	step := extractThought(raw)

	m := bracketMarker.FindStringSubmatch(raw)
	if m == nil {
		step.Failure = reagent.ParseNoAction
		return step
	}

	line := firstLine(m[1])
	name, input, ok := splitCall(line)
	if !ok {
		step.Failure = reagent.ParseMalformed
		step.Err = fmt.Errorf("%w: expected ToolName[input], got %q",
			reagent.ErrInvalidAction, line)
		return step
	}

	step.Action = p.bind(name, strings.TrimSpace(input))
	return step
}

// splitCall splits "name[input]" where input may itself hold balanced
// brackets. Anything after the closing bracket is dropped.
func splitCall(line string) (name, input string, ok bool) {
	m := bracketName.FindStringSubmatchIndex(line)
	if m == nil {
		return "", "", false
	}
	name = line[m[2]:m[3]]
	start := m[1]

	depth := 1
	for i := start; i < len(line); i++ {
		switch line[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return name, line[start:i], true
			}
		}
	}
	return "", "", false
}

func (p *Bracket) bind(name, input string) *reagent.Action {
	if strings.EqualFold(name, reagent.FinishToolName) {
		return &reagent.Action{
			ToolName: reagent.FinishToolName,
			Args:     map[string]string{reagent.FinishAnswerParam: input},
		}
	}

	if p.catalog != nil {
		if tool, ok := p.catalog.Lookup(name); ok {
			params := tool.Spec().Parameters
			if len(params) == 0 {
				return &reagent.Action{ToolName: name, Args: map[string]string{}}
			}
			return &reagent.Action{ToolName: name, Args: map[string]string{params[0].Name: input}}
		}
	}
	return &reagent.Action{ToolName: name, Args: map[string]string{"input": input}}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// Compile-time check that Bracket implements reagent.OutputParser.
var _ reagent.OutputParser = (*Bracket)(nil)
