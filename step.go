package reagent

// Action is a structured tool invocation extracted from model output.
type Action struct {
	ToolName string            `yaml:"tool" json:"name"`
	Args     map[string]string `yaml:"args,omitempty" json:"args,omitempty"`
}

// IsFinish reports whether the action is the reserved terminal action.
func (a *Action) IsFinish() bool {
	return a != nil && a.ToolName == FinishToolName
}

// ParseFailure explains why a Step carries no Action.
type ParseFailure string

const (
	// ParseOK means an action was extracted.
	ParseOK ParseFailure = ""

	// ParseNoAction means nothing action-shaped was found in the text.
	ParseNoAction ParseFailure = "no_action"

	// ParseMalformed means an action candidate was found but could not be
	// decoded.
	ParseMalformed ParseFailure = "malformed"
)

// Step is the result of parsing one model response. It lives for a single
// iteration; only its rendered observation re-enters the Conversation.
type Step struct {
	// Thought is the reasoning text preceding the action, if any.
	Thought string

	// HasThought is false when the response contained no Thought marker.
	HasThought bool

	// Action is nil when Failure is not ParseOK.
	Action *Action

	// Failure classifies a missing Action.
	Failure ParseFailure

	// Err carries the decode error for ParseMalformed.
	Err error
}

// OutputParser turns raw model text into a Step. Implementations never panic;
// all failure is represented in the returned Step.
type OutputParser interface {
	Parse(raw string) Step
}
