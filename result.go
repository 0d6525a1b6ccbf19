package reagent

// State is the agent loop's position within an iteration.
type State string

const (
	// StateThinking is entered at the start of every iteration.
	StateThinking State = "thinking"

	// StateActing means a well-formed, non-terminal action was parsed.
	StateActing State = "acting"

	// StateRecovering means the response could not be parsed or named an
	// unknown tool.
	StateRecovering State = "recovering"

	// StateFinished means the terminal action was received.
	StateFinished State = "finished"
)

// Outcome is how a run ended.
type Outcome string

const (
	// OutcomeFinished means the model emitted the finish action.
	OutcomeFinished Outcome = "finished"

	// OutcomeStepsExhausted means max steps were used without a finish
	// action. This is a normal outcome, not an error.
	OutcomeStepsExhausted Outcome = "steps_exhausted"

	// OutcomeAborted means the run stopped on a model failure or context
	// cancellation. The accompanying error explains why.
	OutcomeAborted Outcome = "aborted"
)

// Result is what a run returns.
type Result struct {
	// RunID uniquely identifies the run in logs and hooks.
	RunID string

	// Outcome reports how the run ended.
	Outcome Outcome

	// Answer is the final answer. Only meaningful when Outcome is
	// OutcomeFinished.
	Answer string

	// Iterations is the number of loop passes performed.
	Iterations int

	// Conversation is the full transcript of the run.
	Conversation *Conversation
}

// Finished reports whether the run produced a final answer.
func (r *Result) Finished() bool {
	return r != nil && r.Outcome == OutcomeFinished
}
