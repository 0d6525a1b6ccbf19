package reagent

import (
	"context"
	"time"
)

// Hooks observe a run without being able to change it. A hook implements any
// subset of the interfaces below and is registered on a hooks.Registry; the
// registry calls it only for the events it implements, in registration order.
//
//	type printHook struct{}
//
//	func (printHook) OnRecovery(ctx context.Context, e reagent.RecoveryEvent) {
//		fmt.Printf("step %d recovered from %s\n", e.Iteration, e.Kind)
//	}
//
//	agent := react.NewAgent(model).RegisterHook(printHook{})
//
// Hooks must not block for long: they run synchronously on the loop
// goroutine. A hook that panics brings the run down with it.

// BeforeRunEvent is fired once before the first model call.
type BeforeRunEvent struct {
	RunID    string
	Question string
	MaxSteps int
}

// AfterRunEvent is fired once when a run returns, whatever the outcome.
type AfterRunEvent struct {
	RunID      string
	Outcome    Outcome
	Answer     string
	Iterations int
	Duration   time.Duration

	// Err is set when Outcome is OutcomeAborted.
	Err error
}

// BeforeIterationEvent is fired at the start of every loop pass.
type BeforeIterationEvent struct {
	RunID     string
	Iteration int
}

// AfterIterationEvent is fired at the end of every completed loop pass.
type AfterIterationEvent struct {
	RunID     string
	Iteration int

	// State is the state the pass ended in: acting, recovering or finished.
	State    State
	Duration time.Duration
}

// AfterModelCallEvent is fired after every model call, including failed ones.
type AfterModelCallEvent struct {
	RunID     string
	Iteration int
	Response  string
	Duration  time.Duration
	Err       error
}

// AfterToolCallEvent is fired after the executor has produced an observation.
type AfterToolCallEvent struct {
	RunID       string
	Iteration   int
	ToolName    string
	Args        map[string]string
	Observation string
	Duration    time.Duration

	// Failed is true when the observation reports a tool error.
	Failed bool
}

// RecoveryKind names the local recovery the loop performed.
type RecoveryKind string

const (
	RecoveryNoAction    RecoveryKind = "no_action"
	RecoveryMalformed   RecoveryKind = "malformed"
	RecoveryUnknownTool RecoveryKind = "unknown_tool"
)

// RecoveryEvent is fired when the loop enters the recovering state.
type RecoveryEvent struct {
	RunID     string
	Iteration int
	Kind      RecoveryKind

	// ToolName is set for RecoveryUnknownTool.
	ToolName string

	// Err is the decode error for RecoveryMalformed.
	Err error

	// Message is the corrective text appended to the conversation.
	Message string
}

// BeforeRunHook is notified when a run starts.
type BeforeRunHook interface {
	OnBeforeRun(ctx context.Context, event BeforeRunEvent)
}

// AfterRunHook is notified when a run ends.
type AfterRunHook interface {
	OnAfterRun(ctx context.Context, event AfterRunEvent)
}

// BeforeIterationHook is notified at the start of every iteration.
type BeforeIterationHook interface {
	OnBeforeIteration(ctx context.Context, event BeforeIterationEvent)
}

// AfterIterationHook is notified at the end of every iteration.
type AfterIterationHook interface {
	OnAfterIteration(ctx context.Context, event AfterIterationEvent)
}

// AfterModelCallHook is notified after each model call.
type AfterModelCallHook interface {
	OnAfterModelCall(ctx context.Context, event AfterModelCallEvent)
}

// AfterToolCallHook is notified after each tool execution.
type AfterToolCallHook interface {
	OnAfterToolCall(ctx context.Context, event AfterToolCallEvent)
}

// RecoveryHook is notified of parse failures and unknown tool names.
type RecoveryHook interface {
	OnRecovery(ctx context.Context, event RecoveryEvent)
}
