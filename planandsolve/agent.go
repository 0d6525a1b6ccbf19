package planandsolve

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/helloagents/reagent"
	"github.com/helloagents/reagent/hooks"
	"go.uber.org/zap"
)

// DefaultMaxSteps caps the plan length when WithMaxSteps is not called.
const DefaultMaxSteps = 8

// EmptyHistory is shown to the executor for the first step.
const EmptyHistory = "(no history yet, this is the first step)"

var (
	//go:embed planner.tmpl
	plannerTemplateContent string

	//go:embed executor.tmpl
	executorPrompt string

	//go:embed step.tmpl
	stepTemplateContent string

	plannerTemplate = template.Must(template.New("planner").Parse(plannerTemplateContent))
	stepTemplate    = template.Must(template.New("step").Parse(stepTemplateContent))
)

// StepResult is one executed plan step.
type StepResult struct {
	// Index is 1-based.
	Index  int
	Step   string
	Output string
}

// Result is what a Plan-and-Solve run returns. The embedded Result's Answer
// is the output of the last step.
type Result struct {
	*reagent.Result

	Plan  []string
	Steps []StepResult
}

// Agent plans a question into steps and executes them in order.
//
// Configure an Agent with the With methods before the first Run. Run keeps
// all per-run state local, so one Agent may serve concurrent runs.
type Agent struct {
	model        reagent.Model
	instructions string
	maxSteps     int
	stream       bool
	handler      reagent.ChunkHandler
	sink         io.Writer
	hooks        *hooks.Registry
	logger       *zap.Logger
}

// NewAgent creates an Agent for model with DefaultMaxSteps, no streaming
// and a no-op logger.
func NewAgent(model reagent.Model) *Agent {
	return &Agent{
		model:    model,
		maxSteps: DefaultMaxSteps,
		sink:     os.Stdout,
		hooks:    hooks.NewRegistry(),
		logger:   zap.NewNop(),
	}
}

// WithInstructions adds operator text to the planner prompt.
func (a *Agent) WithInstructions(text string) *Agent {
	a.instructions = text
	return a
}

// WithMaxSteps caps how many plan steps are executed. Longer plans are
// truncated. It panics if n < 1.
func (a *Agent) WithMaxSteps(n int) *Agent {
	if n < 1 {
		panic(fmt.Sprintf("planandsolve: max steps must be at least 1, got %d", n))
	}
	a.maxSteps = n
	return a
}

// WithStreaming enables streamed model calls, as in react.Agent.
func (a *Agent) WithStreaming(handler reagent.ChunkHandler) *Agent {
	a.stream = true
	a.handler = handler
	return a
}

// WithStreamSink sets where fragments go when streaming without a handler.
func (a *Agent) WithStreamSink(w io.Writer) *Agent {
	a.sink = w
	return a
}

// WithHooks replaces the hook registry.
func (a *Agent) WithHooks(registry *hooks.Registry) *Agent {
	if registry == nil {
		registry = hooks.NewRegistry()
	}
	a.hooks = registry
	return a
}

// RegisterHook adds hook to the agent's registry. The planner call is
// reported as iteration 0 and step N as iteration N.
func (a *Agent) RegisterHook(hook any) *Agent {
	a.hooks.Register(hook)
	return a
}

// WithLogger sets the logger.
func (a *Agent) WithLogger(logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	a.logger = logger
	return a
}

// MaxSteps returns the configured plan cap.
func (a *Agent) MaxSteps() int {
	return a.maxSteps
}

type runState struct {
	runID    string
	question string
	conv     *reagent.Conversation
	log      *zap.Logger
}

// Run answers question. The returned Result is never nil.
//
// A planner reply without a usable plan yields reagent.OutcomeAborted and an
// error matching ErrNoPlan. A model failure or a cancelled context also
// aborts the run; model failures match reagent.ErrConnection,
// reagent.ErrStatus or reagent.ErrUnknown with errors.Is.
func (a *Agent) Run(ctx context.Context, question string) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	st := &runState{
		runID:    runID,
		question: question,
		conv:     reagent.NewConversation(),
		log:      a.logger.With(zap.String("run_id", runID)),
	}
	res := &Result{Result: &reagent.Result{RunID: runID, Conversation: st.conv}}

	a.hooks.FireBeforeRun(ctx, reagent.BeforeRunEvent{
		RunID:    runID,
		Question: question,
		MaxSteps: a.maxSteps,
	})

	err := a.solve(ctx, st, res)
	if err != nil {
		res.Outcome = reagent.OutcomeAborted
	} else {
		res.Outcome = reagent.OutcomeFinished
		res.Answer = res.Steps[len(res.Steps)-1].Output
	}
	res.Iterations = len(res.Steps)

	a.hooks.FireAfterRun(ctx, reagent.AfterRunEvent{
		RunID:      runID,
		Outcome:    res.Outcome,
		Answer:     res.Answer,
		Iterations: res.Iterations,
		Duration:   time.Since(start),
		Err:        err,
	})
	st.log.Info("run finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("steps", len(res.Steps)),
		zap.Duration("duration", time.Since(start)),
	)
	return res, err
}

func (a *Agent) solve(ctx context.Context, st *runState, res *Result) error {
	plan, err := a.plan(ctx, st)
	if err != nil {
		return err
	}
	if len(plan) > a.maxSteps {
		st.log.Warn("plan truncated", zap.Int("steps", len(plan)), zap.Int("max_steps", a.maxSteps))
		plan = plan[:a.maxSteps]
	}
	res.Plan = plan

	var history strings.Builder
	for i, step := range plan {
		if err := ctx.Err(); err != nil {
			st.log.Warn("run cancelled", zap.Int("step", i+1), zap.Error(err))
			return fmt.Errorf("run cancelled: %w", err)
		}

		idx := i + 1
		iterStart := time.Now()
		a.hooks.FireBeforeIteration(ctx, reagent.BeforeIterationEvent{RunID: st.runID, Iteration: idx})

		out, err := a.execute(ctx, st, stepData{
			Question: st.question,
			History:  history.String(),
			Step:     step,
			Index:    idx,
			Total:    len(plan),
		})
		if err != nil {
			return err
		}
		res.Steps = append(res.Steps, StepResult{Index: idx, Step: step, Output: out})
		fmt.Fprintf(&history, "Step %d: %s\nResult: %s\n\n", idx, step, out)

		state := reagent.StateActing
		if idx == len(plan) {
			state = reagent.StateFinished
		}
		a.hooks.FireAfterIteration(ctx, reagent.AfterIterationEvent{
			RunID:     st.runID,
			Iteration: idx,
			State:     state,
			Duration:  time.Since(iterStart),
		})
	}
	return nil
}

func (a *Agent) plan(ctx context.Context, st *runState) ([]string, error) {
	system := render(plannerTemplate, struct{ Instructions string }{a.instructions})
	text, err := a.call(ctx, st, 0, system, st.question)
	if err != nil {
		return nil, err
	}

	plan, err := ParsePlan(text)
	if err != nil {
		st.log.Error("plan rejected", zap.Error(err), zap.String("response", text))
		return nil, err
	}
	st.log.Debug("plan ready", zap.Int("steps", len(plan)))
	return plan, nil
}

type stepData struct {
	Question string
	History  string
	Step     string
	Index    int
	Total    int
}

func (a *Agent) execute(ctx context.Context, st *runState, data stepData) (string, error) {
	if data.History == "" {
		data.History = EmptyHistory
	}
	st.log.Debug("executing step", zap.Int("step", data.Index), zap.Int("total", data.Total))
	text, err := a.call(ctx, st, data.Index, executorPrompt, render(stepTemplate, data))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// call sends a fresh system/user pair and records both turns and the reply
// in the run transcript.
func (a *Agent) call(ctx context.Context, st *runState, iteration int, system, user string) (string, error) {
	turns := []reagent.Turn{
		{Role: reagent.RoleSystem, Text: system},
		{Role: reagent.RoleUser, Text: user},
	}
	st.conv.Append(reagent.RoleSystem, system)
	st.conv.Append(reagent.RoleUser, user)

	callStart := time.Now()
	text, err := reagent.Complete(ctx, a.model, turns, a.stream, a.handler, a.sink)
	a.hooks.FireAfterModelCall(ctx, reagent.AfterModelCallEvent{
		RunID:     st.runID,
		Iteration: iteration,
		Response:  text,
		Duration:  time.Since(callStart),
		Err:       err,
	})
	if err != nil {
		st.log.Error("model call failed", zap.Int("iteration", iteration), zap.Error(err))
		if iteration == 0 {
			return "", fmt.Errorf("planner call failed: %w", err)
		}
		return "", fmt.Errorf("model call failed at step %d: %w", iteration, err)
	}
	st.conv.Append(reagent.RoleAssistant, text)
	return text, nil
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("planandsolve: render %s: %v", tmpl.Name(), err))
	}
	return buf.String()
}
