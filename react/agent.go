package react

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/helloagents/reagent"
	"github.com/helloagents/reagent/hooks"
	"github.com/helloagents/reagent/parser"
	"github.com/helloagents/reagent/prompt"
	"github.com/helloagents/reagent/toolchain"
	"go.uber.org/zap"
)

// DefaultMaxSteps is the step budget used when WithMaxSteps is not called.
const DefaultMaxSteps = 5

// NoAnswerPlaceholder is the answer reported when the model calls finish
// without an answer argument.
const NoAnswerPlaceholder = "Task completed (no answer provided)."

const (
	noActionMessage = "System Error: no Action found in your reply. " +
		"Strictly follow the format:\n" +
		"Thought: <your reasoning>\n" +
		`Action: {"name": "<tool name>", "args": {"<parameter>": "<value>"}}`

	malformedMessage = "System Error: your Action could not be parsed (%v). " +
		"Strictly follow the JSON Action format: " +
		`{"name": "<tool name>", "args": {"<parameter>": "<value>"}}`
)

// Renderer builds the system prompt for a run.
type Renderer interface {
	Render(catalog reagent.ToolCatalog, question string) string
}

// Agent runs the ReAct loop: the model thinks and names an action, the
// action's tool runs, and its observation is fed back, until the model calls
// finish or the step budget is used up.
//
// Configure an Agent with the With methods before the first Run. After that
// it must not be modified; Run itself keeps all per-run state local, so one
// Agent may serve concurrent runs.
type Agent struct {
	model        reagent.Model
	catalog      reagent.ToolCatalog
	executor     reagent.ToolExecutor
	parser       reagent.OutputParser
	renderer     Renderer
	instructions string
	maxSteps     int
	stream       bool
	handler      reagent.ChunkHandler
	sink         io.Writer
	hooks        *hooks.Registry
	logger       *zap.Logger
	memory       reagent.Memory
}

// NewAgent creates an Agent for model with default settings.
// Defaults:
//   - Catalog: an empty toolchain.Catalog
//   - Executor: toolchain.NewExecutor over the catalog
//   - Parser: parser.NewJSON()
//   - Renderer: prompt.DefaultRenderer
//   - MaxSteps: DefaultMaxSteps
//   - Streaming: off, sink os.Stdout once enabled
//   - Logger: zap.NewNop()
func NewAgent(model reagent.Model) *Agent {
	return &Agent{
		model:    model,
		catalog:  toolchain.NewCatalog(),
		parser:   parser.NewJSON(),
		renderer: prompt.DefaultRenderer,
		maxSteps: DefaultMaxSteps,
		sink:     os.Stdout,
		hooks:    hooks.NewRegistry(),
		logger:   zap.NewNop(),
	}
}

// WithCatalog sets the tools the model may call.
func (a *Agent) WithCatalog(catalog reagent.ToolCatalog) *Agent {
	if catalog == nil {
		catalog = toolchain.NewCatalog()
	}
	a.catalog = catalog
	return a
}

// RegisterTool adds tool to the agent's catalog. It panics if the catalog
// does not support registration or rejects the tool.
func (a *Agent) RegisterTool(tool reagent.Tool) *Agent {
	reg, ok := a.catalog.(interface{ Register(reagent.Tool) error })
	if !ok {
		panic(fmt.Sprintf("react: catalog %T does not support registration", a.catalog))
	}
	if err := reg.Register(tool); err != nil {
		panic(fmt.Sprintf("react: %v", err))
	}
	return a
}

// WithExecutor replaces the default executor.
func (a *Agent) WithExecutor(executor reagent.ToolExecutor) *Agent {
	a.executor = executor
	return a
}

// WithParser replaces the default JSON output parser.
func (a *Agent) WithParser(p reagent.OutputParser) *Agent {
	a.parser = p
	return a
}

// WithRenderer replaces the system prompt renderer.
func (a *Agent) WithRenderer(r Renderer) *Agent {
	a.renderer = r
	return a
}

// WithInstructions adds operator text to the system prompt.
func (a *Agent) WithInstructions(text string) *Agent {
	a.instructions = text
	return a
}

// WithMaxSteps sets the step budget. It panics if n < 1.
func (a *Agent) WithMaxSteps(n int) *Agent {
	if n < 1 {
		panic(fmt.Sprintf("react: max steps must be at least 1, got %d", n))
	}
	a.maxSteps = n
	return a
}

// WithStreaming enables streamed model calls. Each fragment goes to handler;
// with a nil handler fragments are written to the stream sink. Models that do
// not implement reagent.StreamingModel are called normally.
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

// RegisterHook adds hook to the agent's registry.
func (a *Agent) RegisterHook(hook any) *Agent {
	a.hooks.Register(hook)
	return a
}

// WithLogger sets the logger. Iterations are logged at debug, recoveries at
// warn and model failures at error.
func (a *Agent) WithLogger(logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	a.logger = logger
	return a
}

// WithMemory sets a memory that carries finished question/answer pairs into
// later runs.
func (a *Agent) WithMemory(m reagent.Memory) *Agent {
	a.memory = m
	return a
}

// MaxSteps returns the configured step budget.
func (a *Agent) MaxSteps() int {
	return a.maxSteps
}

// loopState is owned by a single Run call.
type loopState struct {
	runID     string
	question  string
	conv      *reagent.Conversation
	iteration int
	answer    string
	state     reagent.State
	executor  reagent.ToolExecutor
	log       *zap.Logger
}

// Run answers question. The returned Result is never nil.
//
// Parse failures, unknown tools and tool errors are recovered inside the
// loop. Exhausting the step budget yields reagent.OutcomeStepsExhausted and a
// nil error. A model failure or a cancelled context yields
// reagent.OutcomeAborted and a non-nil error; model failures match
// reagent.ErrConnection, reagent.ErrStatus or reagent.ErrUnknown with
// errors.Is.
func (a *Agent) Run(ctx context.Context, question string) (*reagent.Result, error) {
	start := time.Now()
	st := a.newState(ctx, question)

	a.hooks.FireBeforeRun(ctx, reagent.BeforeRunEvent{
		RunID:    st.runID,
		Question: question,
		MaxSteps: a.maxSteps,
	})
	st.log.Debug("run started", zap.Int("max_steps", a.maxSteps))

	outcome, err := a.loop(ctx, st)

	if outcome == reagent.OutcomeFinished {
		a.remember(ctx, st)
	}

	result := &reagent.Result{
		RunID:        st.runID,
		Outcome:      outcome,
		Iterations:   st.iteration,
		Conversation: st.conv,
	}
	if outcome == reagent.OutcomeFinished {
		result.Answer = st.answer
	}

	a.hooks.FireAfterRun(ctx, reagent.AfterRunEvent{
		RunID:      st.runID,
		Outcome:    outcome,
		Answer:     result.Answer,
		Iterations: st.iteration,
		Duration:   time.Since(start),
		Err:        err,
	})
	st.log.Info("run finished",
		zap.String("outcome", string(outcome)),
		zap.Int("iterations", st.iteration),
		zap.Duration("duration", time.Since(start)),
	)
	return result, err
}

func (a *Agent) newState(ctx context.Context, question string) *loopState {
	runID := uuid.NewString()
	log := a.logger.With(zap.String("run_id", runID))

	conv := reagent.NewConversation(reagent.Turn{
		Role: reagent.RoleSystem,
		Text: a.systemPrompt(question),
	})
	if a.memory != nil {
		prior, err := a.memory.Load(ctx)
		if err != nil {
			log.Warn("memory load failed", zap.Error(err))
		}
		for _, t := range prior {
			conv.Append(t.Role, t.Text)
		}
	}
	conv.Append(reagent.RoleUser, question)

	executor := a.executor
	if executor == nil {
		executor = toolchain.NewExecutor(a.catalog).WithLogger(log)
	}

	return &loopState{
		runID:    runID,
		question: question,
		conv:     conv,
		state:    reagent.StateThinking,
		executor: executor,
		log:      log,
	}
}

func (a *Agent) systemPrompt(question string) string {
	renderer := a.renderer
	if renderer == nil {
		renderer = prompt.DefaultRenderer
	}
	if a.instructions == "" {
		return renderer.Render(a.catalog, question)
	}
	if pr, ok := renderer.(*prompt.Renderer); ok {
		return pr.WithInstructions(a.instructions).Render(a.catalog, question)
	}
	return renderer.Render(a.catalog, question) + "\n\n" + a.instructions
}

func (a *Agent) loop(ctx context.Context, st *loopState) (reagent.Outcome, error) {
	for st.iteration < a.maxSteps {
		if err := ctx.Err(); err != nil {
			st.log.Warn("run cancelled", zap.Int("iteration", st.iteration), zap.Error(err))
			return reagent.OutcomeAborted, fmt.Errorf("run cancelled: %w", err)
		}

		st.iteration++
		st.state = reagent.StateThinking
		iterStart := time.Now()

		a.hooks.FireBeforeIteration(ctx, reagent.BeforeIterationEvent{
			RunID:     st.runID,
			Iteration: st.iteration,
		})
		st.log.Debug("iteration started", zap.Int("iteration", st.iteration))

		if err := a.iterate(ctx, st); err != nil {
			return reagent.OutcomeAborted, err
		}

		a.hooks.FireAfterIteration(ctx, reagent.AfterIterationEvent{
			RunID:     st.runID,
			Iteration: st.iteration,
			State:     st.state,
			Duration:  time.Since(iterStart),
		})

		if st.state == reagent.StateFinished {
			return reagent.OutcomeFinished, nil
		}
	}

	st.log.Warn("step budget exhausted", zap.Int("max_steps", a.maxSteps))
	return reagent.OutcomeStepsExhausted, nil
}

// iterate performs one think/act/observe pass. Only model failures are
// returned; everything else is folded into the conversation.
func (a *Agent) iterate(ctx context.Context, st *loopState) error {
	callStart := time.Now()
	text, err := reagent.Complete(ctx, a.model, st.conv.Turns(), a.stream, a.handler, a.sink)
	a.hooks.FireAfterModelCall(ctx, reagent.AfterModelCallEvent{
		RunID:     st.runID,
		Iteration: st.iteration,
		Response:  text,
		Duration:  time.Since(callStart),
		Err:       err,
	})
	if err != nil {
		st.log.Error("model call failed", zap.Int("iteration", st.iteration), zap.Error(err))
		return fmt.Errorf("model call failed at iteration %d: %w", st.iteration, err)
	}

	// The model must see its own output next time, even if it is unusable.
	st.conv.Append(reagent.RoleAssistant, text)

	step := a.parser.Parse(text)
	if step.HasThought {
		st.log.Debug("thought", zap.Int("iteration", st.iteration), zap.String("thought", step.Thought))
	}

	switch {
	case step.Action == nil:
		a.recoverParse(ctx, st, step)
	case step.Action.IsFinish():
		st.state = reagent.StateFinished
		answer, ok := step.Action.Args[reagent.FinishAnswerParam]
		if !ok {
			answer = NoAnswerPlaceholder
		}
		st.answer = answer
	default:
		if _, ok := a.catalog.Lookup(step.Action.ToolName); !ok {
			a.recoverUnknownTool(ctx, st, step.Action.ToolName)
			return nil
		}
		a.act(ctx, st, step.Action)
	}
	return nil
}

func (a *Agent) recoverParse(ctx context.Context, st *loopState, step reagent.Step) {
	st.state = reagent.StateRecovering

	kind := reagent.RecoveryNoAction
	msg := noActionMessage
	if step.Failure == reagent.ParseMalformed {
		kind = reagent.RecoveryMalformed
		msg = fmt.Sprintf(malformedMessage, step.Err)
	}
	st.conv.Append(reagent.RoleUser, msg)

	st.log.Warn("unusable model output",
		zap.Int("iteration", st.iteration),
		zap.String("kind", string(kind)),
		zap.Error(step.Err),
	)
	a.hooks.FireRecovery(ctx, reagent.RecoveryEvent{
		RunID:     st.runID,
		Iteration: st.iteration,
		Kind:      kind,
		Err:       step.Err,
		Message:   msg,
	})
}

func (a *Agent) recoverUnknownTool(ctx context.Context, st *loopState, name string) {
	st.state = reagent.StateRecovering

	names := make([]string, 0, len(a.catalog.Specs())+1)
	for _, s := range a.catalog.Specs() {
		names = append(names, s.Name)
	}
	names = append(names, reagent.FinishToolName)

	msg := fmt.Sprintf("Observation: Error: tool '%s' is not registered. Available tools: %s",
		name, strings.Join(names, ", "))
	st.conv.Append(reagent.RoleUser, msg)

	st.log.Warn("unknown tool", zap.Int("iteration", st.iteration), zap.String("tool", name))
	a.hooks.FireRecovery(ctx, reagent.RecoveryEvent{
		RunID:     st.runID,
		Iteration: st.iteration,
		Kind:      reagent.RecoveryUnknownTool,
		ToolName:  name,
		Message:   msg,
	})
}

func (a *Agent) act(ctx context.Context, st *loopState, action *reagent.Action) {
	st.state = reagent.StateActing

	toolStart := time.Now()
	obs := st.executor.Execute(ctx, action.ToolName, action.Args)
	st.conv.Append(reagent.RoleUser, "Observation: "+obs)

	st.log.Debug("tool executed",
		zap.Int("iteration", st.iteration),
		zap.String("tool", action.ToolName),
		zap.Duration("duration", time.Since(toolStart)),
	)
	a.hooks.FireAfterToolCall(ctx, reagent.AfterToolCallEvent{
		RunID:       st.runID,
		Iteration:   st.iteration,
		ToolName:    action.ToolName,
		Args:        action.Args,
		Observation: obs,
		Duration:    time.Since(toolStart),
		Failed:      reagent.IsToolError(obs),
	})
}

func (a *Agent) remember(ctx context.Context, st *loopState) {
	if a.memory == nil {
		return
	}
	if err := a.memory.Save(ctx, st.question, st.answer); err != nil {
		st.log.Warn("memory save failed", zap.Error(err))
	}
}
