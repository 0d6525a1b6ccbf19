package reflection

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/google/uuid"
	"github.com/helloagents/reagent"
	"github.com/helloagents/reagent/hooks"
	"go.uber.org/zap"
)

// DefaultMaxIterations is the review/refine budget used when
// WithMaxIterations is not called.
const DefaultMaxIterations = 3

// DefaultLanguage is the programming language drafts are written in.
const DefaultLanguage = "python"

var (
	//go:embed generator.tmpl
	generatorTemplateContent string

	//go:embed reflector.tmpl
	reflectorTemplateContent string

	//go:embed prompts.tmpl
	userTemplateContent string

	generatorTemplate = template.Must(template.New("generator").Parse(generatorTemplateContent))
	reflectorTemplate = template.Must(template.New("reflector").Parse(reflectorTemplateContent))
	userTemplates     = template.Must(template.New("user").Parse(userTemplateContent))
)

// RecordRole says which side of the loop produced a Record.
type RecordRole string

const (
	RoleGenerator RecordRole = "generator"
	RoleReflector RecordRole = "reflector"
)

// Record is one draft or one review, in the order they were produced.
type Record struct {
	Role    RecordRole
	Content string
}

// Result is what a Reflection run returns. Output is the latest draft
// whatever the outcome; the embedded Result's Answer is set to it only when
// the reviewer accepted it.
type Result struct {
	*reagent.Result

	Output    string
	Converged bool
	Records   []Record
}

// Agent drafts, reviews and refines code for a task.
//
// Configure an Agent with the With methods before the first Run. Run keeps
// all per-run state local, so one Agent may serve concurrent runs.
type Agent struct {
	model         reagent.Model
	language      string
	instructions  string
	maxIterations int
	stream        bool
	handler       reagent.ChunkHandler
	sink          io.Writer
	hooks         *hooks.Registry
	logger        *zap.Logger
}

// NewAgent creates an Agent for model with DefaultMaxIterations and
// DefaultLanguage.
func NewAgent(model reagent.Model) *Agent {
	return &Agent{
		model:         model,
		language:      DefaultLanguage,
		maxIterations: DefaultMaxIterations,
		sink:          os.Stdout,
		hooks:         hooks.NewRegistry(),
		logger:        zap.NewNop(),
	}
}

// WithLanguage sets the programming language named in the prompts and used
// to tag fenced code.
func (a *Agent) WithLanguage(lang string) *Agent {
	if lang == "" {
		lang = DefaultLanguage
	}
	a.language = lang
	return a
}

// WithInstructions adds operator text to the generator prompt.
func (a *Agent) WithInstructions(text string) *Agent {
	a.instructions = text
	return a
}

// WithMaxIterations sets how many review/refine rounds may run. It panics
// if n < 1.
func (a *Agent) WithMaxIterations(n int) *Agent {
	if n < 1 {
		panic(fmt.Sprintf("reflection: max iterations must be at least 1, got %d", n))
	}
	a.maxIterations = n
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

// RegisterHook adds hook to the agent's registry. The first draft is
// reported as iteration 0 and review round N as iteration N.
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

// MaxIterations returns the configured round budget.
func (a *Agent) MaxIterations() int {
	return a.maxIterations
}

type promptData struct {
	Task         string
	Language     string
	Instructions string
	Code         string
	Feedback     string
}

type runState struct {
	runID     string
	data      promptData
	conv      *reagent.Conversation
	log       *zap.Logger
	generator string
	reflector string
}

// Run produces code for task. The returned Result is never nil.
//
// A model failure or a cancelled context yields reagent.OutcomeAborted and a
// non-nil error; Output then holds the last draft, if any.
func (a *Agent) Run(ctx context.Context, task string) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	data := promptData{Task: task, Language: a.language, Instructions: a.instructions}
	st := &runState{
		runID:     runID,
		data:      data,
		conv:      reagent.NewConversation(),
		log:       a.logger.With(zap.String("run_id", runID)),
		generator: render(generatorTemplate, "", data),
		reflector: render(reflectorTemplate, "", data),
	}
	res := &Result{Result: &reagent.Result{RunID: runID, Conversation: st.conv}}

	a.hooks.FireBeforeRun(ctx, reagent.BeforeRunEvent{
		RunID:    runID,
		Question: task,
		MaxSteps: a.maxIterations,
	})

	err := a.loop(ctx, st, res)
	switch {
	case err != nil:
		res.Outcome = reagent.OutcomeAborted
	case res.Converged:
		res.Outcome = reagent.OutcomeFinished
		res.Answer = res.Output
	default:
		st.log.Warn("review rounds exhausted", zap.Int("max_iterations", a.maxIterations))
		res.Outcome = reagent.OutcomeStepsExhausted
	}

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
		zap.Int("iterations", res.Iterations),
		zap.Bool("converged", res.Converged),
		zap.Duration("duration", time.Since(start)),
	)
	return res, err
}

func (a *Agent) loop(ctx context.Context, st *runState, res *Result) error {
	draft, err := a.call(ctx, st, 0, st.generator, render(userTemplates, "generate", st.data))
	if err != nil {
		return err
	}
	addDraft(res, ExtractCode(draft))
	st.log.Debug("first draft ready")

	for res.Iterations < a.maxIterations {
		if err := ctx.Err(); err != nil {
			st.log.Warn("run cancelled", zap.Int("iteration", res.Iterations), zap.Error(err))
			return fmt.Errorf("run cancelled: %w", err)
		}

		res.Iterations++
		round := res.Iterations
		roundStart := time.Now()
		a.hooks.FireBeforeIteration(ctx, reagent.BeforeIterationEvent{RunID: st.runID, Iteration: round})

		data := st.data
		data.Code = res.Output
		review, err := a.call(ctx, st, round, st.reflector, render(userTemplates, "review", data))
		if err != nil {
			return err
		}
		res.Records = append(res.Records, Record{Role: RoleReflector, Content: review})

		if IsPerfect(review) {
			res.Converged = true
			st.log.Debug("review accepted draft", zap.Int("iteration", round))
			a.endRound(ctx, st, round, reagent.StateFinished, roundStart)
			return nil
		}

		data.Feedback = review
		refined, err := a.call(ctx, st, round, st.generator, render(userTemplates, "refine", data))
		if err != nil {
			return err
		}
		addDraft(res, ExtractCode(refined))
		st.log.Debug("draft refined", zap.Int("iteration", round))
		a.endRound(ctx, st, round, reagent.StateActing, roundStart)
	}
	return nil
}

func addDraft(res *Result, code string) {
	res.Output = code
	res.Records = append(res.Records, Record{Role: RoleGenerator, Content: code})
}

func (a *Agent) endRound(ctx context.Context, st *runState, round int, state reagent.State, start time.Time) {
	a.hooks.FireAfterIteration(ctx, reagent.AfterIterationEvent{
		RunID:     st.runID,
		Iteration: round,
		State:     state,
		Duration:  time.Since(start),
	})
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
		return "", fmt.Errorf("model call failed at iteration %d: %w", iteration, err)
	}
	st.conv.Append(reagent.RoleAssistant, text)
	return text, nil
}

// render executes tmpl, or its named sub-template when name is set.
func render(tmpl *template.Template, name string, data promptData) string {
	var buf bytes.Buffer
	var err error
	if name == "" {
		err = tmpl.Execute(&buf, data)
	} else {
		err = tmpl.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		panic(fmt.Sprintf("reflection: render %s: %v", tmpl.Name(), err))
	}
	return buf.String()
}
