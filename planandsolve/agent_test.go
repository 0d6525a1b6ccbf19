package planandsolve

import (
	"context"
	"errors"
	"testing"

	"github.com/helloagents/reagent"
	"github.com/helloagents/reagent/internal/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParsePlan(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "object",
			input:    `{"plan": ["find the rates", "add them up"]}`,
			expected: []string{"find the rates", "add them up"},
		},
		{
			name:     "fenced object",
			input:    "```json\n{\"plan\": [\"a\", \"b\", \"c\"]}\n```",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "bare array",
			input:    `["only step"]`,
			expected: []string{"only step"},
		},
		{
			name:     "fenced array",
			input:    "```\n[\"x\", \"y\"]\n```",
			expected: []string{"x", "y"},
		},
		{
			name:     "blank steps dropped",
			input:    `{"plan": ["a", "  ", "b"]}`,
			expected: []string{"a", "b"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := ParsePlan(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, plan)
		})
	}
}

func TestParsePlan_Rejected(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: "  "},
		{name: "prose", input: "First, find the rates. Then add them."},
		{name: "empty plan", input: `{"plan": []}`},
		{name: "missing plan key", input: `{"steps": ["a"]}`},
		{name: "not strings", input: `{"plan": [1, 2]}`},
		{name: "plan is not a list", input: `{"plan": "a then b"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := ParsePlan(tc.input)
			require.ErrorIs(t, err, ErrNoPlan)
			assert.Nil(t, plan)
		})
	}
}

func TestAgent_PoolScenario(t *testing.T) {
	model := tt.NewMockModel().
		AddResponse("```json\n{\"plan\": [\"Rate of each pipe\", \"Net rate\", \"Hours to fill\"]}\n```").
		AddResponse("Inlets 1/4 and 1/6, drain -1/3 per hour.").
		AddResponse("Net rate is 1/12 per hour.").
		AddResponse("12 hours.")
	hook := &tt.RecordingHook{}

	result, err := NewAgent(model).RegisterHook(hook).
		Run(context.Background(), "How long until the pool is full?")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, reagent.OutcomeFinished, result.Outcome)
	assert.True(t, result.Finished())
	assert.Equal(t, "12 hours.", result.Answer)
	assert.Equal(t, 3, result.Iterations)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []string{"Rate of each pipe", "Net rate", "Hours to fill"}, result.Plan)
	assert.Equal(t, []StepResult{
		{Index: 1, Step: "Rate of each pipe", Output: "Inlets 1/4 and 1/6, drain -1/3 per hour."},
		{Index: 2, Step: "Net rate", Output: "Net rate is 1/12 per hour."},
		{Index: 3, Step: "Hours to fill", Output: "12 hours."},
	}, result.Steps)

	require.Equal(t, 4, model.CallCount())

	// Planner sees the question as the user turn.
	planner := model.CapturedTurns[0]
	assert.Equal(t, []reagent.Role{reagent.RoleSystem, reagent.RoleUser}, tt.Roles(planner))
	assert.Contains(t, planner[0].Text, `"plan"`)
	assert.Equal(t, "How long until the pool is full?", planner[1].Text)

	// First step gets the placeholder history.
	first := model.CapturedTurns[1][1].Text
	assert.Contains(t, first, "How long until the pool is full?")
	assert.Contains(t, first, EmptyHistory)
	assert.Contains(t, first, "# Current step (1/3)\nRate of each pipe")

	// Last step sees every earlier result.
	last := model.CapturedTurns[3][1].Text
	assert.NotContains(t, last, EmptyHistory)
	assert.Contains(t, last, "Step 1: Rate of each pipe\nResult: Inlets 1/4 and 1/6, drain -1/3 per hour.")
	assert.Contains(t, last, "Step 2: Net rate\nResult: Net rate is 1/12 per hour.")
	assert.Contains(t, last, "# Current step (3/3)\nHours to fill")

	// Every call is recorded as system, user, assistant.
	assert.Equal(t, 12, result.Conversation.Len())

	assert.Equal(t, []string{
		"before_run",
		"after_model_call",
		"before_iteration", "after_model_call", "after_iteration",
		"before_iteration", "after_model_call", "after_iteration",
		"before_iteration", "after_model_call", "after_iteration",
		"after_run",
	}, hook.Names)
	require.Len(t, hook.Models, 4)
	assert.Equal(t, 0, hook.Models[0].Iteration)
	assert.Equal(t, 3, hook.Models[3].Iteration)
	require.Len(t, hook.Iters, 3)
	assert.Equal(t, reagent.StateActing, hook.Iters[0].State)
	assert.Equal(t, reagent.StateFinished, hook.Iters[2].State)
	require.Len(t, hook.Runs, 1)
	assert.Equal(t, "12 hours.", hook.Runs[0].Answer)
}

func TestAgent_NoPlan(t *testing.T) {
	model := tt.NewMockModel().AddResponse("I would start by thinking hard.")
	hook := &tt.RecordingHook{}

	result, err := NewAgent(model).RegisterHook(hook).Run(context.Background(), "q")

	require.ErrorIs(t, err, ErrNoPlan)
	require.NotNil(t, result)
	assert.Equal(t, reagent.OutcomeAborted, result.Outcome)
	assert.Empty(t, result.Answer)
	assert.Empty(t, result.Steps)
	assert.Equal(t, 1, model.CallCount())
	require.Len(t, hook.Runs, 1)
	assert.ErrorIs(t, hook.Runs[0].Err, ErrNoPlan)
}

func TestAgent_TruncatesLongPlan(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	model := tt.NewMockModel().
		AddResponse(`["a", "b", "c", "d"]`).
		WithFallback("done")

	result, err := NewAgent(model).WithMaxSteps(2).WithLogger(zap.New(core)).
		Run(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result.Plan)
	assert.Len(t, result.Steps, 2)
	assert.Equal(t, 3, model.CallCount())
	assert.Equal(t, 1, logs.FilterMessage("plan truncated").Len())
}

func TestAgent_ModelFailure(t *testing.T) {
	tests := []struct {
		name      string
		model     *tt.MockModel
		calls     int
		steps     int
		expectMsg string
	}{
		{
			name:      "planner",
			model:     tt.NewMockModel().AddError(errors.New("boom")),
			calls:     1,
			steps:     0,
			expectMsg: "planner call failed",
		},
		{
			name: "second step",
			model: tt.NewMockModel().
				AddResponse(`["a", "b"]`).
				AddResponse("A").
				AddError(errors.New("boom")),
			calls:     3,
			steps:     1,
			expectMsg: "model call failed at step 2",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := NewAgent(tc.model).Run(context.Background(), "q")

			require.Error(t, err)
			assert.ErrorIs(t, err, reagent.ErrUnknown)
			assert.Contains(t, err.Error(), tc.expectMsg)
			assert.Equal(t, reagent.OutcomeAborted, result.Outcome)
			assert.Len(t, result.Steps, tc.steps)
			assert.Equal(t, tc.calls, tc.model.CallCount())
		})
	}
}

func TestAgent_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewAgent(tt.NewMockModel()).Run(ctx, "q")

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, reagent.OutcomeAborted, result.Outcome)
}

func TestAgent_Streaming(t *testing.T) {
	model := tt.NewMockStreamingModel()
	model.AddResponse(`["only step"]`)
	model.AddResponse("streamed answer")

	var chunks []string
	result, err := NewAgent(model).
		WithStreaming(func(s string) { chunks = append(chunks, s) }).
		Run(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "streamed answer", result.Answer)
	assert.Equal(t, 2, model.StreamCalls())
	assert.NotEmpty(t, chunks)
}

func TestAgent_WithMaxStepsPanics(t *testing.T) {
	assert.Panics(t, func() { NewAgent(tt.NewMockModel()).WithMaxSteps(0) })
	assert.Equal(t, DefaultMaxSteps, NewAgent(tt.NewMockModel()).MaxSteps())
}

func TestAgent_Instructions(t *testing.T) {
	model := tt.NewMockModel().AddResponse(`["s"]`).AddResponse("r")

	_, err := NewAgent(model).WithInstructions("Use at most three steps.").
		Run(context.Background(), "q")

	require.NoError(t, err)
	assert.Contains(t, model.CapturedTurns[0][0].Text, "Use at most three steps.")
}
