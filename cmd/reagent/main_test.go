package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/helloagents/reagent/config"
	"github.com/helloagents/reagent/hooks"
	"github.com/helloagents/reagent/internal/tt"
	"github.com/helloagents/reagent/planandsolve"
	"github.com/helloagents/reagent/react"
	"github.com/helloagents/reagent/reflection"
	"github.com/helloagents/reagent/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func TestCurrentTimeTool(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]string
		expected string
	}{
		{name: "default utc", input: map[string]string{}, expected: "Saturday, 2026-03-14 12:00:00 UTC"},
		{name: "explicit utc", input: map[string]string{"timezone": "UTC"}, expected: "Saturday, 2026-03-14 12:00:00 UTC"},
	}

	tool := newCurrentTimeTool(fixedNow)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tool.Call(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestCurrentTimeTool_UnknownZone(t *testing.T) {
	exec := toolchain.NewExecutor(toolchain.NewCatalog().MustRegister(newCurrentTimeTool(fixedNow)))

	out := exec.Execute(context.Background(), "current_time", map[string]string{"timezone": "Mars/Olympus"})

	assert.Contains(t, out, "Error executing tool 'current_time'")
	assert.Contains(t, out, "Mars/Olympus")
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-config", "r.yaml", "-ask", "hi", "-metrics", ":9090", "-agent", "plan"})
	require.NoError(t, err)
	assert.Equal(t, options{configPath: "r.yaml", ask: "hi", metricsAddr: ":9090", agent: "plan"}, opts)

	opts, err = parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, agentReAct, opts.agent)

	_, err = parseFlags([]string{"-nope"})
	assert.Error(t, err)
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Model.Name = "m"
	cfg.Model.APIKey = "k"
	cfg.Model.BaseURL = "http://127.0.0.1:1/v1"
	return cfg
}

func TestBuildAgent(t *testing.T) {
	cfg := testConfig()
	cfg.Model.RPS = 2
	cfg.Agent.MaxSteps = 3
	cfg.Agent.Memory = 2

	agent, mem, err := buildAgent(cfg, zap.NewNop(), &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, 3, agent.MaxSteps())
	assert.NotNil(t, mem)
}

func TestBuildRunner(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expectMem bool
		expectErr bool
	}{
		{name: "react", input: agentReAct, expectMem: true},
		{name: "plan and solve", input: agentPlan},
		{name: "reflection", input: agentReflect},
		{name: "unknown", input: "tot", expectErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Agent.Memory = 2
			cfg.Log.Transcript = true
			registry := hooks.NewRegistry()

			run, mem, err := buildRunner(tc.input, cfg, zap.NewNop(), registry, &bytes.Buffer{}, &bytes.Buffer{})

			if tc.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), `unknown agent "tot"`)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, run)
			assert.Equal(t, tc.expectMem, mem != nil)
			assert.Equal(t, 1, registry.Len())
		})
	}
}

func TestNewModel_Temperature(t *testing.T) {
	cfg := testConfig()
	cfg.Model.Temperature = 0.3

	lcg, err := newModel(cfg, zap.NewNop())

	require.NoError(t, err)
	assert.InDelta(t, 0.3, lcg.CallOptions().Temperature, 1e-9)
}

func TestAnswer(t *testing.T) {
	model := tt.NewMockModel().AddResponse(tt.FinishResponse("easy", "42"))
	var out bytes.Buffer

	err := answer(context.Background(), reactRunner(react.NewAgent(model)), &out, "meaning?")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "42")
}

func TestAnswer_StepsExhausted(t *testing.T) {
	model := tt.NewMockModel().WithFallback("rambling")
	var out bytes.Buffer

	err := answer(context.Background(), reactRunner(react.NewAgent(model).WithMaxSteps(1)), &out, "q")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "No answer after 1 steps.")
}

func TestAnswer_PlanAndSolve(t *testing.T) {
	model := tt.NewMockModel().
		AddResponse(`["Add the numbers", "Double it"]`).
		AddResponse("5").
		AddResponse("10")
	var out bytes.Buffer

	err := answer(context.Background(), planRunner(planandsolve.NewAgent(model)), &out, "double 2+3")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "1. Add the numbers")
	assert.Contains(t, out.String(), "2. Double it")
	assert.Contains(t, out.String(), "Answer:"+colorReset+" 10")
}

func TestAnswer_PlanAndSolveNoPlan(t *testing.T) {
	model := tt.NewMockModel().AddResponse("no idea")
	var out bytes.Buffer

	err := answer(context.Background(), planRunner(planandsolve.NewAgent(model)), &out, "q")

	assert.ErrorIs(t, err, planandsolve.ErrNoPlan)
}

func TestAnswer_Reflection(t *testing.T) {
	tests := []struct {
		name     string
		model    *tt.MockModel
		expected string
	}{
		{
			name:     "converged",
			model:    tt.NewMockModel().AddResponse("x = 1").AddResponse("No need for improvement"),
			expected: "Answer:" + colorReset + " x = 1",
		},
		{
			name:     "rounds exhausted",
			model:    tt.NewMockModel().WithFallback("Add a docstring."),
			expected: "Latest draft after 1 rounds:",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			agent := reflection.NewAgent(tc.model).WithMaxIterations(1)

			err := answer(context.Background(), reflectRunner(agent), &out, "t")

			require.NoError(t, err)
			assert.Contains(t, out.String(), tc.expected)
		})
	}
}
