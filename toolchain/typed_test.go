package toolchain

import (
	"context"
	"fmt"
	"testing"

	"github.com/helloagents/reagent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type forecastInput struct {
	City   string `json:"city"`
	Days   int    `json:"days"`
	Metric bool   `json:"metric"`
}

var forecastSpec = reagent.ToolSpec{
	Name: "forecast",
	Parameters: []reagent.Param{
		{Name: "city", Type: reagent.ParamString, Required: true},
		{Name: "days", Type: reagent.ParamInteger},
		{Name: "metric", Type: reagent.ParamBoolean},
	},
}

func TestTypedTool_Decodes(t *testing.T) {
	var got forecastInput
	tool := NewTypedTool(forecastSpec, func(_ context.Context, in forecastInput) (string, error) {
		got = in
		return fmt.Sprintf("%s for %d days", in.City, in.Days), nil
	})

	out, err := tool.Call(context.Background(), map[string]string{
		"city":   "Nanjing",
		"days":   "3",
		"metric": "true",
	})

	require.NoError(t, err)
	assert.Equal(t, "Nanjing for 3 days", out)
	assert.Equal(t, forecastInput{City: "Nanjing", Days: 3, Metric: true}, got)
	assert.Equal(t, forecastSpec, tool.Spec())
}

func TestTypedTool_DecodeError(t *testing.T) {
	tool := NewTypedTool(forecastSpec, func(_ context.Context, in forecastInput) (string, error) {
		return "unreachable", nil
	})

	_, err := tool.Call(context.Background(), map[string]string{"city": "x", "days": "many"})
	assert.ErrorIs(t, err, reagent.ErrInvalidArgument)
}

func TestTypedTool_ThroughExecutor(t *testing.T) {
	tool := NewTypedTool(forecastSpec, func(_ context.Context, in forecastInput) (string, error) {
		return in.City, nil
	})
	exec := NewExecutor(NewCatalog().MustRegister(tool))

	assert.Equal(t, "Nanjing", exec.Execute(context.Background(), "forecast",
		map[string]string{"city": "Nanjing", "unused": "1"}))
}
