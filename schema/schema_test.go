package schema

import (
	"testing"

	"github.com/helloagents/reagent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weatherSpec = reagent.ToolSpec{
	Name:        "get_weather",
	Description: "Current weather",
	Parameters: []reagent.Param{
		{Name: "city", Type: reagent.ParamString, Required: true, Description: "City name"},
		{Name: "days", Type: reagent.ParamInteger},
		{Name: "metric", Type: reagent.ParamBoolean},
		{Name: "lat", Type: reagent.ParamNumber},
	},
}

func TestCompile_Nil(t *testing.T) {
	s, err := Compile(nil)
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Nil(t, s.Raw())
	assert.NoError(t, s.Validate(map[string]any{"anything": 1}))
}

func TestForTool(t *testing.T) {
	raw, err := ForTool(weatherSpec)
	require.NoError(t, err)

	assert.Equal(t, "object", raw["type"])
	assert.Equal(t, []string{"city"}, raw["required"])

	props := raw["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "description": "City name"}, props["city"])
	assert.Equal(t, map[string]any{"type": "integer"}, props["days"])
	assert.Equal(t, map[string]any{"type": "boolean"}, props["metric"])
	assert.Equal(t, map[string]any{"type": "number"}, props["lat"])
}

func TestForTool_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		params []reagent.Param
	}{
		{
			name:   "unnamed parameter",
			params: []reagent.Param{{Type: reagent.ParamString}},
		},
		{
			name:   "unsupported type",
			params: []reagent.Param{{Name: "tags", Type: "array"}},
		},
		{
			name: "duplicate parameter",
			params: []reagent.Param{
				{Name: "city", Type: reagent.ParamString},
				{Name: "city", Type: reagent.ParamString},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ForTool(reagent.ToolSpec{Name: "bad", Parameters: tt.params})
			assert.ErrorIs(t, err, reagent.ErrInvalidToolSpec)
		})
	}
}

func TestCoerce(t *testing.T) {
	got := Coerce(weatherSpec, map[string]string{
		"city":   "Nanjing",
		"days":   " 3 ",
		"metric": "true",
		"lat":    "32.06",
		"extra":  "dropped",
	})

	assert.Equal(t, map[string]any{
		"city":   "Nanjing",
		"days":   float64(3),
		"metric": true,
		"lat":    32.06,
	}, got)
}

func TestCoerce_UnparseableStaysString(t *testing.T) {
	got := Coerce(weatherSpec, map[string]string{"days": "three", "metric": "maybe"})
	assert.Equal(t, map[string]any{"days": "three", "metric": "maybe"}, got)
}

func TestCompileTool_Validate(t *testing.T) {
	s, err := CompileTool(weatherSpec)
	require.NoError(t, err)

	type input struct {
		args map[string]string
	}

	type expected struct {
		valid    bool
		contains string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "all valid",
			input:    input{args: map[string]string{"city": "Nanjing", "days": "2", "metric": "false"}},
			expected: expected{valid: true},
		},
		{
			name:     "missing required",
			input:    input{args: map[string]string{"days": "2"}},
			expected: expected{contains: "city"},
		},
		{
			name:     "integer that is not a number",
			input:    input{args: map[string]string{"city": "Nanjing", "days": "two"}},
			expected: expected{contains: "invalid arguments"},
		},
		{
			name:     "fractional integer",
			input:    input{args: map[string]string{"city": "Nanjing", "days": "1.5"}},
			expected: expected{contains: "invalid arguments"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(Coerce(weatherSpec, tt.input.args))
			if tt.expected.valid {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.expected.contains)
		})
	}
}
