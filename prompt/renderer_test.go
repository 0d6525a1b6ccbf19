package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/helloagents/reagent"
	"github.com/helloagents/reagent/internal/tt"
	"github.com/helloagents/reagent/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRender_ListsToolsAndFinish(t *testing.T) {
	catalog := toolchain.NewCatalog().MustRegister(
		tt.NewMockTool(tt.WeatherSpec(), ""),
		tt.NewMockTool(reagent.ToolSpec{
			Name:        "search",
			Description: "Search the web.",
			Parameters: []reagent.Param{
				{Name: "query", Type: reagent.ParamString, Required: true},
				{Name: "limit", Type: reagent.ParamInteger},
			},
		}, ""),
	)

	out := DefaultRenderer.Render(catalog, "What's the weather in Nanjing?")

	assert.Contains(t, out, "- get_weather(city: string): Get the current weather for a city.")
	assert.Contains(t, out, "    - city (string, required): City name")
	assert.Contains(t, out, "- search(query: string, limit: integer): Search the web.")
	assert.Contains(t, out, "    - limit (integer)\n")
	assert.Contains(t, out, "- finish(answer: string):")
	assert.Contains(t, out, "    - answer (string, required)")

	weather := strings.Index(out, "- get_weather(")
	search := strings.Index(out, "- search(")
	finish := strings.Index(out, "- finish(")
	assert.True(t, weather < search && search < finish, "tools must keep catalog order with finish last")
}

func TestRender_EmptyCatalogStillHasFinish(t *testing.T) {
	for _, catalog := range []reagent.ToolCatalog{nil, toolchain.NewCatalog()} {
		out := DefaultRenderer.Render(catalog, "q")
		assert.Contains(t, out, "- finish(answer: string)")
	}
}

func TestRender_Instructions(t *testing.T) {
	r := NewRenderer().WithInstructions("Always answer in English.")

	assert.Contains(t, r.Render(nil, "q"), "Always answer in English.")
	assert.NotContains(t, DefaultRenderer.Render(nil, "q"), "Always answer in English.")
}

func TestWithTemplateString(t *testing.T) {
	t.Run("custom template", func(t *testing.T) {
		r, err := NewRenderer().WithTemplateString(
			`Q={{.Question}}{{range .Tools}};{{.Name}}({{signature .Parameters}}){{end}}`)
		require.NoError(t, err)

		catalog := toolchain.NewCatalog().MustRegister(tt.NewMockTool(tt.WeatherSpec(), ""))
		assert.Equal(t, "Q=hi;get_weather(city: string);finish(answer: string)", r.Render(catalog, "hi"))
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := NewRenderer().WithTemplateString("{{.Question")
		assert.Error(t, err)
	})

	t.Run("execution error falls back to default", func(t *testing.T) {
		r, err := NewRenderer().WithTemplateString("{{.Missing.Field}}")
		require.NoError(t, err)

		assert.Equal(t, DefaultRenderer.Render(nil, "q"), r.Render(nil, "q"))
	})
}

func TestRender_Property_Deterministic(t *testing.T) {
	types := []reagent.ParamType{
		reagent.ParamString, reagent.ParamInteger, reagent.ParamNumber, reagent.ParamBoolean,
	}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 6).Draw(t, "tools")
		catalog := toolchain.NewCatalog()
		for i := range n {
			var params []reagent.Param
			for j := range rapid.IntRange(0, 3).Draw(t, "params") {
				params = append(params, reagent.Param{
					Name:     fmt.Sprintf("p%d", j),
					Type:     rapid.SampledFrom(types).Draw(t, "type"),
					Required: rapid.Bool().Draw(t, "required"),
				})
			}
			err := catalog.Register(tt.NewMockTool(reagent.ToolSpec{
				Name:        fmt.Sprintf("tool_%d", i),
				Description: rapid.StringMatching(`[a-z ]{0,20}`).Draw(t, "desc"),
				Parameters:  params,
			}, ""))
			if err != nil {
				t.Fatal(err)
			}
		}
		question := rapid.String().Draw(t, "question")

		first := DefaultRenderer.Render(catalog, question)
		second := DefaultRenderer.Render(catalog, question)
		if first != second {
			t.Fatalf("render is not deterministic")
		}
		if !strings.Contains(first, "- finish(answer: string)") {
			t.Fatalf("finish missing")
		}
	})
}
