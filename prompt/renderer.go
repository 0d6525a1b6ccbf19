// Package prompt renders the system prompt that teaches the model the tool
// catalog and the Thought/Action output format.
//
// The prompt is a Go text/template. Templates see [Data]:
//   - {{.Tools}} - every catalog tool in registration order, then finish
//   - {{.Question}} - the user question of the run
//   - {{.Instructions}} - optional operator text from WithInstructions
//
// and one helper, {{signature .Parameters}}, which renders "city: string"
// style parameter lists.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/helloagents/reagent"
)

//go:embed system.tmpl
var systemTemplateContent string

var funcs = Funcs()

// DefaultTemplate is the built-in system prompt template.
var DefaultTemplate = template.Must(
	template.New("system").Funcs(funcs).Parse(systemTemplateContent),
)

// DefaultRenderer renders DefaultTemplate without extra instructions.
var DefaultRenderer = NewRenderer()

// Data is what templates are executed with.
type Data struct {
	Tools        []reagent.ToolSpec
	Question     string
	Instructions string
}

// Renderer turns a catalog and question into a system prompt. Render is a
// pure function of its inputs: the same catalog and question always produce
// the same bytes.
//
// Renderer values are immutable; the With methods return modified copies.
type Renderer struct {
	tmpl         *template.Template
	instructions string
}

// NewRenderer creates a Renderer using DefaultTemplate.
func NewRenderer() *Renderer {
	return &Renderer{tmpl: DefaultTemplate}
}

// WithTemplate returns a copy rendering tmpl. The template must have been
// parsed with [Funcs] if it uses signature.
func (r *Renderer) WithTemplate(tmpl *template.Template) *Renderer {
	out := *r
	out.tmpl = tmpl
	return &out
}

// WithTemplateString parses s and returns a copy rendering it. Returns an
// error if s is not a valid template.
func (r *Renderer) WithTemplateString(s string) (*Renderer, error) {
	tmpl, err := template.New("system").Funcs(funcs).Parse(s)
	if err != nil {
		return r, fmt.Errorf("failed to parse template: %w", err)
	}
	return r.WithTemplate(tmpl), nil
}

// WithInstructions returns a copy passing text as {{.Instructions}}.
func (r *Renderer) WithInstructions(text string) *Renderer {
	out := *r
	out.instructions = text
	return &out
}

// Funcs returns the helper functions available to templates.
func Funcs() template.FuncMap {
	return template.FuncMap{"signature": signature}
}

// Render executes the template. The reserved finish tool is always appended
// to the tool list. If a custom template fails to execute, the built-in one
// is used instead, so the result is never empty.
func (r *Renderer) Render(catalog reagent.ToolCatalog, question string) string {
	data := Data{
		Question:     question,
		Instructions: r.instructions,
	}
	if catalog != nil {
		data.Tools = catalog.Specs()
	}
	data.Tools = append(data.Tools, reagent.FinishSpec())

	tmpl := r.tmpl
	if tmpl == nil {
		tmpl = DefaultTemplate
	}
	out, err := execute(tmpl, data)
	if err != nil {
		out, _ = execute(DefaultTemplate, data)
	}
	return out
}

func execute(tmpl *template.Template, data Data) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func signature(params []reagent.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	return strings.Join(parts, ", ")
}
