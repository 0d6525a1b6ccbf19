// Package loggers provides hooks that write human-readable run transcripts.
package loggers

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/helloagents/reagent"
	"gopkg.in/yaml.v3"
)

// Record is one transcript entry. Fields that do not apply to an event are
// omitted.
type Record struct {
	Event       string            `yaml:"event"`
	Time        string            `yaml:"time"`
	RunID       string            `yaml:"run_id"`
	Iteration   int               `yaml:"iteration,omitempty"`
	Question    string            `yaml:"question,omitempty"`
	MaxSteps    int               `yaml:"max_steps,omitempty"`
	State       string            `yaml:"state,omitempty"`
	Response    string            `yaml:"response,omitempty"`
	Tool        string            `yaml:"tool,omitempty"`
	Args        map[string]string `yaml:"args,omitempty"`
	Observation string            `yaml:"observation,omitempty"`
	Failed      bool              `yaml:"failed,omitempty"`
	Kind        string            `yaml:"kind,omitempty"`
	Message     string            `yaml:"message,omitempty"`
	Outcome     string            `yaml:"outcome,omitempty"`
	Answer      string            `yaml:"answer,omitempty"`
	Iterations  int               `yaml:"iterations,omitempty"`
	Duration    string            `yaml:"duration,omitempty"`
	Error       string            `yaml:"error,omitempty"`
}

// YAMLHook writes every run event as a YAML document. Multi-line text such
// as model responses is written as block scalars, and nothing is truncated.
//
// Concurrent runs interleave documents but never lines; use RunID to tell
// them apart.
type YAMLHook struct {
	mu  sync.Mutex
	out io.Writer
	now func() time.Time
}

// NewYAMLHook creates a YAMLHook that writes to stdout.
func NewYAMLHook() *YAMLHook {
	return NewYAMLHookWithWriter(os.Stdout)
}

// NewYAMLHookWithWriter creates a YAMLHook that writes to w.
func NewYAMLHookWithWriter(w io.Writer) *YAMLHook {
	return &YAMLHook{out: w, now: time.Now}
}

func (h *YAMLHook) write(r Record) {
	r.Time = h.now().Format("2006-01-02 15:04:05.000")

	data, err := yaml.Marshal(r)
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		fmt.Fprintf(h.out, "---\n# failed to marshal %s: %v\n", r.Event, err)
		return
	}
	fmt.Fprintf(h.out, "---\n%s", data)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// OnBeforeRun implements reagent.BeforeRunHook.
func (h *YAMLHook) OnBeforeRun(_ context.Context, e reagent.BeforeRunEvent) {
	h.write(Record{Event: "before_run", RunID: e.RunID, Question: e.Question, MaxSteps: e.MaxSteps})
}

// OnAfterRun implements reagent.AfterRunHook.
func (h *YAMLHook) OnAfterRun(_ context.Context, e reagent.AfterRunEvent) {
	h.write(Record{
		Event:      "after_run",
		RunID:      e.RunID,
		Outcome:    string(e.Outcome),
		Answer:     e.Answer,
		Iterations: e.Iterations,
		Duration:   e.Duration.String(),
		Error:      errText(e.Err),
	})
}

// OnAfterModelCall implements reagent.AfterModelCallHook.
func (h *YAMLHook) OnAfterModelCall(_ context.Context, e reagent.AfterModelCallEvent) {
	h.write(Record{
		Event:     "model_call",
		RunID:     e.RunID,
		Iteration: e.Iteration,
		Response:  e.Response,
		Duration:  e.Duration.String(),
		Error:     errText(e.Err),
	})
}

// OnAfterToolCall implements reagent.AfterToolCallHook.
func (h *YAMLHook) OnAfterToolCall(_ context.Context, e reagent.AfterToolCallEvent) {
	h.write(Record{
		Event:       "tool_call",
		RunID:       e.RunID,
		Iteration:   e.Iteration,
		Tool:        e.ToolName,
		Args:        e.Args,
		Observation: e.Observation,
		Failed:      e.Failed,
		Duration:    e.Duration.String(),
	})
}

// OnRecovery implements reagent.RecoveryHook.
func (h *YAMLHook) OnRecovery(_ context.Context, e reagent.RecoveryEvent) {
	h.write(Record{
		Event:     "recovery",
		RunID:     e.RunID,
		Iteration: e.Iteration,
		Kind:      string(e.Kind),
		Tool:      e.ToolName,
		Message:   e.Message,
		Error:     errText(e.Err),
	})
}

// OnAfterIteration implements reagent.AfterIterationHook.
func (h *YAMLHook) OnAfterIteration(_ context.Context, e reagent.AfterIterationEvent) {
	h.write(Record{
		Event:     "iteration",
		RunID:     e.RunID,
		Iteration: e.Iteration,
		State:     string(e.State),
		Duration:  e.Duration.String(),
	})
}

// Compile-time checks that YAMLHook implements the hooks it logs.
var (
	_ reagent.BeforeRunHook      = (*YAMLHook)(nil)
	_ reagent.AfterRunHook       = (*YAMLHook)(nil)
	_ reagent.AfterIterationHook = (*YAMLHook)(nil)
	_ reagent.AfterModelCallHook = (*YAMLHook)(nil)
	_ reagent.AfterToolCallHook  = (*YAMLHook)(nil)
	_ reagent.RecoveryHook       = (*YAMLHook)(nil)
)
