package tt

import (
	"context"
	"strings"
	"sync"

	"github.com/helloagents/reagent"
)

// -----------------------------------------------------------------------------
// MockModel - implements reagent.Model
// -----------------------------------------------------------------------------

// MockModel replays queued responses in order. Once the queue is exhausted
// every further call returns the fallback response.
type MockModel struct {
	mu        sync.Mutex
	responses []string
	errors    []error
	fallback  string
	callCount int

	// CapturedTurns stores the conversation passed to each call.
	CapturedTurns [][]reagent.Turn
}

// NewMockModel creates a MockModel with an empty fallback response.
func NewMockModel() *MockModel {
	return &MockModel{}
}

// AddResponse queues a response.
func (m *MockModel) AddResponse(text string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, text)
	m.errors = append(m.errors, nil)
	return m
}

// AddError queues a failure for the next call.
func (m *MockModel) AddError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, "")
	m.errors = append(m.errors, err)
	return m
}

// WithFallback sets the response returned after the queue runs dry.
func (m *MockModel) WithFallback(text string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = text
	return m
}

// CallCount returns the number of calls made so far.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// next records a call and returns its scripted result.
func (m *MockModel) next(turns []reagent.Turn) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.callCount
	m.callCount++

	captured := make([]reagent.Turn, len(turns))
	copy(captured, turns)
	m.CapturedTurns = append(m.CapturedTurns, captured)

	if idx < len(m.responses) {
		return m.responses[idx], m.errors[idx]
	}
	return m.fallback, nil
}

// Complete implements reagent.Model.
func (m *MockModel) Complete(ctx context.Context, turns []reagent.Turn) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return m.next(turns)
}

// -----------------------------------------------------------------------------
// MockStreamingModel - implements reagent.StreamingModel
// -----------------------------------------------------------------------------

// MockStreamingModel streams each scripted response word by word. A queued
// error is delivered as a failing chunk after the response's text.
type MockStreamingModel struct {
	*MockModel

	streamCalls int
}

// NewMockStreamingModel creates a MockStreamingModel.
func NewMockStreamingModel() *MockStreamingModel {
	return &MockStreamingModel{MockModel: NewMockModel()}
}

// StreamCalls returns how many calls went through CompleteStream.
func (m *MockStreamingModel) StreamCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.streamCalls
}

// CompleteStream implements reagent.StreamingModel.
func (m *MockStreamingModel) CompleteStream(
	ctx context.Context,
	turns []reagent.Turn,
) (reagent.Stream, error) {
	text, err := m.next(turns)

	m.mu.Lock()
	m.streamCalls++
	m.mu.Unlock()

	s := reagent.NewChunkStream()
	go func() {
		for _, frag := range SplitWords(text) {
			s.Send(frag)
		}
		if err != nil {
			s.Fail(err)
			return
		}
		s.Close()
	}()
	return s, nil
}

// SplitWords splits text into fragments that concatenate back to text.
func SplitWords(text string) []string {
	var out []string
	for text != "" {
		i := strings.IndexByte(text, ' ')
		if i < 0 {
			out = append(out, text)
			break
		}
		out = append(out, text[:i+1])
		text = text[i+1:]
	}
	return out
}

// -----------------------------------------------------------------------------
// MockTool - implements reagent.Tool
// -----------------------------------------------------------------------------

// MockTool records every call it receives.
type MockTool struct {
	mu   sync.Mutex
	spec reagent.ToolSpec
	fn   func(args map[string]string) (string, error)

	Calls []map[string]string
}

// NewMockTool creates a tool that returns output for every call.
func NewMockTool(spec reagent.ToolSpec, output string) *MockTool {
	return &MockTool{
		spec: spec,
		fn:   func(map[string]string) (string, error) { return output, nil },
	}
}

// NewMockToolFunc creates a tool backed by fn.
func NewMockToolFunc(
	spec reagent.ToolSpec,
	fn func(args map[string]string) (string, error),
) *MockTool {
	return &MockTool{spec: spec, fn: fn}
}

// Spec implements reagent.Tool.
func (t *MockTool) Spec() reagent.ToolSpec { return t.spec }

// Call implements reagent.Tool.
func (t *MockTool) Call(_ context.Context, args map[string]string) (string, error) {
	t.mu.Lock()
	t.Calls = append(t.Calls, args)
	t.mu.Unlock()
	return t.fn(args)
}

// CallCount returns how many times the tool ran.
func (t *MockTool) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Calls)
}

// WeatherSpec is a one-parameter tool spec shared by tests.
func WeatherSpec() reagent.ToolSpec {
	return reagent.ToolSpec{
		Name:        "get_weather",
		Description: "Get the current weather for a city.",
		Parameters: []reagent.Param{
			{Name: "city", Type: reagent.ParamString, Required: true, Description: "City name"},
		},
	}
}

// -----------------------------------------------------------------------------
// RecordingHook - implements every reagent hook interface
// -----------------------------------------------------------------------------

// RecordingHook records the name of every event it receives, in order, and
// keeps the typed events for closer inspection.
type RecordingHook struct {
	mu     sync.Mutex
	Names  []string
	Runs   []reagent.AfterRunEvent
	Models []reagent.AfterModelCallEvent
	Tools  []reagent.AfterToolCallEvent
	Recov  []reagent.RecoveryEvent
	Iters  []reagent.AfterIterationEvent
}

func (h *RecordingHook) record(name string) {
	h.Names = append(h.Names, name)
}

func (h *RecordingHook) OnBeforeRun(_ context.Context, _ reagent.BeforeRunEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("before_run")
}

func (h *RecordingHook) OnAfterRun(_ context.Context, e reagent.AfterRunEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("after_run")
	h.Runs = append(h.Runs, e)
}

func (h *RecordingHook) OnBeforeIteration(_ context.Context, _ reagent.BeforeIterationEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("before_iteration")
}

func (h *RecordingHook) OnAfterIteration(_ context.Context, e reagent.AfterIterationEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("after_iteration")
	h.Iters = append(h.Iters, e)
}

func (h *RecordingHook) OnAfterModelCall(_ context.Context, e reagent.AfterModelCallEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("after_model_call")
	h.Models = append(h.Models, e)
}

func (h *RecordingHook) OnAfterToolCall(_ context.Context, e reagent.AfterToolCallEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("after_tool_call")
	h.Tools = append(h.Tools, e)
}

func (h *RecordingHook) OnRecovery(_ context.Context, e reagent.RecoveryEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.record("recovery")
	h.Recov = append(h.Recov, e)
}
