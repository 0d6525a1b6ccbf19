package models

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/helloagents/reagent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeLLM is an llms.Model that returns a fixed reply, streaming it word by
// word when a streaming callback is set.
type fakeLLM struct {
	reply    string
	err      error
	choices  []*llms.ContentChoice
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (f *fakeLLM) GenerateContent(
	ctx context.Context,
	messages []llms.MessageContent,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, o := range options {
		o(&f.opts)
	}
	if f.opts.StreamingFunc != nil {
		for _, w := range strings.SplitAfter(f.reply, " ") {
			if err := f.opts.StreamingFunc(ctx, []byte(w)); err != nil {
				return nil, err
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.choices != nil {
		return &llms.ContentResponse{Choices: f.choices}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content:        f.reply,
		GenerationInfo: map[string]any{"PromptTokens": 12, "CompletionTokens": 3},
	}}}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestMessages(t *testing.T) {
	msgs := Messages([]reagent.Turn{
		{Role: reagent.RoleSystem, Text: "rules"},
		{Role: reagent.RoleUser, Text: "question"},
		{Role: reagent.RoleAssistant, Text: "Thought: hm"},
	})

	require.Len(t, msgs, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, msgs[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, msgs[2].Role)
	assert.Equal(t, []llms.ContentPart{llms.TextContent{Text: "question"}}, msgs[1].Parts)
}

func TestLCG_Complete(t *testing.T) {
	llm := &fakeLLM{reply: "Thought: done"}
	model := NewLCG(llm).WithCallOptions(llms.WithTemperature(0.2))

	text, err := model.Complete(context.Background(), []reagent.Turn{
		{Role: reagent.RoleUser, Text: "hi"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Thought: done", text)
	assert.Len(t, llm.messages, 1)
	assert.InDelta(t, 0.2, llm.opts.Temperature, 1e-9)
	assert.Nil(t, llm.opts.StreamingFunc)
	assert.Same(t, llm, model.Unwrap())
}

func TestLCG_CompleteErrors(t *testing.T) {
	type input struct {
		llm *fakeLLM
	}

	type expected struct {
		sentinel error
		status   int
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name:     "status error",
			input:    input{llm: &fakeLLM{err: errors.New("API returned unexpected status code: 429: slow down")}},
			expected: expected{sentinel: reagent.ErrStatus, status: 429},
		},
		{
			name:     "deadline",
			input:    input{llm: &fakeLLM{err: context.DeadlineExceeded}},
			expected: expected{sentinel: reagent.ErrConnection},
		},
		{
			name:     "cancelled",
			input:    input{llm: &fakeLLM{err: context.Canceled}},
			expected: expected{sentinel: reagent.ErrConnection},
		},
		{
			name:     "no choices",
			input:    input{llm: &fakeLLM{choices: []*llms.ContentChoice{}}},
			expected: expected{sentinel: reagent.ErrUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLCG(tt.input.llm).Complete(context.Background(), nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected.sentinel)
			var me *reagent.ModelError
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.expected.status, me.StatusCode)
		})
	}
}

func TestLCG_CompleteStream(t *testing.T) {
	llm := &fakeLLM{reply: "Thought: streaming works"}
	model := NewLCG(llm)

	stream, err := model.CompleteStream(context.Background(), []reagent.Turn{
		{Role: reagent.RoleUser, Text: "hi"},
	})
	require.NoError(t, err)

	var fragments []string
	text, err := reagent.Collect(stream, func(s string) { fragments = append(fragments, s) }, nil)

	require.NoError(t, err)
	assert.Equal(t, "Thought: streaming works", text)
	assert.Equal(t, []string{"Thought: ", "streaming ", "works"}, fragments)
}

func TestLCG_CompleteStreamFailure(t *testing.T) {
	llm := &fakeLLM{reply: "partial ", err: errors.New("read tcp: status code: 502")}

	stream, err := NewLCG(llm).CompleteStream(context.Background(), nil)
	require.NoError(t, err)

	text, err := reagent.Collect(stream, func(string) {}, nil)

	assert.Equal(t, "partial ", text)
	assert.ErrorIs(t, err, reagent.ErrStatus)
}
