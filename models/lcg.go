package models

import (
	"context"
	"errors"
	"time"

	"github.com/helloagents/reagent"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

var errNoChoices = errors.New("model returned no choices")

// LCG adapts a LangChainGo llms.Model to reagent.Model and
// reagent.StreamingModel.
//
// Example usage:
//
//	llm, _ := openai.New(openai.WithToken(apiKey))
//	model := models.NewLCG(llm).WithCallOptions(llms.WithTemperature(0))
//
// Provider failures are classified with Classify, so callers can match them
// against reagent.ErrConnection and reagent.ErrStatus.
type LCG struct {
	model   llms.Model
	options []llms.CallOption
	logger  *zap.Logger
}

// NewLCG creates a new LCG wrapping the given llms.Model.
func NewLCG(model llms.Model) *LCG {
	return &LCG{
		model:  model,
		logger: zap.NewNop(),
	}
}

// WithCallOptions sets options passed on every call, before the streaming
// callback.
func (m *LCG) WithCallOptions(options ...llms.CallOption) *LCG {
	m.options = append(m.options, options...)
	return m
}

// WithLogger sets the logger used for per-call token usage.
func (m *LCG) WithLogger(logger *zap.Logger) *LCG {
	if logger == nil {
		logger = zap.NewNop()
	}
	m.logger = logger
	return m
}

// CallOptions returns the options set with WithCallOptions, resolved.
func (m *LCG) CallOptions() llms.CallOptions {
	var opts llms.CallOptions
	for _, o := range m.options {
		o(&opts)
	}
	return opts
}

// Unwrap returns the underlying llms.Model.
func (m *LCG) Unwrap() llms.Model {
	return m.model
}

// Complete implements reagent.Model.
func (m *LCG) Complete(ctx context.Context, turns []reagent.Turn) (string, error) {
	start := time.Now()
	resp, err := m.model.GenerateContent(ctx, Messages(turns), m.options...)
	if err != nil {
		return "", Classify(err)
	}
	return m.content(resp, time.Since(start))
}

// CompleteStream implements reagent.StreamingModel. The provider call runs
// in its own goroutine; fragments are buffered so it never waits on the
// reader.
func (m *LCG) CompleteStream(ctx context.Context, turns []reagent.Turn) (reagent.Stream, error) {
	stream := reagent.NewChunkStream()

	callback := llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
		stream.Send(string(chunk))
		return nil
	})

	// The callback goes last so user options cannot replace it.
	opts := make([]llms.CallOption, 0, len(m.options)+1)
	opts = append(opts, m.options...)
	opts = append(opts, callback)

	messages := Messages(turns)
	go func() {
		start := time.Now()
		resp, err := m.model.GenerateContent(ctx, messages, opts...)
		if err != nil {
			stream.Fail(Classify(err))
			return
		}
		m.logUsage(resp, time.Since(start))
		stream.Close()
	}()

	return stream, nil
}

func (m *LCG) content(resp *llms.ContentResponse, elapsed time.Duration) (string, error) {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", &reagent.ModelError{Kind: reagent.ModelErrorUnknown, Err: errNoChoices}
	}
	m.logUsage(resp, elapsed)
	return resp.Choices[0].Content, nil
}

func (m *LCG) logUsage(resp *llms.ContentResponse, elapsed time.Duration) {
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return
	}
	info := resp.Choices[0].GenerationInfo
	m.logger.Debug("model call completed",
		zap.Duration("duration", elapsed),
		zap.Int("input_tokens", tokenCount(info, "PromptTokens", "InputTokens", "input_tokens")),
		zap.Int("output_tokens", tokenCount(info, "CompletionTokens", "OutputTokens", "output_tokens")),
	)
}

// Messages converts a conversation into LangChainGo message content.
func Messages(turns []reagent.Turn) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(turns))
	for _, t := range turns {
		out = append(out, llms.TextParts(messageType(t.Role), t.Text))
	}
	return out
}

func messageType(role reagent.Role) llms.ChatMessageType {
	switch role {
	case reagent.RoleSystem:
		return llms.ChatMessageTypeSystem
	case reagent.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// tokenCount returns the first positive count found under keys. Providers
// disagree on the key names.
func tokenCount(info map[string]any, keys ...string) int {
	for _, key := range keys {
		var n int
		switch v := info[key].(type) {
		case int:
			n = v
		case int32:
			n = int(v)
		case int64:
			n = int(v)
		case float64:
			n = int(v)
		}
		if n > 0 {
			return n
		}
	}
	return 0
}

// Compile-time check that LCG implements reagent.Model.
var _ reagent.Model = (*LCG)(nil)

// Compile-time check that LCG implements reagent.StreamingModel.
var _ reagent.StreamingModel = (*LCG)(nil)
