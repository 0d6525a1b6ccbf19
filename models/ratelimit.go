package models

import (
	"context"

	"github.com/helloagents/reagent"
	"golang.org/x/time/rate"
)

// Limited wraps a Model so every call first waits on a token bucket.
type Limited struct {
	model   reagent.Model
	limiter *rate.Limiter
}

// RateLimited returns model behind limiter. A nil limiter returns model
// unchanged. Waiting honors ctx; a cancelled wait is reported as a
// connection error.
func RateLimited(model reagent.Model, limiter *rate.Limiter) reagent.Model {
	if limiter == nil {
		return model
	}
	return &Limited{model: model, limiter: limiter}
}

// NewLimiter builds a limiter allowing rps calls per second with a burst of
// one. rps <= 0 returns nil, meaning unlimited.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// Complete implements reagent.Model.
func (l *Limited) Complete(ctx context.Context, turns []reagent.Turn) (string, error) {
	if err := l.wait(ctx); err != nil {
		return "", err
	}
	return l.model.Complete(ctx, turns)
}

// CompleteStream implements reagent.StreamingModel. When the wrapped model
// cannot stream, its atomic result is delivered as a single fragment.
func (l *Limited) CompleteStream(ctx context.Context, turns []reagent.Turn) (reagent.Stream, error) {
	if err := l.wait(ctx); err != nil {
		return nil, err
	}
	if sm, ok := l.model.(reagent.StreamingModel); ok {
		return sm.CompleteStream(ctx, turns)
	}

	text, err := l.model.Complete(ctx, turns)
	if err != nil {
		return nil, err
	}
	stream := reagent.NewChunkStream()
	stream.Send(text)
	stream.Close()
	return stream, nil
}

func (l *Limited) wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return &reagent.ModelError{Kind: reagent.ModelErrorConnection, Err: err}
	}
	return nil
}

// Compile-time check that Limited implements reagent.StreamingModel.
var _ reagent.StreamingModel = (*Limited)(nil)
