package reagent

import (
	"context"
	"io"
)

// Model is a synchronous request/response wrapper around a remote
// chat-completion endpoint. Given the ordered conversation it returns one
// generated assistant turn.
//
// Failures should be reported as *ModelError so callers can tell connection
// problems from remote status errors. Adapters that return plain errors are
// treated as ModelErrorUnknown.
type Model interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// StreamingModel is a Model that can also deliver its response incrementally.
type StreamingModel interface {
	Model

	// CompleteStream starts generation and returns immediately. The returned
	// Stream yields text fragments until the response is complete.
	CompleteStream(ctx context.Context, turns []Turn) (Stream, error)
}

// ModelFunc adapts a plain function into a Model.
type ModelFunc func(ctx context.Context, turns []Turn) (string, error)

// Complete calls f.
func (f ModelFunc) Complete(ctx context.Context, turns []Turn) (string, error) {
	return f(ctx, turns)
}

// Complete is the combined completion contract. When stream is true and the
// model implements StreamingModel, fragments are passed to handler as they
// arrive, or written to sink when handler is nil, and the concatenated text
// is returned. Otherwise the model is called atomically.
//
// Errors are always returned as *ModelError.
func Complete(
	ctx context.Context,
	model Model,
	turns []Turn,
	stream bool,
	handler ChunkHandler,
	sink io.Writer,
) (string, error) {
	if stream {
		if sm, ok := model.(StreamingModel); ok {
			s, err := sm.CompleteStream(ctx, turns)
			if err != nil {
				return "", AsModelError(err)
			}
			text, err := Collect(s, handler, sink)
			if err != nil {
				return text, AsModelError(err)
			}
			return text, nil
		}
	}

	text, err := model.Complete(ctx, turns)
	if err != nil {
		return "", AsModelError(err)
	}
	return text, nil
}
