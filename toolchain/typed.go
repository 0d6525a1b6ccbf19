package toolchain

import (
	"context"
	"fmt"

	"github.com/helloagents/reagent"
	"github.com/mitchellh/mapstructure"
)

// TypedTool is a Tool whose arguments are decoded into a struct before the
// handler runs.
//
//	type weatherInput struct {
//	    City string `json:"city"`
//	    Days int    `json:"days"`
//	}
//
//	tool := toolchain.NewTypedTool(spec,
//	    func(ctx context.Context, in weatherInput) (string, error) {
//	        return forecast(in.City, in.Days)
//	    })
//
// Fields are matched by their json tag, falling back to a case-insensitive
// match on the field name. Decoding is weakly typed, so the string "3" fills
// an int field and "true" fills a bool field.
type TypedTool[I any] struct {
	spec reagent.ToolSpec
	fn   func(ctx context.Context, input I) (string, error)
}

// NewTypedTool creates a TypedTool.
func NewTypedTool[I any](
	spec reagent.ToolSpec,
	fn func(ctx context.Context, input I) (string, error),
) *TypedTool[I] {
	return &TypedTool[I]{spec: spec, fn: fn}
}

// Spec returns the tool's declared schema.
func (t *TypedTool[I]) Spec() reagent.ToolSpec {
	return t.spec
}

// Call decodes args into I and invokes the handler.
func (t *TypedTool[I]) Call(ctx context.Context, args map[string]string) (string, error) {
	var input I
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &input,
	})
	if err != nil {
		return "", fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return "", fmt.Errorf("%w: %v", reagent.ErrInvalidArgument, err)
	}
	return t.fn(ctx, input)
}

// Compile-time check that TypedTool implements reagent.Tool.
var _ reagent.Tool = (*TypedTool[struct{}])(nil)
