package hooks

import (
	"context"
	"testing"

	"github.com/helloagents/reagent"
	"github.com/helloagents/reagent/internal/tt"
	"github.com/stretchr/testify/assert"
)

type recoveryOnly struct {
	kinds []reagent.RecoveryKind
}

func (h *recoveryOnly) OnRecovery(_ context.Context, e reagent.RecoveryEvent) {
	h.kinds = append(h.kinds, e.Kind)
}

func TestRegistry_DispatchesByInterface(t *testing.T) {
	all := &tt.RecordingHook{}
	partial := &recoveryOnly{}
	r := NewRegistry().Register(all).Register(partial).Register("not a hook")

	ctx := context.Background()
	r.FireBeforeRun(ctx, reagent.BeforeRunEvent{})
	r.FireBeforeIteration(ctx, reagent.BeforeIterationEvent{Iteration: 1})
	r.FireAfterModelCall(ctx, reagent.AfterModelCallEvent{})
	r.FireRecovery(ctx, reagent.RecoveryEvent{Kind: reagent.RecoveryMalformed})
	r.FireAfterToolCall(ctx, reagent.AfterToolCallEvent{ToolName: "x"})
	r.FireAfterIteration(ctx, reagent.AfterIterationEvent{State: reagent.StateRecovering})
	r.FireAfterRun(ctx, reagent.AfterRunEvent{Outcome: reagent.OutcomeStepsExhausted})

	assert.Equal(t, []string{
		"before_run",
		"before_iteration",
		"after_model_call",
		"recovery",
		"after_tool_call",
		"after_iteration",
		"after_run",
	}, all.Names)
	assert.Equal(t, []reagent.RecoveryKind{reagent.RecoveryMalformed}, partial.kinds)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_Order(t *testing.T) {
	var order []int
	r := NewRegistry()
	for i := range 3 {
		r.Register(afterRunFunc(func() { order = append(order, i) }))
	}

	r.FireAfterRun(context.Background(), reagent.AfterRunEvent{})
	assert.Equal(t, []int{0, 1, 2}, order)
}

type afterRunFunc func()

func (f afterRunFunc) OnAfterRun(context.Context, reagent.AfterRunEvent) { f() }

func TestRegistry_Nil(t *testing.T) {
	var r *Registry
	assert.Equal(t, 0, r.Len())
	assert.NotPanics(t, func() {
		r.FireBeforeRun(context.Background(), reagent.BeforeRunEvent{})
	})
}
