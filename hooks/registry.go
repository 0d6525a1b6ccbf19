package hooks

import (
	"context"
	"sync"

	"github.com/helloagents/reagent"
)

// Registry stores hooks and dispatches run events to them.
//
// A hook is any value implementing one or more of the reagent hook
// interfaces; it only receives the events it implements:
//
//	type toolTimer struct{}
//
//	func (toolTimer) OnAfterToolCall(ctx context.Context, e reagent.AfterToolCallEvent) {
//	    log.Printf("%s took %v", e.ToolName, e.Duration)
//	}
//
//	registry := hooks.NewRegistry().Register(toolTimer{})
//
// Hooks are called in registration order. Registry is safe for concurrent
// use, so one registry can be shared by an Agent serving several runs at once.
type Registry struct {
	mu    sync.RWMutex
	hooks []any
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds hook. Values that implement no hook interface are accepted
// and simply never called.
func (r *Registry) Register(hook any) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
	return r
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}

func (r *Registry) snapshot() []any {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]any, len(r.hooks))
	copy(out, r.hooks)
	return out
}

// FireBeforeRun dispatches to every reagent.BeforeRunHook.
func (r *Registry) FireBeforeRun(ctx context.Context, event reagent.BeforeRunEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(reagent.BeforeRunHook); ok {
			hook.OnBeforeRun(ctx, event)
		}
	}
}

// FireAfterRun dispatches to every reagent.AfterRunHook.
func (r *Registry) FireAfterRun(ctx context.Context, event reagent.AfterRunEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(reagent.AfterRunHook); ok {
			hook.OnAfterRun(ctx, event)
		}
	}
}

// FireBeforeIteration dispatches to every reagent.BeforeIterationHook.
func (r *Registry) FireBeforeIteration(ctx context.Context, event reagent.BeforeIterationEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(reagent.BeforeIterationHook); ok {
			hook.OnBeforeIteration(ctx, event)
		}
	}
}

// FireAfterIteration dispatches to every reagent.AfterIterationHook.
func (r *Registry) FireAfterIteration(ctx context.Context, event reagent.AfterIterationEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(reagent.AfterIterationHook); ok {
			hook.OnAfterIteration(ctx, event)
		}
	}
}

// FireAfterModelCall dispatches to every reagent.AfterModelCallHook.
func (r *Registry) FireAfterModelCall(ctx context.Context, event reagent.AfterModelCallEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(reagent.AfterModelCallHook); ok {
			hook.OnAfterModelCall(ctx, event)
		}
	}
}

// FireAfterToolCall dispatches to every reagent.AfterToolCallHook.
func (r *Registry) FireAfterToolCall(ctx context.Context, event reagent.AfterToolCallEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(reagent.AfterToolCallHook); ok {
			hook.OnAfterToolCall(ctx, event)
		}
	}
}

// FireRecovery dispatches to every reagent.RecoveryHook.
func (r *Registry) FireRecovery(ctx context.Context, event reagent.RecoveryEvent) {
	for _, h := range r.snapshot() {
		if hook, ok := h.(reagent.RecoveryHook); ok {
			hook.OnRecovery(ctx, event)
		}
	}
}
