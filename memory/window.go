// Package memory provides in-process reagent.Memory implementations.
package memory

import (
	"context"
	"sync"

	"github.com/helloagents/reagent"
)

type exchange struct {
	question string
	answer   string
	pinned   bool
}

// Window keeps the last N finished exchanges. Pinned exchanges are always
// preserved regardless of the window size; they are bonus slots that do not
// count toward it.
//
// Example:
//
//	// Remember the last 3 answers, plus standing facts
//	mem := memory.NewWindow(3)
//	mem.Pin("What is my name?", "Ada.")
//	agent := react.NewAgent(model).WithMemory(mem)
type Window struct {
	mu        sync.Mutex
	size      int
	exchanges []exchange
}

// NewWindow creates a Window that keeps the last size exchanges.
// Panics if size < 1.
func NewWindow(size int) *Window {
	if size < 1 {
		panic("memory: window size must be >= 1")
	}
	return &Window{size: size}
}

// Pin adds an exchange that is never evicted.
func (w *Window) Pin(question, answer string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.exchanges = append(w.exchanges, exchange{question: question, answer: answer, pinned: true})
}

// Save implements reagent.Memory. It evicts the oldest unpinned exchange
// once the window is full.
func (w *Window) Save(_ context.Context, question, answer string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.exchanges = append(w.exchanges, exchange{question: question, answer: answer})
	w.compact()
	return nil
}

// Load implements reagent.Memory. Exchanges come back oldest first as
// alternating user and assistant turns.
func (w *Window) Load(_ context.Context) ([]reagent.Turn, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	turns := make([]reagent.Turn, 0, 2*len(w.exchanges))
	for _, e := range w.exchanges {
		turns = append(turns,
			reagent.Turn{Role: reagent.RoleUser, Text: e.question},
			reagent.Turn{Role: reagent.RoleAssistant, Text: e.answer},
		)
	}
	return turns, nil
}

// Len returns the number of stored exchanges, pinned included.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.exchanges)
}

// Reset drops every exchange, pinned included.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.exchanges = nil
}

// compact must be called with mu held.
func (w *Window) compact() {
	unpinned := 0
	for _, e := range w.exchanges {
		if !e.pinned {
			unpinned++
		}
	}
	drop := unpinned - w.size
	if drop <= 0 {
		return
	}

	// Drop the oldest unpinned, preserving relative order.
	kept := w.exchanges[:0]
	for _, e := range w.exchanges {
		if !e.pinned && drop > 0 {
			drop--
			continue
		}
		kept = append(kept, e)
	}
	w.exchanges = kept
}

// Compile-time check that Window implements reagent.Memory.
var _ reagent.Memory = (*Window)(nil)
