// Package hooks provides the registry the agent loop reports lifecycle
// events through.
//
// # Hook Interfaces
//
// Run lifecycle:
//   - [reagent.BeforeRunHook] - once, before the first model call
//   - [reagent.AfterRunHook] - once, when Run returns (any outcome)
//
// Iteration lifecycle:
//   - [reagent.BeforeIterationHook] - at the start of every iteration
//   - [reagent.AfterIterationHook] - with the state the iteration ended in
//
// Calls:
//   - [reagent.AfterModelCallHook] - after each model call, failed or not
//   - [reagent.AfterToolCallHook] - after each tool execution
//
// Recovery:
//   - [reagent.RecoveryHook] - parse failures and unknown tool names
//
// # Bundled Hooks
//
// The metrics package exports Prometheus counters from these events and the
// loggers package writes a YAML transcript of every run.
package hooks
