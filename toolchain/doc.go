// Package toolchain holds the tool catalog and the executor the agent loop
// dispatches actions through.
//
// # Catalog
//
// A [Catalog] maps tool names to tools and remembers registration order, which
// is also the order the prompt lists them in:
//
//	catalog := toolchain.NewCatalog().MustRegister(weather, search)
//
// The name "finish" is reserved for the terminal action and cannot be
// registered.
//
// # Executor
//
// The [Executor] is where tool failures stop. Whatever happens inside a tool
// (an error return, a panic, bad arguments), the loop receives a string:
//
//	exec := toolchain.NewExecutor(catalog)
//	obs := exec.Execute(ctx, "get_weather", map[string]string{"city": "Nanjing"})
//
// Arguments the model invents that the tool does not declare are dropped
// before the call. Declared arguments are checked against the tool's JSON
// Schema; a missing required argument or a value of the wrong type produces
// an error observation without invoking the tool.
//
// # Typed Tools
//
// [NewTypedTool] decodes the string arguments into a Go struct with
// mapstructure so tool code can work with typed fields.
package toolchain
