// Package react implements the bounded ReAct agent loop.
//
// # Conversation Layout
//
// A run's conversation always starts with the rendered system prompt and the
// user question. Each iteration then appends exactly two turns:
//
//	system     rendered tool catalog and output format
//	user       question
//	assistant  Thought: ... Action: {...}         <- iteration 1
//	user       Observation: <tool result>
//	assistant  Thought: ... Action: {...}         <- iteration 2
//	user       System Error: ...                   (corrective turn)
//	...
//
// The model's reply is appended before it is parsed, so the model sees its
// own mistakes. Nothing is appended after the finish action.
//
// # States
//
// Every iteration starts in THINKING. It ends in ACTING when a tool ran,
// RECOVERING when the reply had no usable action or named an unknown tool,
// or FINISHED when the model called finish. Recovering costs a step like any
// other iteration, so a model that never follows the format is stopped by
// the step budget.
//
// # Customization
//
//	agent := react.NewAgent(model).
//	    WithCatalog(catalog).
//	    WithMaxSteps(8).
//	    WithInstructions("Answer in one sentence.").
//	    WithStreaming(func(s string) { fmt.Print(s) }).
//	    WithLogger(logger)
//
// Use WithParser(parser.NewBracket(catalog)) for models prompted with the
// ToolName[input] format, together with a matching WithRenderer template.
package react
