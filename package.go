// Package reagent runs a bounded ReAct loop: a chat model is asked to think,
// pick a tool, and read the tool's observation, over and over until it emits
// the reserved finish action or the step budget runs out.
//
// This package holds the shared contracts. The pieces live in subpackages:
//
//   - [github.com/helloagents/reagent/react] - the agent loop
//   - [github.com/helloagents/reagent/planandsolve] - plan, then solve step by step
//   - [github.com/helloagents/reagent/reflection] - draft, review and refine
//   - [github.com/helloagents/reagent/toolchain] - tool catalog and executor
//   - [github.com/helloagents/reagent/parser] - Thought/Action extraction
//   - [github.com/helloagents/reagent/prompt] - system prompt rendering
//   - [github.com/helloagents/reagent/models] - langchaingo adapters
//   - [github.com/helloagents/reagent/hooks] - lifecycle hook registry
//   - [github.com/helloagents/reagent/metrics] - Prometheus collector hook
//   - [github.com/helloagents/reagent/loggers] - YAML transcript hook
//   - [github.com/helloagents/reagent/memory] - sliding window memory
//   - [github.com/helloagents/reagent/config] - YAML and env configuration
//
// # Quick Start
//
//	llm, err := models.NewOpenAI(models.OpenAIConfig{
//	    Model:   "gpt-4o-mini",
//	    APIKey:  os.Getenv("API_KEY"),
//	    BaseURL: os.Getenv("BASE_URL"),
//	})
//	if err != nil {
//	    return err
//	}
//
//	catalog := toolchain.NewCatalog().MustRegister(reagent.NewToolFunc(
//	    reagent.ToolSpec{
//	        Name:        "get_weather",
//	        Description: "Current weather for a city.",
//	        Parameters: []reagent.Param{
//	            {Name: "city", Type: reagent.ParamString, Required: true},
//	        },
//	    },
//	    func(ctx context.Context, args map[string]string) (string, error) {
//	        return lookupWeather(ctx, args["city"])
//	    },
//	))
//
//	agent := react.NewAgent(llm).WithCatalog(catalog).WithMaxSteps(5)
//	result, err := agent.Run(ctx, "What's the weather in Nanjing?")
//	if err != nil {
//	    // model failure: errors.Is(err, reagent.ErrConnection) etc.
//	}
//	if !result.Finished() {
//	    // ran out of steps
//	}
//	fmt.Println(result.Answer)
//
// # Output Format
//
// The model is told to answer in this shape:
//
//	Thought: I need the weather first.
//	Action: {"name": "get_weather", "args": {"city": "Nanjing"}}
//
// The JSON may also be wrapped in a ```json fenced block, which takes
// precedence over a bare Action line. The loop feeds back the tool result as
// a user turn starting with "Observation:".
//
// # Failure Model
//
// Malformed output, unknown tool names and tool errors are recovered inside
// the loop and cost one step each. Model failures end the run with
// [OutcomeAborted] and a *[ModelError]. Running out of steps is the normal
// [OutcomeStepsExhausted] outcome and returns no error.
package reagent
