package tt

import (
	"encoding/json"
	"fmt"

	"github.com/helloagents/reagent"
)

// ActionResponse renders a well-formed model response calling tool with args.
func ActionResponse(thought, tool string, args map[string]string) string {
	b, err := json.Marshal(map[string]any{"name": tool, "args": args})
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("Thought: %s\nAction: %s", thought, b)
}

// FinishResponse renders a model response that ends the run with answer.
func FinishResponse(thought, answer string) string {
	return ActionResponse(thought, reagent.FinishToolName, map[string]string{
		reagent.FinishAnswerParam: answer,
	})
}

// Observation renders the user turn the loop appends after a tool call.
func Observation(result string) string {
	return "Observation: " + result
}
