// Package planandsolve implements the Plan-and-Solve agent: a planner call
// splits the question into ordered steps, then one executor call per step
// works the step out, seeing the results of every earlier step.
//
//	agent := planandsolve.NewAgent(model).WithMaxSteps(6)
//	result, err := agent.Run(ctx, "A pool has two inlet pipes and one drain...")
//	if err != nil {
//	    // ErrNoPlan, or a model failure
//	}
//	for _, s := range result.Steps {
//	    fmt.Printf("%d. %s\n   %s\n", s.Index, s.Step, s.Output)
//	}
//	fmt.Println(result.Answer)
//
// The answer is the output of the last step. Each model call gets a fresh
// two-turn conversation; Result.Conversation records all of them in order.
package planandsolve
