// Package reflection implements the Reflection agent: a generator writes a
// first draft, a reviewer critiques it, and the generator refines the draft
// from the critique. The review/refine round repeats until the reviewer
// reports nothing to improve or the round budget runs out.
//
//	agent := reflection.NewAgent(model).WithLanguage("go").WithMaxIterations(3)
//	result, err := agent.Run(ctx, "Write a function listing all primes up to n.")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Output)
//
// A run that converges ends with reagent.OutcomeFinished. One that uses up
// its rounds ends with reagent.OutcomeStepsExhausted; Output still holds the
// latest draft.
package reflection
