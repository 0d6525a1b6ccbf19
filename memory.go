package reagent

import "context"

// Memory carries context from one run to the next. The agent loop itself is
// stateless across runs; a Memory is the explicit collaborator for callers
// that want follow-up questions to see earlier answers.
type Memory interface {
	// Load returns turns to replay after the system prompt, oldest first.
	Load(ctx context.Context) ([]Turn, error)

	// Save records a finished question/answer pair.
	Save(ctx context.Context, question, answer string) error
}
