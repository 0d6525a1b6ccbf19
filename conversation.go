package reagent

import "strings"

// Role identifies who produced a Turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a Conversation.
type Turn struct {
	Role Role   `yaml:"role" json:"role"`
	Text string `yaml:"text" json:"text"`
}

// Conversation is the ordered, append-only message history of a single run.
//
// A Conversation is owned by exactly one run and is not safe for concurrent
// mutation. Use [Conversation.Turns] to get a copy that can be handed to other
// goroutines or kept after the run ends.
type Conversation struct {
	turns []Turn
}

// NewConversation creates a Conversation seeded with the given turns.
func NewConversation(turns ...Turn) *Conversation {
	c := &Conversation{turns: make([]Turn, 0, len(turns)+8)}
	c.turns = append(c.turns, turns...)
	return c
}

// Append adds a turn to the end of the conversation.
func (c *Conversation) Append(role Role, text string) {
	c.turns = append(c.turns, Turn{Role: role, Text: text})
}

// Turns returns a copy of all turns in order.
func (c *Conversation) Turns() []Turn {
	if c == nil {
		return nil
	}
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	if c == nil {
		return 0
	}
	return len(c.turns)
}

// Last returns the most recent turn, or false when the conversation is empty.
func (c *Conversation) Last() (Turn, bool) {
	if c == nil || len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1], true
}

// String renders the conversation as a plain transcript.
func (c *Conversation) String() string {
	if c == nil {
		return ""
	}
	var sb strings.Builder
	for i, t := range c.turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("[")
		sb.WriteString(string(t.Role))
		sb.WriteString("]\n")
		sb.WriteString(t.Text)
	}
	return sb.String()
}
