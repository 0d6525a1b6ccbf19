// Package tt holds test doubles and assertions shared across package tests.
package tt

import (
	"testing"

	"github.com/helloagents/reagent"
	"github.com/stretchr/testify/assert"
)

// Roles extracts the role sequence of turns.
func Roles(turns []reagent.Turn) []reagent.Role {
	out := make([]reagent.Role, len(turns))
	for i, t := range turns {
		out[i] = t.Role
	}
	return out
}

// AssertAlternates checks that after the leading system and user turns the
// conversation strictly alternates assistant/user, so no model response is
// left without an observation or corrective turn before the next call.
func AssertAlternates(t *testing.T, conv *reagent.Conversation) {
	t.Helper()
	turns := conv.Turns()
	if !assert.GreaterOrEqual(t, len(turns), 2, "conversation too short") {
		return
	}
	assert.Equal(t, reagent.RoleSystem, turns[0].Role)

	start := 1
	for start < len(turns) && turns[start].Role != reagent.RoleAssistant {
		start++
	}
	for i := start; i < len(turns); i++ {
		want := reagent.RoleAssistant
		if (i-start)%2 == 1 {
			want = reagent.RoleUser
		}
		assert.Equal(t, want, turns[i].Role, "turn %d", i)
	}
}
