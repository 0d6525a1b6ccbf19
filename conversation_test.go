package reagent_test

import (
	"testing"

	"github.com/helloagents/reagent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation(t *testing.T) {
	conv := reagent.NewConversation(reagent.Turn{Role: reagent.RoleSystem, Text: "rules"})
	conv.Append(reagent.RoleUser, "q")
	conv.Append(reagent.RoleAssistant, "Thought: t")

	require.Equal(t, 3, conv.Len())
	last, ok := conv.Last()
	require.True(t, ok)
	assert.Equal(t, reagent.RoleAssistant, last.Role)

	// Turns is a copy.
	turns := conv.Turns()
	turns[0].Text = "changed"
	assert.Equal(t, "rules", conv.Turns()[0].Text)

	assert.Equal(t, "[system]\nrules\n\n[user]\nq\n\n[assistant]\nThought: t", conv.String())
}

func TestConversation_Nil(t *testing.T) {
	var conv *reagent.Conversation
	assert.Equal(t, 0, conv.Len())
	assert.Nil(t, conv.Turns())
	assert.Empty(t, conv.String())
	_, ok := conv.Last()
	assert.False(t, ok)
}

func TestFinishSpec(t *testing.T) {
	spec := reagent.FinishSpec()
	assert.Equal(t, reagent.FinishToolName, spec.Name)
	p, ok := spec.Param(reagent.FinishAnswerParam)
	require.True(t, ok)
	assert.True(t, p.Required)
	assert.Equal(t, reagent.ParamString, p.Type)
	assert.True(t, p.Type.Valid())
	assert.False(t, reagent.ParamType("list").Valid())
}
