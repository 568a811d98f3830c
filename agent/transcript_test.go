package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranscript(t *testing.T) {
	var tr Transcript
	tr.AddStep("I should search", Step{
		Action:      "Search",
		ActionInput: "go",
		Log:         " I should search\nAction: Search\nAction Input: go",
		Observation: "Go is a language",
	})
	tr.AddStep("", Step{Log: "nonsense", Observation: "Invalid Format: Missing 'Action:' after 'Thought:'"})
	tr.Finish("I know", "Go")

	assert.Equal(t,
		" I should search\nAction: Search\nAction Input: go\nObservation: Go is a language\nThought: "+
			"nonsense\nObservation: Invalid Format: Missing 'Action:' after 'Thought:'\nThought: ",
		tr.Scratchpad())

	assert.Equal(t, []Entry{
		{RoleThought, "I should search"},
		{RoleAction, "Search"},
		{RoleActionInput, "go"},
		{RoleObservation, "Go is a language"},
		{RoleObservation, "Invalid Format: Missing 'Action:' after 'Thought:'"},
		{RoleThought, "I know"},
		{RoleFinalAnswer, "Go"},
	}, tr.Entries())

	assert.Len(t, tr.Steps(), 2)
	assert.Contains(t, tr.String(), "Action Input: go\nObservation: Go is a language")
}

func TestTranscriptEmpty(t *testing.T) {
	var tr Transcript
	assert.Empty(t, tr.Scratchpad())
	assert.Empty(t, tr.Entries())
	assert.Empty(t, tr.String())
}
