package agent

import "strings"

// Role labels one transcript entry.
type Role string

const (
	RoleThought     Role = "Thought"
	RoleAction      Role = "Action"
	RoleActionInput Role = "Action Input"
	RoleObservation Role = "Observation"
	RoleFinalAnswer Role = "Final Answer"
)

// Entry is one line of an episode transcript.
type Entry struct {
	Role Role
	Text string
}

// Step is one completed reasoning cycle.
type Step struct {
	Action      string
	ActionInput string
	Log         string // raw model reply that produced the action
	Observation string
}

// Transcript records one episode. It is append-only and lives only as long
// as the episode.
type Transcript struct {
	entries []Entry
	steps   []Step
}

func (t *Transcript) add(role Role, text string) {
	t.entries = append(t.entries, Entry{Role: role, Text: text})
}

// AddStep records a completed cycle.
func (t *Transcript) AddStep(thought string, step Step) {
	if thought != "" {
		t.add(RoleThought, thought)
	}
	if step.Action != "" {
		t.add(RoleAction, step.Action)
		t.add(RoleActionInput, step.ActionInput)
	}
	t.add(RoleObservation, step.Observation)
	t.steps = append(t.steps, step)
}

// Finish records the final answer.
func (t *Transcript) Finish(thought, answer string) {
	if thought != "" {
		t.add(RoleThought, thought)
	}
	t.add(RoleFinalAnswer, answer)
}

// Entries returns a copy of the recorded entries.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Steps returns a copy of the completed cycles.
func (t *Transcript) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}

// Scratchpad renders the completed cycles for the next prompt.
func (t *Transcript) Scratchpad() string {
	var sb strings.Builder
	for _, s := range t.steps {
		sb.WriteString(s.Log)
		sb.WriteString("\nObservation: ")
		sb.WriteString(s.Observation)
		sb.WriteString("\nThought: ")
	}
	return sb.String()
}

// String renders the transcript in the same labelled form the model sees.
func (t *Transcript) String() string {
	var sb strings.Builder
	for i, e := range t.entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(e.Role))
		sb.WriteString(": ")
		sb.WriteString(e.Text)
	}
	return sb.String()
}
