package agent

import (
	"fmt"
	"strings"
	"text/template"

	"react-agent/tools"
)

const reactTemplate = `Answer the following questions as best you can. You have access to the following tools:

{{.Tools}}

Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [{{.ToolNames}}]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

Begin!

Question: {{.Input}}
Thought:{{.Scratchpad}}`

// PromptFormatter renders the instruction template with the tool catalog
// and the running scratchpad.
type PromptFormatter struct {
	tmpl      *template.Template
	catalog   string
	toolNames string
}

type promptData struct {
	Tools      string
	ToolNames  string
	Input      string
	Scratchpad string
}

// NewPromptFormatter builds a formatter for the tools in registry. An empty
// text uses the default ReAct template.
func NewPromptFormatter(registry *tools.Registry, text string) (*PromptFormatter, error) {
	if text == "" {
		text = reactTemplate
	}
	tmpl, err := template.New("react").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}

	lines := make([]string, 0, len(registry.All()))
	for _, tool := range registry.All() {
		lines = append(lines, tool.Name()+": "+tool.Description())
	}

	return &PromptFormatter{
		tmpl:      tmpl,
		catalog:   strings.Join(lines, "\n"),
		toolNames: strings.Join(registry.Names(), ", "),
	}, nil
}

// Format renders the prompt for question with the given scratchpad.
func (f *PromptFormatter) Format(question, scratchpad string) (string, error) {
	var sb strings.Builder
	err := f.tmpl.Execute(&sb, promptData{
		Tools:      f.catalog,
		ToolNames:  f.toolNames,
		Input:      question,
		Scratchpad: scratchpad,
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return sb.String(), nil
}
