package tools

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const defaultPython = "python3"

// CodeTool executes Python snippets in a fresh interpreter process.
type CodeTool struct {
	interpreter string
	timeout     time.Duration
}

// NewCodeTool creates the PythonREPL tool. An empty interpreter selects python3.
func NewCodeTool(interpreter string) *CodeTool {
	if interpreter == "" {
		interpreter = defaultPython
	}
	return &CodeTool{interpreter: interpreter, timeout: ExecTimeout}
}

func (p *CodeTool) Name() string {
	return "PythonREPL"
}

func (p *CodeTool) Description() string {
	return "Execute Python code and return output. Input: Python code as a string."
}

func (p *CodeTool) Invoke(ctx context.Context, input string) string {
	code := CleanInput(input)
	logCodePreview(zerolog.Ctx(ctx), "python", code)

	res := runProcess(ctx, p.timeout, p.interpreter, "-c", code)
	return formatExecution(res,
		"Code executed with no output.",
		"Error: Code execution timed out (15s limit).",
	)
}
