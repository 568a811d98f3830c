package tools

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultShell = "sh"

// ShellTool runs a command string through a command interpreter.
type ShellTool struct {
	shell   string
	timeout time.Duration
}

// NewShellTool creates the Shell tool. An empty shell selects sh.
func NewShellTool(shell string) *ShellTool {
	if shell == "" {
		shell = defaultShell
	}
	return &ShellTool{shell: shell, timeout: ExecTimeout}
}

func (b *ShellTool) Name() string {
	return "Shell"
}

func (b *ShellTool) Description() string {
	return "Run a shell command and return its output. Input: a shell command string."
}

func (b *ShellTool) Invoke(ctx context.Context, input string) string {
	command := CleanInput(input)
	logCodePreview(zerolog.Ctx(ctx), "shell", command)

	res := runProcess(ctx, b.timeout, b.shell, "-c", command)
	return formatExecution(res,
		"Command executed with no output.",
		"Error: Command timed out (15s limit).",
	)
}

// logCodePreview logs the first few lines of code for debugging
func logCodePreview(log *zerolog.Logger, kind, code string) {
	lines := strings.Split(code, "\n")
	preview := lines
	if len(lines) > 5 {
		preview = lines[:5]
	}
	for i, line := range preview {
		// Truncate long lines
		if len(line) > 80 {
			line = line[:77] + "..."
		}
		log.Debug().Str("kind", kind).Int("line", i+1).Msg(line)
	}
	if len(lines) > 5 {
		log.Debug().Str("kind", kind).Int("more_lines", len(lines)-5).Msg("...")
	}
}
