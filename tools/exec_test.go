//go:build unix

package tools

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellTool(t *testing.T) {
	shell := NewShellTool("")
	ctx := context.Background()

	assert.Equal(t, "hello", shell.Invoke(ctx, "echo hello"))
	assert.Equal(t, "a b", shell.Invoke(ctx, "'echo a b'"))
	assert.Equal(t, "Command executed with no output.", shell.Invoke(ctx, "true"))
	assert.Equal(t, "out\nError: bad", shell.Invoke(ctx, "echo out; echo bad >&2; exit 3"))
	assert.Equal(t, "\nError: ", shell.Invoke(ctx, "exit 1"))
}

func TestShellToolTimeout(t *testing.T) {
	shell := NewShellTool("sh")
	shell.timeout = 300 * time.Millisecond

	start := time.Now()
	// The backgrounded sleep keeps stdout open after sh itself is killed.
	out := shell.Invoke(context.Background(), "sleep 10 & sleep 10")
	elapsed := time.Since(start)

	assert.Equal(t, "Error: Command timed out (15s limit).", out)
	assert.Less(t, elapsed, 3*time.Second)
}

func TestShellToolFullTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the real 15s cap")
	}

	start := time.Now()
	out := NewShellTool("").Invoke(context.Background(), "sleep 20")
	elapsed := time.Since(start)

	assert.Equal(t, "Error: Command timed out (15s limit).", out)
	assert.Less(t, elapsed, 17*time.Second)
}

func TestCodeTool(t *testing.T) {
	if _, err := exec.LookPath(defaultPython); err != nil {
		t.Skip("python3 not installed")
	}
	code := NewCodeTool("")
	ctx := context.Background()

	assert.Equal(t, "4", code.Invoke(ctx, "print(2 + 2)"))
	assert.Equal(t, "Code executed with no output.", code.Invoke(ctx, "x = 1"))

	out := code.Invoke(ctx, "```raise ValueError('nope')```")
	assert.True(t, strings.HasPrefix(out, "\nError: Traceback"), "got %q", out)
	assert.Contains(t, out, "ValueError: nope")
}

func TestCodeToolTimeout(t *testing.T) {
	if _, err := exec.LookPath(defaultPython); err != nil {
		t.Skip("python3 not installed")
	}
	code := NewCodeTool("")
	code.timeout = 300 * time.Millisecond

	out := code.Invoke(context.Background(), "import time; time.sleep(10)")
	assert.Equal(t, "Error: Code execution timed out (15s limit).", out)
}

func TestCodeToolMissingInterpreter(t *testing.T) {
	out := NewCodeTool("definitely-not-a-python").Invoke(context.Background(), "print(1)")
	assert.True(t, strings.HasPrefix(out, "Error: "), "got %q", out)
}

func TestRunProcessCapsOutput(t *testing.T) {
	res := runProcess(context.Background(), 5*time.Second, "sh", "-c", "head -c 60000 /dev/zero | tr '\\0' 'a'")
	require.True(t, res.OK)
	assert.True(t, res.Truncated)
	assert.True(t, strings.HasSuffix(res.Stdout, "\n... (output truncated)"))
	assert.Equal(t, 0, res.ExitCode)
}
