package tools

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// ExecTimeout is the hard wall-clock cap for code and shell tools.
	ExecTimeout = 15 * time.Second

	maxOutputBytes = 50000 // Limit output to prevent huge observations

	// waitDelay bounds how long Wait blocks on output pipes held open by
	// grandchildren after the process group was killed.
	waitDelay = 500 * time.Millisecond
)

// ExecutionResult is the outcome of one child process.
type ExecutionResult struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	OK        bool
	TimedOut  bool
	Truncated bool
	Err       error // set when the process could not be started or waited on
}

// runProcess runs name with args, capturing stdout and stderr. The process and
// everything it spawned is killed once timeout elapses.
func runProcess(ctx context.Context, timeout time.Duration, name string, args ...string) ExecutionResult {
	log := zerolog.Ctx(ctx)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	setProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startTime := time.Now()
	err := cmd.Run()
	duration := time.Since(startTime)

	res := ExecutionResult{ExitCode: -1}
	res.Stdout, res.Truncated = capOutput(stdout.String())
	var stderrTruncated bool
	res.Stderr, stderrTruncated = capOutput(stderr.String())
	res.Truncated = res.Truncated || stderrTruncated

	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Warn().Str("cmd", name).Dur("timeout", timeout).Msg("process timed out")
		res.TimedOut = true
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		res.OK = true
	case errors.As(err, &exitErr):
		// Non-zero exit is a normal outcome, reported through stderr.
	default:
		res.Err = err
	}

	log.Debug().
		Str("cmd", name).
		Dur("duration", duration).
		Int("exit_code", res.ExitCode).
		Int("stdout", stdout.Len()).
		Int("stderr", stderr.Len()).
		Msg("process finished")

	return res
}

func capOutput(s string) (string, bool) {
	if len(s) <= maxOutputBytes {
		return s, false
	}
	cut, _ := TruncateRunes(s, maxOutputBytes)
	return cut + "\n... (output truncated)", true
}

// formatExecution renders a finished process the way both the code and shell
// tools report it.
func formatExecution(res ExecutionResult, emptyMsg, timeoutMsg string) string {
	if res.TimedOut {
		return timeoutMsg
	}
	if res.Err != nil {
		return "Error: " + res.Err.Error()
	}

	output := strings.TrimSpace(res.Stdout)
	if !res.OK {
		output += "\nError: " + strings.TrimSpace(res.Stderr)
	}
	if output == "" {
		return emptyMsg
	}
	return output
}
