//go:build !unix

package tools

import "os/exec"

// setProcessGroup is a no-op where process groups are unavailable; the
// default cancellation kills the direct child and WaitDelay bounds the rest.
func setProcessGroup(cmd *exec.Cmd) {}
