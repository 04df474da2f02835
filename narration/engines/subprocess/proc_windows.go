//go:build windows

package subprocess

import (
	"os/exec"
	"time"
)

// interruptible kills cmd on cancellation. Windows has no SIGINT for
// child processes.
func interruptible(cmd *exec.Cmd, grace time.Duration) {
	cmd.WaitDelay = grace
}
