//go:build !windows

package subprocess

import (
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// interruptible runs cmd in its own process group and, on cancellation,
// sends SIGINT to the group so audio helpers spawned by the speech tool stop
// too. The process is killed if it outlives grace.
func interruptible(cmd *exec.Cmd, grace time.Duration) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGINT)
	}
	cmd.WaitDelay = grace
}
