//go:build !windows

package bootstrap

import (
	"os"
	"os/exec"
	"syscall"
)

// The server gets its own process group so shutdown signals reach the
// reload supervisor and its workers together.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func signalServer(cmd *exec.Cmd, sig os.Signal) error {
	s, ok := sig.(syscall.Signal)
	if !ok {
		s = syscall.SIGTERM
	}
	return syscall.Kill(-cmd.Process.Pid, s)
}
