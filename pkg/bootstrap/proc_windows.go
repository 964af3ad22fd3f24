//go:build windows

package bootstrap

import (
	"os"
	"os/exec"
)

func configureProcAttr(cmd *exec.Cmd) {}

// Windows offers no way to signal another process's group, so the
// fallback is an outright kill; WaitDelay-style grace does not apply.
func signalServer(cmd *exec.Cmd, sig os.Signal) error {
	return cmd.Process.Kill()
}
