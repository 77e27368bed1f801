//go:build unix

package detach

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"
)

// Start runs exe with args in a new session, output to LogFile, and records
// the child's pid in PidFile. It returns once the child has started.
func Start(exe string, args []string) (int, error) {
	logf, err := os.OpenFile(LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, err
	}
	defer logf.Close()
	devnull, err := os.Open(os.DevNull)
	if err != nil {
		return 0, err
	}
	defer devnull.Close()

	cmd := exec.Command(exe, args...)
	cmd.Stdin = devnull
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", exe, err)
	}
	pid := cmd.Process.Pid
	if err := os.WriteFile(PidFile, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		return pid, fmt.Errorf("write %s: %w", PidFile, err)
	}
	return pid, cmd.Process.Release()
}
