//go:build darwin

package unix

import (
	"errors"

	sysunix "golang.org/x/sys/unix"
)

// ProcessImage returns the command name of pid as recorded by the kernel.
// The name is truncated to MAXCOMLEN bytes.
func ProcessImage(pid int) (string, error) {
	kp, err := sysunix.SysctlKinfoProc("kern.proc.pid", pid)
	if err != nil {
		// A short read means the pid has no entry
		if errors.Is(err, sysunix.EIO) {
			return "", sysunix.ESRCH
		}
		return "", err
	}
	return sysunix.ByteSliceToString(kp.Proc.P_comm[:]), nil
}
