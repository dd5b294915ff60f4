//go:build linux

package unix

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// ProcessImage returns the executable path of pid. When the exe link cannot
// be read, as for processes of another user, argv[0] from the command line
// is returned instead. An empty image means pid has no user-space identity
// (kernel thread or zombie).
func ProcessImage(pid int) (string, error) {
	dir := "/proc/" + strconv.Itoa(pid)

	exe, err := os.Readlink(dir + "/exe")
	if err == nil {
		return exe, nil
	}

	cmdline, cerr := os.ReadFile(dir + "/cmdline")
	if cerr != nil {
		return "", errors.Join(err, cerr)
	}
	argv0, _, _ := strings.Cut(string(cmdline), "\x00")
	return argv0, nil
}
