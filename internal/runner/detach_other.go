//go:build !aix && !darwin && !dragonfly && !freebsd && !linux && !netbsd && !openbsd && !solaris && !windows

package runner

import "os/exec"

func detach(cmd *exec.Cmd) {}
