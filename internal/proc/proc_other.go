//go:build !unix

package proc

import "os/exec"

func setProcessGroup(_ *exec.Cmd) {}
